package wechat

import (
	"fmt"
	"strings"
	"testing"
)

func render(t *testing.T, md string) string {
	t.Helper()
	return Render(md, newTestStore(t))
}

func TestParse_Example(t *testing.T) {
	// "# Title", blank, "Hello": the heading block also carries the blank
	// fragment (a blank line closes whatever block is open), then the text
	// block carries the footer banner, then the end marker.
	got := render(t, "# Title\n\nHello")
	want := "[B]<top/><h1 i=01>Title</h1><blank/>[/B]" +
		"[B]<t>Hello</t><bot/>[/B]" +
		"<end/>"
	if got != want {
		t.Errorf("unexpected output:\n got %q\nwant %q", got, want)
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	got := render(t, "")
	want := "[B]<top/><bot/>[/B]<end/>"
	if got != want {
		t.Errorf("unexpected output:\n got %q\nwant %q", got, want)
	}
}

func TestParse_BannerFraming(t *testing.T) {
	for _, md := range []string{"hello", "# a\n\nb\n\nc", "> q", "- item"} {
		out := render(t, md)
		if !strings.HasPrefix(out, "[B]<top/>") {
			t.Errorf("output for %q must begin with the top banner inside the first block: %q", md, out)
		}
		if !strings.HasSuffix(out, "<bot/>[/B]<end/>") {
			t.Errorf("output for %q must end with footer banner, block close, end marker: %q", md, out)
		}
		if strings.Count(out, "<top/>") != 1 || strings.Count(out, "<bot/>") != 1 || strings.Count(out, "<end/>") != 1 {
			t.Errorf("banners and end marker must appear exactly once: %q", out)
		}
	}
}

func TestParse_HeadingIndices(t *testing.T) {
	var lines []string
	for i := 0; i < 11; i++ {
		lines = append(lines, fmt.Sprintf("# Heading %d", i+1))
	}
	out := render(t, strings.Join(lines, "\n"))

	for i := 1; i <= 11; i++ {
		want := fmt.Sprintf("<h1 i=%02d>Heading %d</h1>", i, i)
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	// Two-digit zero padding: index 10 renders as "10", index 1 as "01".
	if !strings.Contains(out, "<h1 i=01>") || !strings.Contains(out, "<h1 i=10>") {
		t.Errorf("heading indices must be zero-padded to two digits: %q", out)
	}
}

func TestParse_Heading2NoIndex(t *testing.T) {
	out := render(t, "## Sub")
	if !strings.Contains(out, "<h2>Sub</h2>") {
		t.Errorf("missing h2 fragment: %q", out)
	}
}

func TestParse_ConsecutiveBlanks(t *testing.T) {
	// A rule first so no block is open, then three blanks: each blank is a
	// singleton block of its own.
	out := render(t, "---\n\n\n")
	if got := strings.Count(out, "[B]<blank/>[/B]"); got != 2 {
		t.Errorf("expected 2 singleton blank blocks, got %d in %q", got, out)
	}
	// Trailing newline on the third line means two blank lines total.
	out = render(t, "---\n\n\n\n")
	if got := strings.Count(out, "[B]<blank/>[/B]"); got != 3 {
		t.Errorf("expected 3 singleton blank blocks, got %d in %q", got, out)
	}
}

func TestParse_BlankJoinsOpenBlock(t *testing.T) {
	// A blank line after content lands inside the still-open block before
	// closing it.
	out := render(t, "text\n\nmore")
	if !strings.Contains(out, "[B]<top/><t>text</t><blank/>[/B]") {
		t.Errorf("blank must close the open block from inside it: %q", out)
	}
}

func TestParse_HorizontalRuleOutsideBlocks(t *testing.T) {
	out := render(t, "a\n---\nb")

	if !strings.Contains(out, "[/B]<hr/>[B]") {
		t.Errorf("rule must sit between block closes: %q", out)
	}
	if strings.Contains(out, "<hr/>[/B]") || strings.Contains(out, "[B]<hr/>") {
		t.Errorf("rule leaked inside a content block: %q", out)
	}
}

func TestParse_LeadingRule(t *testing.T) {
	// A document that opens with a rule emits it as the first top-level
	// fragment; the banner then goes unused because the first block no
	// longer is the first fragment.
	out := render(t, "---\ntext")
	if !strings.HasPrefix(out, "<hr/>") {
		t.Errorf("leading rule must be the first fragment: %q", out)
	}
}

func TestParse_ParagraphAggregation(t *testing.T) {
	out := render(t, "  one  \ntwo\nthree")
	if !strings.Contains(out, "<t>one\ntwo\nthree</t>") {
		t.Errorf("consecutive plain lines must merge into one trimmed fragment: %q", out)
	}
}

func TestParse_ParagraphStopsAtConstruct(t *testing.T) {
	out := render(t, "para\n# Head")
	if !strings.Contains(out, "<t>para</t><h1") {
		t.Errorf("paragraph must stop before the heading: %q", out)
	}
}

func TestParse_BlockQuoteMerging(t *testing.T) {
	out := render(t, "> first\n> second\n>\n> fourth")
	if !strings.Contains(out, "<q>first<br>second<br><br>fourth</q>") {
		t.Errorf("contiguous quote lines must merge into one fragment: %q", out)
	}
}

func TestParse_QuoteEscapes(t *testing.T) {
	out := render(t, "> a<b>&c")
	if !strings.Contains(out, "<q>a&lt;b&gt;&amp;c</q>") {
		t.Errorf("quote text must be escaped: %q", out)
	}
}

func TestParse_HeadingEscapes(t *testing.T) {
	out := render(t, "# <script>&</script>")
	if !strings.Contains(out, "<h1 i=01>&lt;script&gt;&amp;&lt;/script&gt;</h1>") {
		t.Errorf("heading title must be escaped: %q", out)
	}
}

func TestParse_Image(t *testing.T) {
	out := render(t, "![alt](https://example.com/x.png)")
	if !strings.Contains(out, "<img/>") {
		t.Errorf("missing image fragment: %q", out)
	}
	if strings.Contains(out, "example.com") {
		t.Errorf("image URL must be discarded: %q", out)
	}
}

func TestParse_ImageWithTrailingText(t *testing.T) {
	out := render(t, "![a](u.png) caption here")
	if !strings.Contains(out, "<img/><t>caption here</t>") {
		t.Errorf("leftover text must follow the image as its own fragment: %q", out)
	}
}

func TestParse_CodeFence(t *testing.T) {
	out := render(t, "```go\nfmt.Println(\"hi\")\nreturn\n```\n")
	// Quotes stay as-is: only & < > are escaped.
	if !strings.Contains(out, `<t>code:fmt.Println("hi")\nreturn</t>`) {
		t.Errorf("fence content must flatten to one code: fragment: %q", out)
	}
}

func TestParse_CodeFenceEscapesBackslashes(t *testing.T) {
	out := render(t, "```\na\\b\n```")
	if !strings.Contains(out, `<t>code:a\\b</t>`) {
		t.Errorf("backslashes must double before newline flattening: %q", out)
	}
}

func TestParse_CodeFenceTildes(t *testing.T) {
	out := render(t, "~~~\nx\n~~~")
	if !strings.Contains(out, "<t>code:x</t>") {
		t.Errorf("tilde fences must capture like backtick fences: %q", out)
	}
}

func TestParse_FenceContentNotClassified(t *testing.T) {
	// Markdown constructs inside a fence are captured verbatim, not parsed.
	out := render(t, "```\n# not a heading\n- not a list\n```")
	if strings.Contains(out, "<h1") {
		t.Errorf("fence content leaked into classification: %q", out)
	}
	if !strings.Contains(out, `code:# not a heading\n- not a list`) {
		t.Errorf("fence content must be captured verbatim: %q", out)
	}
}

func TestParse_UnterminatedFence(t *testing.T) {
	// End of input closes an open fence implicitly: the captured lines are
	// flushed as a code text fragment rather than dropped.
	out := render(t, "```\nabc\ndef")
	if !strings.Contains(out, `<t>code:abc\ndef</t>`) {
		t.Errorf("unterminated fence must flush its capture: %q", out)
	}
}

func TestParse_TableFallbackToText(t *testing.T) {
	out := render(t, "a|b\nx|y")

	if strings.Contains(out, "<table>") {
		t.Errorf("invalid table must not render: %q", out)
	}
	// Each candidate line degrades to its own text fragment: the paragraph
	// aggregator stops at lines containing a pipe.
	if !strings.Contains(out, "<t>a|b</t>") || !strings.Contains(out, "<t>x|y</t>") {
		t.Errorf("both lines must degrade to plain text: %q", out)
	}
}

func TestParse_TableInsideBlock(t *testing.T) {
	out := render(t, "| a | b |\n| --- | --- |\n| c | d |")
	if !strings.Contains(out, "<table>") {
		t.Fatalf("missing table markup: %q", out)
	}
	if !strings.HasPrefix(out, "[B]<top/><table>") {
		t.Errorf("table must render inside the open block: %q", out)
	}
}

func TestParse_ListRunHandsBackPosition(t *testing.T) {
	out := render(t, "- a\n- b\nafter")
	if !strings.Contains(out, "</ul><t>after</t>") {
		t.Errorf("scan must resume right after the list run: %q", out)
	}
}

func TestParse_PassthroughUnescaped(t *testing.T) {
	// Characters other than & < > pass through untouched.
	out := render(t, `quotes " and 'apostrophes' stay`)
	if !strings.Contains(out, `quotes " and 'apostrophes' stay`) {
		t.Errorf("non-escaped characters must pass through: %q", out)
	}
}

func TestParse_CRLFInput(t *testing.T) {
	if got, want := render(t, "# T\r\n\r\nx"), render(t, "# T\n\nx"); got != want {
		t.Errorf("CRLF input must render like LF input:\n got %q\nwant %q", got, want)
	}
}

func TestRender_StoreReuse(t *testing.T) {
	s := newTestStore(t)
	first := Render("# A\n\ntext", s)
	second := Render("# A\n\ntext", s)
	if first != second {
		t.Error("rendering must be deterministic across parser instances")
	}
	// Heading numbering is document-scoped, not store-scoped.
	if !strings.Contains(second, "<h1 i=01>") {
		t.Errorf("heading counter must reset per document: %q", second)
	}
}
