package wechat

import (
	"fmt"
	"strings"
)

// Parser walks one Markdown document and assembles the output fragment
// sequence. It keeps an explicit cursor over an indexable line slice; the
// content-block state (open or closed) and the code-fence capture state live
// here. A Parser is single-use; the Store it renders through may be shared.
type Parser struct {
	tpls  *Store
	lines []string
	pos   int

	h1Count int

	out       []string // finished top-level fragments, dividers included
	block     []string // fragments of the currently open content block
	blockOpen bool
}

// NewParser creates a parser over one document.
func NewParser(md string, tpls *Store) *Parser {
	return &Parser{
		tpls:  tpls,
		lines: splitLines(md),
	}
}

// Render converts one Markdown document using the given template store.
func Render(md string, tpls *Store) string {
	return NewParser(md, tpls).Parse()
}

// Parse runs the scan and returns the concatenated output string.
func (p *Parser) Parse() string {
	var fence string // opening fence marker while capturing, "" otherwise
	var fenceLines []string

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]

		// Fence capture runs before any classification: everything up to the
		// matching delimiter is taken verbatim.
		if fence != "" {
			if strings.HasPrefix(strings.TrimSpace(line), fence) {
				p.flushFence(fenceLines)
				fence, fenceLines = "", nil
			} else {
				fenceLines = append(fenceLines, line)
			}
			p.pos++
			continue
		}

		switch classify(line) {
		case KindBlank:
			// Each blank line is its own singleton block; the next block
			// opens lazily on the next non-blank construct.
			p.openBlock()
			p.block = append(p.block, p.tpls.Get(TplBlank))
			p.closeBlock()
			p.pos++

		case KindHorizontalRule:
			// Dividers live outside any content block.
			p.closeBlock()
			p.out = append(p.out, p.tpls.Get(TplHR))
			p.pos++

		case KindFenceOpen:
			fence = strings.TrimLeft(line, " \t")[:3]
			fenceLines = nil
			p.pos++

		case KindImage:
			p.openBlock()
			p.block = append(p.block, p.tpls.Get(TplImage))
			// Visible text left on the line after stripping the image
			// patterns becomes its own text fragment.
			if rest := strings.TrimSpace(reImage.ReplaceAllString(line, "")); rest != "" {
				p.block = append(p.block, fill(p.tpls.Get(TplText), "{content}", escapeHTML(rest)))
			}
			p.pos++

		case KindHeading1:
			m := reH1.FindStringSubmatch(line)
			p.h1Count++
			p.openBlock()
			p.block = append(p.block, fill(p.tpls.Get(TplH1),
				"{index}", fmt.Sprintf("%02d", p.h1Count),
				"{title}", escapeHTML(strings.TrimSpace(m[1]))))
			p.pos++

		case KindHeading2:
			m := reH2.FindStringSubmatch(line)
			p.openBlock()
			p.block = append(p.block, fill(p.tpls.Get(TplH2),
				"{title}", escapeHTML(strings.TrimSpace(m[1]))))
			p.pos++

		case KindBlockQuote:
			p.parseQuote()

		case KindOrderedItem, KindUnorderedItem:
			p.openBlock()
			html, next := p.parseList(p.pos)
			p.block = append(p.block, html)
			p.pos = next

		case KindTableRow:
			if html, consumed := p.parseTable(p.pos); consumed > 0 {
				p.openBlock()
				p.block = append(p.block, html)
				p.pos += consumed
				continue
			}
			// Not a table after all; the line falls back to plain text.
			p.parseParagraph()

		default:
			p.parseParagraph()
		}
	}

	// An unterminated fence still flushes what it captured.
	if fence != "" {
		p.flushFence(fenceLines)
	}

	p.openBlock()
	p.block = append(p.block, p.tpls.Get(TplFollowBottom))
	p.closeBlock()
	p.out = append(p.out, p.tpls.Get(TplEnd))

	return strings.Join(p.out, "")
}

// openBlock opens the wrapping content block if none is open. The very first
// block of the document carries the follow-top banner.
func (p *Parser) openBlock() {
	if p.blockOpen {
		return
	}
	p.block = nil
	if len(p.out) == 0 {
		p.block = append(p.block, p.tpls.Get(TplFollowTop))
	}
	p.blockOpen = true
}

// closeBlock flushes the open block through the root wrapper into the output
// sequence.
func (p *Parser) closeBlock() {
	if !p.blockOpen {
		return
	}
	p.out = append(p.out, fill(p.tpls.Get(TplRoot), "{content}", strings.Join(p.block, "")))
	p.block = nil
	p.blockOpen = false
}

// parseQuote merges the contiguous run of quote lines into one fragment,
// joined with line breaks.
func (p *Parser) parseQuote() {
	p.openBlock()
	var parts []string
	for p.pos < len(p.lines) {
		m := reQuote.FindStringSubmatch(p.lines[p.pos])
		if m == nil {
			break
		}
		parts = append(parts, escapeHTML(m[1]))
		p.pos++
	}
	p.block = append(p.block, fill(p.tpls.Get(TplQuote), "{content}", strings.Join(parts, "<br>")))
}

// parseParagraph aggregates the current line and every following line that
// still classifies as plain text into a single text fragment.
func (p *Parser) parseParagraph() {
	p.openBlock()
	parts := []string{strings.TrimSpace(p.lines[p.pos])}
	p.pos++
	for p.pos < len(p.lines) {
		if classify(p.lines[p.pos]) != KindPlainText {
			break
		}
		parts = append(parts, strings.TrimSpace(p.lines[p.pos]))
		p.pos++
	}
	p.block = append(p.block, fill(p.tpls.Get(TplText),
		"{content}", escapeHTML(strings.Join(parts, "\n"))))
}

// flushFence renders captured fence lines as one text fragment. The code is
// flattened to a single line: backslashes doubled first, then newlines
// written as the literal two-character sequence \n, with a code: prefix.
func (p *Parser) flushFence(captured []string) {
	raw := strings.Join(captured, "\n")
	text := "code:" + strings.ReplaceAll(strings.ReplaceAll(raw, `\`, `\\`), "\n", `\n`)
	p.openBlock()
	p.block = append(p.block, fill(p.tpls.Get(TplText), "{content}", escapeHTML(text)))
}

// splitLines splits a document into lines, tolerating CRLF and CR endings. A
// trailing newline does not produce a final empty line.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
