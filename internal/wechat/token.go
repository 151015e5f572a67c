package wechat

import (
	"regexp"
	"strings"
)

// Kind classifies one input line.
type Kind int

const (
	KindPlainText Kind = iota
	KindBlank
	KindHeading1
	KindHeading2
	KindBlockQuote
	KindHorizontalRule
	KindOrderedItem
	KindUnorderedItem
	KindTableRow
	KindFenceOpen
	KindImage
)

// String returns a short name for the kind, used in diagnostics and tests.
func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindHeading1:
		return "h1"
	case KindHeading2:
		return "h2"
	case KindBlockQuote:
		return "quote"
	case KindHorizontalRule:
		return "hr"
	case KindOrderedItem:
		return "ol-item"
	case KindUnorderedItem:
		return "ul-item"
	case KindTableRow:
		return "table-row"
	case KindFenceOpen:
		return "fence-open"
	case KindImage:
		return "image"
	default:
		return "text"
	}
}

var (
	reH1    = regexp.MustCompile(`^\s*#\s+(.*)$`)
	reH2    = regexp.MustCompile(`^\s*##\s+(.*)$`)
	reQuote = regexp.MustCompile(`^\s*>\s?(.*)$`)
	reHR    = regexp.MustCompile(`^\s*(?:-{3,}|\*{3,})\s*$`)
	reOL    = regexp.MustCompile(`^(\s*)(\d+)[.)]\s+(.*)$`)
	reUL    = regexp.MustCompile(`^(\s*)([-+*])\s+(.*)$`)
	reImage = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)
)

// classify maps one line to its token kind. The rules run in a fixed order
// and the first match wins; a table row is only a candidate here and is
// validated later by the table builder. Lines inside an open code fence never
// reach this function — fence state is owned by the parser.
func classify(line string) Kind {
	if strings.TrimSpace(line) == "" {
		return KindBlank
	}
	if reHR.MatchString(line) {
		return KindHorizontalRule
	}
	stripped := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(stripped, "```") || strings.HasPrefix(stripped, "~~~") {
		return KindFenceOpen
	}
	if reImage.MatchString(line) {
		return KindImage
	}
	if reH1.MatchString(line) {
		return KindHeading1
	}
	if reH2.MatchString(line) {
		return KindHeading2
	}
	if reQuote.MatchString(line) {
		return KindBlockQuote
	}
	if reOL.MatchString(line) {
		return KindOrderedItem
	}
	if reUL.MatchString(line) {
		return KindUnorderedItem
	}
	if strings.Contains(line, "|") {
		return KindTableRow
	}
	return KindPlainText
}
