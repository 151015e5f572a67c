package wechat

import (
	"fmt"
	"strings"
)

// Bullet and numbering styles cycle with nesting depth (1-based).
var (
	ulStyles = []string{"disc", "square", "circle"}
	olStyles = []string{"decimal", "lower-alpha", "lower-roman", "upper-alpha"}
)

func ulStyleByDepth(depth int) string {
	return ulStyles[(depth-1)%len(ulStyles)]
}

func olStyleByDepth(depth int) string {
	return olStyles[(depth-1)%len(olStyles)]
}

// listKind distinguishes ordered from unordered list frames.
type listKind int

const (
	listUnordered listKind = iota
	listOrdered
)

// listItem is one recognized list line.
type listItem struct {
	depth int // 1-based nesting depth
	kind  listKind
	text  string
}

// listFrame is one currently open list tag. Frames form a stack whose depths
// never decrease from bottom to top.
type listFrame struct {
	kind  listKind
	depth int
}

// List item and tag markup is generated in code; the editor's list styling is
// not a fragment template.
const (
	listTagStyle = "padding-left: 1.2em;color: rgb(37, 37, 37);width: fit-content;"
	listItemBody = `<section style="margin-bottom: 8px;font-size: 15px;color:#333333;letter-spacing: 1px;" data-mpa-md-content="t" data-mpa-md-key="{key}" data-mpa-md-template="30005"><span leaf="">{text}</span></section>`
)

// parseList consumes the maximal contiguous run of list-item lines starting
// at start and returns the nested list markup plus the index of the first
// line after the run. Depth is derived from leading indentation: two columns
// per level, tabs expanded to four columns.
func (p *Parser) parseList(start int) (string, int) {
	var items []listItem

	i := start
	for i < len(p.lines) {
		line := p.lines[i]
		if m := reOL.FindStringSubmatch(line); m != nil {
			items = append(items, listItem{
				depth: depthOf(m[1]),
				kind:  listOrdered,
				text:  strings.TrimSpace(m[3]),
			})
			i++
			continue
		}
		if m := reUL.FindStringSubmatch(line); m != nil {
			items = append(items, listItem{
				depth: depthOf(m[1]),
				kind:  listUnordered,
				text:  strings.TrimSpace(m[3]),
			})
			i++
			continue
		}
		break
	}

	var b strings.Builder
	var stack []listFrame

	open := func(kind listKind, depth int) {
		if kind == listUnordered {
			fmt.Fprintf(&b, `<ul style="list-style-type: %s;%s" class="list-paddingleft-1">`,
				ulStyleByDepth(depth), listTagStyle)
		} else {
			fmt.Fprintf(&b, `<ol style="list-style-type: %s;%s" class="list-paddingleft-1">`,
				olStyleByDepth(depth), listTagStyle)
		}
		stack = append(stack, listFrame{kind: kind, depth: depth})
	}

	closeTop := func() {
		if len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.kind == listUnordered {
			b.WriteString("</ul>")
		} else {
			b.WriteString("</ol>")
		}
	}

	for _, it := range items {
		if len(stack) == 0 || it.depth > stack[len(stack)-1].depth {
			open(it.kind, it.depth)
		} else {
			// Shrink until the top frame can hold this item, then reopen if
			// no matching frame remains.
			for len(stack) > 0 && (stack[len(stack)-1].depth > it.depth || stack[len(stack)-1].kind != it.kind) {
				closeTop()
			}
			if len(stack) == 0 || stack[len(stack)-1].depth < it.depth || stack[len(stack)-1].kind != it.kind {
				open(it.kind, it.depth)
			}
		}

		key := "bullet-list"
		if it.kind == listOrdered {
			key = "ordered-list"
		}
		li := strings.ReplaceAll(listItemBody, "{text}", escapeHTML(it.text))
		li = strings.ReplaceAll(li, "{key}", key)
		b.WriteString("<li>")
		b.WriteString(li)
		b.WriteString("</li>")
	}

	for len(stack) > 0 {
		closeTop()
	}

	return b.String(), i
}

// depthOf converts a leading-whitespace capture into a 1-based nesting depth.
func depthOf(indent string) int {
	width := len(strings.ReplaceAll(indent, "\t", "    "))
	return width/2 + 1
}
