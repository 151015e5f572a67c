package wechat

import "strings"

// Table markup is generated in code around a fixed skeleton; body cells are
// wrapped in the editor's text section, header cells use a bare span.
const tableCellBody = `<section data-mpa-md-key="text" style="font-size: 15px;color: rgb(51, 51, 51);letter-spacing: 1px;" data-mpa-md-template="30005">`

// parseTable attempts to read a pipe table starting at start. On success it
// returns the table markup and the number of consumed lines. A candidate
// whose second line fails the separator contract is rejected with ("", 0) and
// zero lines consumed; the caller then treats the line as plain text.
func (p *Parser) parseTable(start int) (string, int) {
	lines := p.lines
	i := start
	if i >= len(lines) || !strings.Contains(lines[i], "|") {
		return "", 0
	}

	header := splitRow(lines[i])
	if i+1 >= len(lines) {
		return "", 0
	}
	if !isSeparatorRow(splitRow(lines[i+1])) {
		return "", 0
	}

	// Body rows: any following non-blank line still containing a pipe. Cell
	// counts are not reshaped against the header.
	i += 2
	var rows [][]string
	for i < len(lines) && strings.Contains(lines[i], "|") && strings.TrimSpace(lines[i]) != "" {
		rows = append(rows, splitRow(lines[i]))
		i++
	}

	parts := []string{"<table>", "  <tbody>"}

	parts = append(parts, "    <tr>")
	for _, cell := range header {
		parts = append(parts,
			"      <td>",
			"        <section>",
			`          <span leaf="">`+escapeHTML(cell)+"</span>",
			"        </section>",
			"      </td>")
	}
	parts = append(parts, "    </tr>")

	for _, row := range rows {
		parts = append(parts, "    <tr>")
		for _, cell := range row {
			parts = append(parts,
				"      <td>",
				"        <section>",
				"          "+tableCellBody,
				`            <span leaf="">`+escapeHTML(cell)+"</span>",
				"          </section>",
				"        </section>",
				"      </td>")
		}
		parts = append(parts, "    </tr>")
	}

	parts = append(parts, "  </tbody>", "</table>")

	return strings.Join(parts, "\n"), i - start
}

// splitRow splits a pipe-delimited row into trimmed cells, dropping the
// enclosing pipes when present.
func splitRow(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")
	cells := strings.Split(s, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// isSeparatorRow reports whether every cell consists only of '-' and ':'
// characters and carries at least three dashes.
func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if strings.Trim(c, "-:") != "" {
			return false
		}
		if strings.Count(c, "-") < 3 {
			return false
		}
	}
	return true
}
