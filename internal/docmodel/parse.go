package docmodel

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var headingRe = regexp.MustCompile(`^(#{1,6}) (.*)$`)

// Parse builds a Document from raw markdown. name is the document's path
// relative to the discovery dir, carried into error reports.
//
// Parse never fails: unrecognized content is preserved as prose so that
// Serialize reproduces the input exactly. Structural problems surface
// later, when an operation addresses a section or table that is missing
// or malformed.
func Parse(name, content string) *Document {
	doc := &Document{Name: name}
	lines := strings.Split(content, "\n")

	var prose []string
	flushProse := func() {
		if len(prose) > 0 {
			doc.Nodes = append(doc.Nodes, &Prose{Text: prose})
			prose = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := headingRe.FindStringSubmatch(line); m != nil {
			flushProse()
			doc.Nodes = append(doc.Nodes, &Heading{
				Level: len(m[1]),
				Text:  strings.TrimSpace(m[2]),
				Raw:   line,
				Line:  i + 1,
			})
			continue
		}

		if isTableLine(line) {
			flushProse()
			table := &Table{HeaderRaw: line, Line: i + 1}
			table.Header = splitCells(line)
			j := i + 1
			if j < len(lines) && isSeparatorLine(lines[j]) {
				table.Separator = lines[j]
				j++
			}
			for j < len(lines) && isTableLine(lines[j]) {
				table.Rows = append(table.Rows, &Row{
					Cells: splitCells(lines[j]),
					Raw:   lines[j],
					Line:  j + 1,
				})
				j++
			}
			doc.Nodes = append(doc.Nodes, table)
			i = j - 1
			continue
		}

		prose = append(prose, line)
	}
	flushProse()

	return doc
}

// Serialize renders the document back to text. For an unmutated model the
// output is byte-identical to the parsed input.
func (d *Document) Serialize() string {
	var lines []string
	for _, n := range d.Nodes {
		lines = append(lines, n.Lines()...)
	}
	return strings.Join(lines, "\n")
}

// Reparse rebuilds the node model from full replacement text, keeping the
// document name. Used by mutations that operate on section lines.
func (d *Document) Reparse(content string) {
	*d = *Parse(d.Name, content)
}

// Normalize returns s in Unicode NFC form. All opaque payload text is
// normalized before being stored so a document has a single canonical
// representation on disk.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

func isTableLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) > 1 && strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}

var separatorRe = regexp.MustCompile(`^\|[\s:|-]+\|$`)

func isSeparatorLine(line string) bool {
	return separatorRe.MatchString(strings.TrimSpace(line))
}

// splitCells extracts trimmed cell values from a pipe-table line.
func splitCells(line string) []string {
	trimmed := strings.TrimSpace(line)
	parts := strings.Split(trimmed, "|")
	if len(parts) < 3 {
		return nil
	}
	cells := make([]string, 0, len(parts)-2)
	for _, p := range parts[1 : len(parts)-1] {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}
