package docmodel

import "strings"

// Node is one parsed block of a document.
type Node interface {
	// Lines returns the exact source lines for this node.
	Lines() []string
}

// Prose is a verbatim run of lines outside headings and tables.
type Prose struct {
	Text []string
}

// Lines implements Node.
func (p *Prose) Lines() []string { return p.Text }

// Heading is a markdown heading line.
type Heading struct {
	Level int    // 1-6
	Text  string // text after the hashes, trimmed
	Raw   string // full source line
	Line  int    // 1-based line number in the source
}

// Lines implements Node.
func (h *Heading) Lines() []string { return []string{h.Raw} }

// Row is one table row. Raw is empty once the row has been rebuilt by a
// mutation, in which case the normalized form is serialized instead.
type Row struct {
	Cells []string
	Raw   string
	Line  int
}

// Render returns the serialized form of the row.
func (r *Row) Render() string {
	if r.Raw != "" {
		return r.Raw
	}
	return "| " + strings.Join(r.Cells, " | ") + " |"
}

// Table is a markdown pipe table. Header holds the column names from the
// first row. Separator is the raw delimiter line ("|----|----|"), empty if
// the table had none.
type Table struct {
	Header    []string
	HeaderRaw string
	Separator string
	Rows      []*Row
	Line      int
}

// Lines implements Node.
func (t *Table) Lines() []string {
	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, t.HeaderRaw)
	if t.Separator != "" {
		lines = append(lines, t.Separator)
	}
	for _, row := range t.Rows {
		lines = append(lines, row.Render())
	}
	return lines
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Document is an ordered collection of parsed nodes for one file.
type Document struct {
	Name  string // path relative to the discovery dir, e.g. "archive/DECISIONS.md"
	Nodes []Node
}

// Headings returns every heading node in order.
func (d *Document) Headings() []*Heading {
	var out []*Heading
	for _, n := range d.Nodes {
		if h, ok := n.(*Heading); ok {
			out = append(out, h)
		}
	}
	return out
}
