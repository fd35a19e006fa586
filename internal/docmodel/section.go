package docmodel

import "strings"

// FindSection locates the section introduced by the heading whose full
// source line equals header (after trimming). It returns the node index of
// the heading and the index one past the last node in the section, which
// runs until the next heading of any level.
func (d *Document) FindSection(header string) (start, end int, ok bool) {
	header = strings.TrimSpace(header)
	for i, n := range d.Nodes {
		h, isHeading := n.(*Heading)
		if !isHeading || strings.TrimSpace(h.Raw) != header {
			continue
		}
		end = len(d.Nodes)
		for j := i + 1; j < len(d.Nodes); j++ {
			if _, isH := d.Nodes[j].(*Heading); isH {
				end = j
				break
			}
		}
		return i, end, true
	}
	return 0, 0, false
}

// FindSectionTree is like FindSection but the section runs until the next
// heading of the same or shallower level, so nested subsections belong to
// their parent.
func (d *Document) FindSectionTree(header string) (start, end int, ok bool) {
	header = strings.TrimSpace(header)
	for i, n := range d.Nodes {
		h, isHeading := n.(*Heading)
		if !isHeading || strings.TrimSpace(h.Raw) != header {
			continue
		}
		end = len(d.Nodes)
		for j := i + 1; j < len(d.Nodes); j++ {
			if next, isH := d.Nodes[j].(*Heading); isH && next.Level <= h.Level {
				end = j
				break
			}
		}
		return i, end, true
	}
	return 0, 0, false
}

// HasSection reports whether the document contains the given heading line.
func (d *Document) HasSection(header string) bool {
	_, _, ok := d.FindSection(header)
	return ok
}

// SectionText returns the trimmed body text of a section, or "" if the
// section does not exist.
func (d *Document) SectionText(header string) string {
	start, end, ok := d.FindSection(header)
	if !ok {
		return ""
	}
	var lines []string
	for _, n := range d.Nodes[start+1 : end] {
		lines = append(lines, n.Lines()...)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ReplaceSection swaps the body of a section for new content. If the
// section does not exist it is appended to the end of the document.
func (d *Document) ReplaceSection(header, body string) {
	start, end, ok := d.FindSection(header)
	if !ok {
		text := strings.TrimRight(d.Serialize(), "\n")
		d.Reparse(text + "\n\n" + header + "\n\n" + body + "\n")
		return
	}

	var lines []string
	for _, n := range d.Nodes[:start+1] {
		lines = append(lines, n.Lines()...)
	}
	lines = append(lines, "")
	lines = append(lines, strings.Split(body, "\n")...)
	lines = append(lines, "")
	for _, n := range d.Nodes[end:] {
		lines = append(lines, n.Lines()...)
	}
	d.Reparse(strings.Join(lines, "\n"))
}

// TransformSection runs fn over the body lines of a section (everything
// between the heading and the next heading) and splices the result back.
// Returns a StructuralError if the section is absent.
func (d *Document) TransformSection(header string, fn func(lines []string) ([]string, error)) error {
	start, end, ok := d.FindSection(header)
	if !ok {
		return NewMissingSectionError(d.Name, header)
	}

	var body []string
	for _, n := range d.Nodes[start+1 : end] {
		body = append(body, n.Lines()...)
	}

	replaced, err := fn(body)
	if err != nil {
		return err
	}

	var lines []string
	for _, n := range d.Nodes[:start+1] {
		lines = append(lines, n.Lines()...)
	}
	lines = append(lines, replaced...)
	for _, n := range d.Nodes[end:] {
		lines = append(lines, n.Lines()...)
	}
	d.Reparse(strings.Join(lines, "\n"))
	return nil
}

// ReplaceNodeRange swaps the nodes in [start, end) for replacement text.
// An empty replacement removes the range.
func (d *Document) ReplaceNodeRange(start, end int, text string) {
	var lines []string
	for _, n := range d.Nodes[:start] {
		lines = append(lines, n.Lines()...)
	}
	if text != "" {
		lines = append(lines, strings.Split(text, "\n")...)
	}
	for _, n := range d.Nodes[end:] {
		lines = append(lines, n.Lines()...)
	}
	d.Reparse(strings.Join(lines, "\n"))
}

// NodeRangeText returns the exact source text of the nodes in [start, end).
func (d *Document) NodeRangeText(start, end int) string {
	var lines []string
	for _, n := range d.Nodes[start:end] {
		lines = append(lines, n.Lines()...)
	}
	return strings.Join(lines, "\n")
}

// AppendEntry adds a rendered log entry to the end of the document,
// separated from existing content by one blank line.
func (d *Document) AppendEntry(entry string) {
	text := strings.TrimRight(d.Serialize(), "\n")
	d.Reparse(text + "\n\n" + strings.TrimRight(entry, "\n") + "\n")
}
