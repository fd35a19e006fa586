package docmodel

import "fmt"

// TableIn returns the first table inside the named section.
func (d *Document) TableIn(section string) (*Table, error) {
	start, end, ok := d.FindSection(section)
	if !ok {
		return nil, NewMissingSectionError(d.Name, section)
	}
	for _, n := range d.Nodes[start+1 : end] {
		if t, isTable := n.(*Table); isTable {
			return t, nil
		}
	}
	return nil, NewTableNotFoundError(d.Name, section)
}

// TableRows returns the parsed rows of the first table in a section as
// column-name keyed maps. Rows whose cell count disagrees with the header
// are skipped, matching read-side leniency; write-side operations reject
// them instead.
func (d *Document) TableRows(section string) ([]map[string]string, error) {
	table, err := d.TableIn(section)
	if err != nil {
		return nil, err
	}
	var rows []map[string]string
	for _, row := range table.Rows {
		if len(row.Cells) != len(table.Header) {
			continue
		}
		m := make(map[string]string, len(table.Header))
		for i, h := range table.Header {
			m[h] = row.Cells[i]
		}
		rows = append(rows, m)
	}
	return rows, nil
}

// AppendTableRow adds a row to the first table in a section. Cells are
// taken from data by header column name; absent columns become empty.
func (d *Document) AppendTableRow(section string, data map[string]string) error {
	table, err := d.TableIn(section)
	if err != nil {
		return err
	}
	cells := make([]string, len(table.Header))
	for i, h := range table.Header {
		cells[i] = Normalize(data[h])
	}
	table.Rows = append(table.Rows, &Row{Cells: cells})
	return nil
}

// UpdateTableRow rewrites the row whose idColumn cell equals idValue,
// applying every column present in data and leaving the rest untouched.
func (d *Document) UpdateTableRow(section, idColumn, idValue string, data map[string]string) error {
	table, err := d.TableIn(section)
	if err != nil {
		return err
	}
	idIdx := table.ColumnIndex(idColumn)
	if idIdx < 0 {
		return &StructuralError{
			Code:    ErrCodeUnknownColumn,
			File:    d.Name,
			Section: section,
			Line:    table.Line,
			Message: fmt.Sprintf("column %q not in table header", idColumn),
		}
	}
	for _, row := range table.Rows {
		if idIdx >= len(row.Cells) || row.Cells[idIdx] != idValue {
			continue
		}
		if len(row.Cells) != len(table.Header) {
			return &StructuralError{
				Code:    ErrCodeMalformedRow,
				File:    d.Name,
				Section: section,
				Line:    row.Line,
				Message: fmt.Sprintf("row %s has %d cells, header has %d", idValue, len(row.Cells), len(table.Header)),
			}
		}
		for col, val := range data {
			if idx := table.ColumnIndex(col); idx >= 0 {
				row.Cells[idx] = Normalize(val)
			}
		}
		row.Raw = "" // force normalized rebuild
		return nil
	}
	return &StructuralError{
		Code:    ErrCodeRowNotFound,
		File:    d.Name,
		Section: section,
		Message: fmt.Sprintf("row with %s=%s not found", idColumn, idValue),
	}
}
