// Package docmodel provides the structured document model for discovery
// workspace files.
//
// A markdown document is parsed into an ordered list of nodes: headings,
// tables, and verbatim prose blocks. Serializing an unmutated model
// reproduces the input byte for byte, so every mutating operation can work
// on the model and never on raw text via find-and-replace.
//
// # Node Model
//
// The parser is line-oriented:
//
//   - A line starting with 1-6 '#' characters followed by a space is a
//     Heading node.
//   - A maximal run of lines that start and end with '|' is a Table node.
//     The first row is the header, the second the separator.
//   - Everything else accumulates into Prose nodes, preserved verbatim.
//
// # Sections
//
// A section is addressed by the exact text of its heading line (e.g.
// "## Edge Cases") and spans every node up to the next heading. Section
// operations (extract, replace, transform, table row append/update) locate
// the section first and fail with a StructuralError naming the section if
// it is absent or malformed.
//
// # Round-Trip Stability
//
// Table rows keep their raw source line until mutated; only touched rows
// are rebuilt in normalized "| a | b |" form. Prose is never reflowed.
package docmodel
