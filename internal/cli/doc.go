// Package cli wires the discovery workflow commands: ID allocation,
// question registry maintenance, append-only logging, story lifecycle
// transitions, and validation. Commands share global --dir, --format,
// and --verbose flags and a text/json output formatter.
package cli
