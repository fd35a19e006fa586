// Package validate checks a discovery repository for structural and
// referential integrity: required documents and sections, ID sequence
// health, cross-reference closure, and registry-wide invariants. The
// validator is read-only; it reports findings and never repairs.
package validate
