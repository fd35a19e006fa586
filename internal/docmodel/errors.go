package docmodel

import (
	"errors"
	"fmt"
)

// Structural error codes (E200-E209).
const (
	ErrCodeMissingSection = "E201" // required section absent
	ErrCodeTableNotFound  = "E202" // no table inside the section
	ErrCodeMalformedRow   = "E203" // row cell count disagrees with header
	ErrCodeRowNotFound    = "E204" // no row matches the requested ID
	ErrCodeUnknownColumn  = "E205" // referenced column missing from header
)

// StructuralError reports a document that cannot be parsed or addressed
// against its expected shape.
type StructuralError struct {
	Code    string
	File    string
	Section string
	Line    int
	Message string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsStructuralError reports whether err is (or wraps) a StructuralError.
func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// NewMissingSectionError creates a StructuralError for an absent section.
func NewMissingSectionError(file, section string) *StructuralError {
	return &StructuralError{
		Code:    ErrCodeMissingSection,
		File:    file,
		Section: section,
		Message: fmt.Sprintf("section not found: %s", section),
	}
}

// NewTableNotFoundError creates a StructuralError for a section without a table.
func NewTableNotFoundError(file, section string) *StructuralError {
	return &StructuralError{
		Code:    ErrCodeTableNotFound,
		File:    file,
		Section: section,
		Message: fmt.Sprintf("no table found in section: %s", section),
	}
}
