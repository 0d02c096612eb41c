// Package errors defines the error types shared by the loaders, the comparison
// engine and the renderers.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match them with errors.Is.
var (
	// ErrMissingColumn is returned when a required column is absent from a table.
	ErrMissingColumn = errors.New("missing column")

	// ErrEmptySelection is returned when no rows survive the year/week filter.
	ErrEmptySelection = errors.New("empty selection")

	// ErrUnsupportedFormat is returned for unknown input or output file formats.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrLengthMismatch is returned when a column does not match the table length.
	ErrLengthMismatch = errors.New("column length mismatch")

	// ErrNotNumeric is returned when a numeric column holds unparseable text.
	ErrNotNumeric = errors.New("column is not numeric")
)

// MissingColumn wraps ErrMissingColumn with the column name.
func MissingColumn(name string) error {
	return fmt.Errorf("%w: %q", ErrMissingColumn, name)
}

// Standard library helpers, so importers need only this package.
var (
	Is     = errors.Is
	As     = errors.As
	New    = errors.New
	Unwrap = errors.Unwrap
	Join   = errors.Join
)
