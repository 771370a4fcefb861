package parser

import (
	"fmt"
	"strings"

	"github.com/divrep/divrep/internal/demographics"
)

// UnexpectedValueError reports a CFP row whose status is not one the report
// knows how to classify. It means the export format changed upstream.
type UnexpectedValueError struct {
	Status string
	Path   string
	Line   int
	Record string
}

// Error implements the error interface
func (e *UnexpectedValueError) Error() string {
	return fmt.Sprintf("got unexpected status %q at %s:%d for %s", e.Status, e.Path, e.Line, e.Record)
}

// UnrecognizedTypeError reports a registration row for a demographic type
// that is not being processed.
type UnrecognizedTypeError struct {
	Type   string
	Path   string
	Line   int
	Active []demographics.Type
}

// Error implements the error interface
func (e *UnrecognizedTypeError) Error() string {
	return fmt.Sprintf("unrecognized demographic type %q at %s:%d (processing: %s)",
		e.Type, e.Path, e.Line, strings.Join(demographics.Names(e.Active), ", "))
}

// MissingColumnError reports a required column absent from a header row.
type MissingColumnError struct {
	Column string
	Path   string
}

// Error implements the error interface
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s has no %q column", e.Path, e.Column)
}
