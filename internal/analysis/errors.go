package analysis

import (
	"errors"
	"fmt"
)

// FormatError indicates the source bytes could not be parsed as tabular data.
type FormatError struct {
	Source string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("failed to parse %s as tabular data: %s", e.Source, e.Reason)
}

// EmptyInputError indicates the source parsed but contained zero data rows.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "input contains no data rows"
}

// SchemaError indicates a required column could not be resolved, exactly or
// fuzzily, against the input header.
type SchemaError struct {
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column: %s", e.Field)
}

// TypeConversionError indicates a cell value could not be coerced to the
// column's expected type.
type TypeConversionError struct {
	Column string
	Value  string
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("column %s: cannot convert value %q", e.Column, e.Value)
}

// InsufficientDataError indicates the dataset is too small for correlation
// analysis, which requires at least two records.
type InsufficientDataError struct {
	Records int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("correlation requires at least 2 records, got %d", e.Records)
}

// DegenerateFitError indicates a zero-variance series makes the trend fit
// (and the correlation coefficient) undefined.
type DegenerateFitError struct {
	Column string
}

func (e *DegenerateFitError) Error() string {
	return fmt.Sprintf("column %s has zero variance, trend fit is degenerate", e.Column)
}

// IsInputError reports whether err belongs to the pipeline's error
// taxonomy, i.e. the caller's data is at fault rather than the service.
func IsInputError(err error) bool {
	var (
		formatErr *FormatError
		emptyErr  *EmptyInputError
		schemaErr *SchemaError
		typeErr   *TypeConversionError
		insufErr  *InsufficientDataError
		degenErr  *DegenerateFitError
	)
	return errors.As(err, &formatErr) ||
		errors.As(err, &emptyErr) ||
		errors.As(err, &schemaErr) ||
		errors.As(err, &typeErr) ||
		errors.As(err, &insufErr) ||
		errors.As(err, &degenErr)
}
