package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOptions is wrapped by CSVOptions validation failures
var ErrInvalidOptions = errors.New("invalid import options")

// UnsupportedFileTypeError means the upload is not delimited text
type UnsupportedFileTypeError struct {
	ContentType string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q: only CSV files are allowed", e.ContentType)
}

// ParseError means the file could not be read as CSV
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse csv: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NoValidRowsError means every data row was rejected (or there were none)
type NoValidRowsError struct {
	Target   string
	Required []string
	Rejected []RejectedRow
}

func (e *NoValidRowsError) Error() string {
	return fmt.Sprintf("No valid %s data found in CSV. Please ensure all required fields are present: %s",
		e.Target, strings.Join(e.Required, ", "))
}

// InsertError means the bulk insert of valid rows failed
type InsertError struct {
	Target string
	Err    error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert %s records: %v", e.Target, e.Err)
}

func (e *InsertError) Unwrap() error {
	return e.Err
}
