package ingest

import (
	"fmt"
	"strings"
)

// RawRow maps trimmed header names to the cell values of one CSV line
type RawRow map[string]string

// RejectedRow describes a data row that failed validation
type RejectedRow struct {
	RowNumber int64    `json:"rowNumber"`
	Reasons   []string `json:"reasons"`
}

// Outcome is the result of one import call
type Outcome[T any] struct {
	InsertedCount int
	Inserted      []T
	Rejected      []RejectedRow
	RowsRead      int64
	RowsSkipped   int64 // completely empty rows
}

// CSVOptions describes how an uploaded file is decoded
type CSVOptions struct {
	Encoding  string `json:"encoding"`  // "utf-8" or "windows-1251"
	Delimiter string `json:"delimiter"` // "," or ";"
}

// Normalize fills defaults and validates the options
func (o CSVOptions) Normalize() (CSVOptions, error) {
	o.Encoding = strings.ToLower(strings.TrimSpace(o.Encoding))
	switch o.Encoding {
	case "", "utf-8", "utf8":
		o.Encoding = EncodingUTF8
	case EncodingWindows1251, "cp1251":
		o.Encoding = EncodingWindows1251
	default:
		return o, fmt.Errorf("%w: encoding must be 'utf-8' or 'windows-1251'", ErrInvalidOptions)
	}

	switch o.Delimiter {
	case "":
		o.Delimiter = ","
	case ",", ";":
	default:
		return o, fmt.Errorf("%w: delimiter must be ',' or ';'", ErrInvalidOptions)
	}
	return o, nil
}

const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1251 = "windows-1251"
)

// DuplicatePolicy controls what happens to rows repeating an earlier row's key
type DuplicatePolicy string

const (
	// DuplicatesAllow inserts every valid row, even exact repeats
	DuplicatesAllow DuplicatePolicy = "allow"
	// DuplicatesSkip rejects rows whose key was already seen in the same file
	DuplicatesSkip DuplicatePolicy = "skip"
)

// ParseDuplicatePolicy validates a configured policy name
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", DuplicatesAllow:
		return DuplicatesAllow, nil
	case DuplicatesSkip:
		return DuplicatesSkip, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want %q or %q)", s, DuplicatesAllow, DuplicatesSkip)
	}
}
