package ingest

import (
	"errors"
	"testing"
)

func TestAcceptsContentType(t *testing.T) {
	tests := []struct {
		contentType string
		filename    string
		want        bool
	}{
		{"text/csv", "customers.csv", true},
		{"text/csv; charset=utf-8", "customers", true},
		{"application/csv", "x.txt", true},
		{"text/x-csv", "x.csv", true},
		{"text/comma-separated-values", "x.csv", true},
		{"application/vnd.ms-excel", "export.CSV", true},
		{"application/vnd.ms-excel", "export.xls", false},
		{"text/plain", "notes.txt", false},
		{"application/octet-stream", "data.csv", true},
		{"application/pdf", "data.csv", false},
		{"", "data.csv", false},
	}

	for _, tt := range tests {
		if got := AcceptsContentType(tt.contentType, tt.filename); got != tt.want {
			t.Errorf("AcceptsContentType(%q, %q) = %v, want %v", tt.contentType, tt.filename, got, tt.want)
		}
	}
}

func TestSniffText(t *testing.T) {
	dir := t.TempDir()

	csvPath := writeFile(t, dir, "ok.csv", []byte("CUSTOMER NAME,EMAIL\nAsha,a@x.io\n"))
	if err := SniffText(csvPath); err != nil {
		t.Errorf("SniffText(csv) error = %v", err)
	}

	zipPath := writeFile(t, dir, "bad.csv", []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00"))
	var unsupported *UnsupportedFileTypeError
	if err := SniffText(zipPath); !errors.As(err, &unsupported) {
		t.Errorf("SniffText(zip) error = %v, want *UnsupportedFileTypeError", err)
	}
}
