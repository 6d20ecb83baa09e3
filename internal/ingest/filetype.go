package ingest

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var csvContentTypes = map[string]bool{
	"text/csv":                    true,
	"application/csv":             true,
	"text/x-csv":                  true,
	"application/x-csv":           true,
	"text/comma-separated-values": true,
}

// generic types some browsers declare for .csv files
var csvByExtension = map[string]bool{
	"application/vnd.ms-excel": true,
	"text/plain":               true,
	"application/octet-stream": true,
}

// AcceptsContentType reports whether a declared multipart content type is
// acceptable for a CSV import.
func AcceptsContentType(contentType, filename string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	if csvContentTypes[mt] {
		return true
	}
	return csvByExtension[mt] && strings.EqualFold(filepath.Ext(filename), ".csv")
}

// SniffText checks the stored bytes of an upload and fails with
// *UnsupportedFileTypeError unless they look like text.
func SniffText(path string) error {
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return err
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return nil
		}
	}
	return &UnsupportedFileTypeError{ContentType: detected.String()}
}
