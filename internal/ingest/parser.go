package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Parser streams rows of a delimited text file keyed by header name
type Parser struct {
	closer     io.Closer
	reader     *csv.Reader
	headers    []string
	headerLine int
	rowNo      int64
}

// NewParser opens path and reads its header line. A file without any lines
// yields a parser that reports io.EOF on the first ReadRow.
func NewParser(path string, opts CSVOptions) (*Parser, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}

	p, err := newParser(file, file, opts)
	if err != nil {
		file.Close()
		return nil, err
	}
	return p, nil
}

// newParser reads the header from src. opts must already be normalized.
func newParser(src io.Reader, closer io.Closer, opts CSVOptions) (*Parser, error) {
	var r io.Reader
	switch opts.Encoding {
	case EncodingWindows1251:
		r = charmap.Windows1251.NewDecoder().Reader(src)
	default:
		// strips a UTF-8 byte order mark if present
		r = transform.NewReader(src, unicode.BOMOverride(transform.Nop))
	}

	csvReader := csv.NewReader(r)
	csvReader.Comma = rune(opts.Delimiter[0])
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true
	csvReader.ReuseRecord = false

	p := &Parser{closer: closer, reader: csvReader}

	header, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return p, nil
	}
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("read header: %w", err)}
	}
	p.headerLine, _ = csvReader.FieldPos(0)

	p.headers = make([]string, len(header))
	for i, name := range header {
		p.headers[i] = strings.TrimSpace(name)
	}
	return p, nil
}

// Headers returns the trimmed header names in file order
func (p *Parser) Headers() []string {
	return p.headers
}

// ReadRow reads the next data row. empty is true when every cell is blank.
// Returns io.EOF at end of file and *ParseError on malformed input.
func (p *Parser) ReadRow(ctx context.Context) (row RawRow, empty bool, err error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}

	if p.headers == nil {
		return nil, false, io.EOF
	}

	cells, err := p.reader.Read()
	if err == io.EOF {
		return nil, false, io.EOF
	}
	if err != nil {
		return nil, false, &ParseError{Err: err}
	}

	// blank lines are dropped by the reader but still count
	line, _ := p.reader.FieldPos(0)
	p.rowNo = int64(line - p.headerLine)

	row = make(RawRow, len(p.headers))
	empty = true
	for i, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			empty = false
		}
		if i >= len(p.headers) {
			continue
		}
		name := p.headers[i]
		if _, seen := row[name]; seen {
			// first column with a given header wins
			continue
		}
		row[name] = cell
	}
	return row, empty, nil
}

// RowNo returns the number of the last data row read, counted in file lines
// after the header. It matches the line an editor shows, minus the header
// line.
func (p *Parser) RowNo() int64 {
	return p.rowNo
}

// Close releases the underlying file
func (p *Parser) Close() error {
	if p.closer == nil {
		return nil
	}
	err := p.closer.Close()
	p.closer = nil
	return err
}
