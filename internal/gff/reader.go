package gff

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Line is one raw line of a GFF3 file.
type Line struct {
	Raw    string // exactly as read, including the line terminator if any
	Number int
}

// IsComment reports whether the line is a comment or directive.
func (l *Line) IsComment() bool {
	return strings.HasPrefix(l.Raw, "#")
}

// Record parses the line as a feature record.
func (l *Line) Record() (*Record, error) {
	rec, err := ParseRecord(l.Raw)
	if err != nil {
		return nil, &ParseError{Line: l.Number, Err: err}
	}
	return rec, nil
}

// Reader streams lines from a GFF3 file without altering them.
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
}

// Open opens a GFF3 file for reading.
// Supports both plain and gzipped (.gff3.gz) files.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gff file: %w", err)
	}

	r := &Reader{file: file}
	br := bufio.NewReaderSize(file, 64*1024)

	// Check for gzip magic number (0x1f, 0x8b)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReaderSize(r.gzipReader, 64*1024)
	} else {
		r.reader = br
	}

	return r, nil
}

// NewReader creates a reader from an io.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next line.
// Returns nil, nil when there are no more lines.
func (r *Reader) Next() (*Line, error) {
	raw, err := r.reader.ReadString('\n')
	if raw == "" {
		if err == nil || err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read gff line: %w", err)
	}
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read gff line: %w", err)
	}
	r.lineNumber++

	return &Line{Raw: raw, Number: r.lineNumber}, nil
}

// LineNumber returns the number of the last line read.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the reader and underlying file.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ParseError represents an error during GFF parsing with line context.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gff parse error at line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
