// Package bed reads and writes BED interval files.
//
// Intervals use the BED convention: 0-based start, half-open end.
package bed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Interval is a BED record. Only the first four columns are kept.
type Interval struct {
	Chrom string
	Start int64 // 0-based inclusive
	End   int64 // exclusive
	Name  string
}

// Overlaps reports whether the two intervals share at least one base.
// Both must be on the same chromosome.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Chrom == other.Chrom && iv.Start < other.End && other.Start < iv.End
}

// Reader reads BED records, skipping blank, comment, track and browser lines.
type Reader struct {
	scanner    *bufio.Scanner
	file       *os.File
	lineNumber int
}

// Open opens a BED file for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bed file: %w", err)
	}
	r := NewReader(f)
	r.file = f
	return r, nil
}

// NewReader creates a reader from an io.Reader.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for BED12 lines with many blocks
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	return &Reader{scanner: scanner}
}

// Next reads the next interval.
// Returns nil, nil when there are no more intervals.
func (r *Reader) Next() (*Interval, error) {
	for r.scanner.Scan() {
		r.lineNumber++
		line := strings.TrimRight(r.scanner.Text(), "\r")

		if isHeader(line) {
			continue
		}

		return r.parseLine(line)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan bed: %w", err)
	}
	return nil, nil
}

func isHeader(line string) bool {
	return strings.TrimSpace(line) == "" ||
		strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "track") ||
		strings.HasPrefix(line, "browser")
}

func (r *Reader) parseLine(line string) (*Interval, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		return nil, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("expected at least 3 columns, found %d", len(fields)),
		}
	}

	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{Line: r.lineNumber, Message: fmt.Sprintf("invalid start: %s", fields[1])}
	}
	end, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, &ParseError{Line: r.lineNumber, Message: fmt.Sprintf("invalid end: %s", fields[2])}
	}
	if start < 0 || end < start {
		return nil, &ParseError{Line: r.lineNumber, Message: fmt.Sprintf("invalid interval: %d-%d", start, end)}
	}

	iv := &Interval{Chrom: fields[0], Start: start, End: end}
	if len(fields) > 3 {
		iv.Name = fields[3]
	}
	return iv, nil
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadAll reads every remaining interval.
func (r *Reader) ReadAll() ([]Interval, error) {
	var out []Interval
	for {
		iv, err := r.Next()
		if err != nil {
			return nil, err
		}
		if iv == nil {
			return out, nil
		}
		out = append(out, *iv)
	}
}

// ParseError represents an error during BED parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bed parse error at line %d: %s", e.Line, e.Message)
}

// Writer writes intervals as 4-column tab-separated BED.
type Writer struct {
	w     *bufio.Writer
	count int
}

// NewWriter creates a new BED4 writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes a single interval.
func (bw *Writer) Write(iv Interval) error {
	bw.count++
	_, err := bw.w.WriteString(iv.Chrom + "\t" +
		strconv.FormatInt(iv.Start, 10) + "\t" +
		strconv.FormatInt(iv.End, 10) + "\t" +
		iv.Name + "\n")
	return err
}

// Count returns the number of intervals written.
func (bw *Writer) Count() int {
	return bw.count
}

// Flush flushes any buffered data to the underlying writer.
func (bw *Writer) Flush() error {
	return bw.w.Flush()
}
