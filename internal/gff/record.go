// Package gff provides GFF3 annotation parsing functionality.
package gff

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Column indices of a GFF3 data line.
// http://www.sequenceontology.org/gff3.shtml
const (
	FieldSeqID = iota
	FieldSource
	FieldType
	FieldStart
	FieldEnd
	FieldScore
	FieldStrand
	FieldPhase
	FieldAttributes

	NumFields
)

// UnknownParent labels gap features that carry no Parent attribute.
const UnknownParent = "unknown"

// ErrTooFewFields is returned for data lines with fewer than NumFields columns.
var ErrTooFewFields = errors.New("too few fields")

// Record is a single GFF3 feature line.
type Record struct {
	SeqID      string
	Source     string
	Type       string
	Start      string // 1-based inclusive, unparsed
	End        string // 1-based inclusive, unparsed
	Score      string
	Strand     string
	Phase      string
	Attributes string // raw attribute column
}

// ParseRecord splits a data line into its columns.
// Surrounding whitespace is trimmed before splitting, so a line whose
// trailing columns are empty counts as short.
func ParseRecord(line string) (*Record, error) {
	fields := strings.Split(strings.TrimSpace(line), "\t")
	if len(fields) < NumFields {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrTooFewFields, NumFields, len(fields))
	}

	return &Record{
		SeqID:      fields[FieldSeqID],
		Source:     fields[FieldSource],
		Type:       fields[FieldType],
		Start:      fields[FieldStart],
		End:        fields[FieldEnd],
		Score:      fields[FieldScore],
		Strand:     fields[FieldStrand],
		Phase:      fields[FieldPhase],
		Attributes: fields[FieldAttributes],
	}, nil
}

// Coordinates parses the 1-based inclusive start and end columns.
func (r *Record) Coordinates() (start, end int64, err error) {
	start, err = strconv.ParseInt(r.Start, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse start: %w", err)
	}
	end, err = strconv.ParseInt(r.End, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse end: %w", err)
	}
	if start < 1 {
		return 0, 0, fmt.Errorf("start %d is not 1-based", start)
	}
	if end < start {
		return 0, 0, fmt.Errorf("end %d before start %d", end, start)
	}
	return start, end, nil
}

// HalfOpen converts the record's coordinates to 0-based half-open form.
// e.g., 101..200 -> [100, 200)
func (r *Record) HalfOpen() (start, end int64, err error) {
	start, end, err = r.Coordinates()
	if err != nil {
		return 0, 0, err
	}
	return start - 1, end, nil
}

// ParsedAttributes parses the attribute column.
func (r *Record) ParsedAttributes() (Attributes, error) {
	return ParseAttributes(r.Attributes)
}
