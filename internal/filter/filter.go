// Package filter keeps GFF3 records that belong to corroborated transcripts.
package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/inodb/intron-filter/internal/gff"
	"github.com/inodb/intron-filter/internal/validity"
)

// Stats summarizes one filtering pass.
type Stats struct {
	Comments  int
	Kept      int
	Dropped   int // data lines without a matching ID or Parent
	Malformed int // short lines, also dropped
}

// Filter re-emits annotation lines whose ID or Parent names a valid
// transcript. Kept lines are copied byte for byte.
type Filter struct {
	logger *zap.Logger
}

// New creates a new filter.
func New() *Filter {
	return &Filter{logger: zap.NewNop()}
}

// SetLogger sets the logger for skipped-line messages.
func (f *Filter) SetLogger(l *zap.Logger) {
	f.logger = l
}

// RunFile filters the annotation at inPath into outPath.
func (f *Filter) RunFile(inPath, outPath string, valid validity.TranscriptSet) (Stats, error) {
	r, err := gff.Open(inPath)
	if err != nil {
		return Stats{}, err
	}
	defer r.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return Stats{}, fmt.Errorf("create filtered gff: %w", err)
	}

	stats, err := f.Run(r, out, valid)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close filtered gff: %w", cerr)
	}
	return stats, err
}

// Run copies comments and kept records from r to w in input order.
func (f *Filter) Run(r *gff.Reader, w io.Writer, valid validity.TranscriptSet) (Stats, error) {
	var stats Stats
	bw := bufio.NewWriter(w)

	for {
		line, err := r.Next()
		if err != nil {
			return stats, fmt.Errorf("after line %d: %w", r.LineNumber(), err)
		}
		if line == nil {
			break
		}

		if line.IsComment() {
			stats.Comments++
			if _, err := bw.WriteString(line.Raw); err != nil {
				return stats, fmt.Errorf("write comment: %w", err)
			}
			continue
		}

		rec, err := line.Record()
		if err != nil {
			stats.Malformed++
			f.logger.Debug("skipping short line", zap.Int("line", line.Number), zap.Error(err))
			continue
		}

		if !f.keep(rec, line.Number, valid) {
			stats.Dropped++
			continue
		}

		stats.Kept++
		if _, err := bw.WriteString(line.Raw); err != nil {
			return stats, fmt.Errorf("write record: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("flush filtered gff: %w", err)
	}
	return stats, nil
}

// keep reports whether any ID or Parent token names a valid transcript.
// Every token is inspected; matches are not counted.
func (f *Filter) keep(rec *gff.Record, lineNum int, valid validity.TranscriptSet) bool {
	attrs, err := rec.ParsedAttributes()
	if err != nil {
		f.logger.Debug("ignoring malformed attribute token",
			zap.Int("line", lineNum),
			zap.Error(err))
	}

	keep := false
	for _, key := range []string{gff.AttrID, gff.AttrParent} {
		for _, v := range attrs.Values(key) {
			if valid.Contains(v) {
				keep = true
			}
		}
	}
	return keep
}
