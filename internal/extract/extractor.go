// Package extract pulls gap-feature intervals out of GFF3 annotations.
package extract

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/inodb/intron-filter/internal/bed"
	"github.com/inodb/intron-filter/internal/gff"
)

// DefaultFeatureType is the GFF3 type of gap features written by
// `gt gff3 -addintrons`.
const DefaultFeatureType = "intron"

// Stats summarizes one extraction pass.
type Stats struct {
	Lines       int // all lines read, comments included
	Comments    int
	Malformed   int // short lines and gap features with unusable coordinates
	GapFeatures int // intervals written
	Unowned     int // gap features labelled gff.UnknownParent
}

// Extractor converts gap-feature records to BED intervals.
type Extractor struct {
	featureType string
	logger      *zap.Logger
}

// NewExtractor creates an extractor for the default gap-feature type.
func NewExtractor() *Extractor {
	return &Extractor{
		featureType: DefaultFeatureType,
		logger:      zap.NewNop(),
	}
}

// SetFeatureType sets the GFF3 type column value that marks gap features.
func (e *Extractor) SetFeatureType(featureType string) {
	e.featureType = featureType
}

// SetLogger sets the logger for skipped-record messages.
func (e *Extractor) SetLogger(l *zap.Logger) {
	e.logger = l
}

// ExtractFile reads the annotation at inPath and writes gap-feature
// intervals to outPath, creating or truncating it.
func (e *Extractor) ExtractFile(inPath, outPath string) (Stats, error) {
	r, err := gff.Open(inPath)
	if err != nil {
		return Stats{}, err
	}
	defer r.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return Stats{}, fmt.Errorf("create interval file: %w", err)
	}

	stats, err := e.Extract(r, bed.NewWriter(out))
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close interval file: %w", cerr)
	}
	return stats, err
}

// Extract streams r and writes one interval per gap feature to w, in
// encounter order. The writer is flushed before returning.
func (e *Extractor) Extract(r *gff.Reader, w *bed.Writer) (Stats, error) {
	var stats Stats

	for {
		line, err := r.Next()
		if err != nil {
			return stats, fmt.Errorf("after line %d: %w", r.LineNumber(), err)
		}
		if line == nil {
			break
		}
		stats.Lines++

		if line.IsComment() {
			stats.Comments++
			continue
		}

		rec, err := line.Record()
		if err != nil {
			stats.Malformed++
			e.logger.Debug("skipping short line", zap.Int("line", line.Number), zap.Error(err))
			continue
		}

		if rec.Type != e.featureType {
			continue
		}

		start, end, err := rec.HalfOpen()
		if err != nil {
			stats.Malformed++
			e.logger.Warn("skipping gap feature with invalid coordinates",
				zap.Int("line", line.Number),
				zap.Error(err))
			continue
		}

		owner := e.owner(rec, line.Number)
		if owner == gff.UnknownParent {
			stats.Unowned++
		}

		if err := w.Write(bed.Interval{Chrom: rec.SeqID, Start: start, End: end, Name: owner}); err != nil {
			return stats, fmt.Errorf("write interval: %w", err)
		}
	}

	stats.GapFeatures = w.Count()
	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("flush intervals: %w", err)
	}
	return stats, nil
}

// owner returns the value of the last Parent token, or gff.UnknownParent.
func (e *Extractor) owner(rec *gff.Record, lineNum int) string {
	attrs, err := rec.ParsedAttributes()
	if err != nil {
		e.logger.Debug("ignoring malformed attribute token",
			zap.Int("line", lineNum),
			zap.Error(err))
	}

	parent, ok := attrs.Last(gff.AttrParent)
	if !ok {
		return gff.UnknownParent
	}
	return parent
}
