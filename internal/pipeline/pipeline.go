// Package pipeline runs the junction-support filter end to end.
// Stages run strictly in order and hand off through files under the
// output prefix.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/inodb/intron-filter/internal/extract"
	"github.com/inodb/intron-filter/internal/filter"
	"github.com/inodb/intron-filter/internal/overlap"
	"github.com/inodb/intron-filter/internal/validity"
)

// Artifacts are the files a run produces.
type Artifacts struct {
	Intervals string // all gap-feature intervals
	Supported string // gap features overlapping a junction
	Filtered  string // filtered annotation
}

// ArtifactsFor derives artifact paths from an output prefix.
func ArtifactsFor(prefix string) Artifacts {
	return Artifacts{
		Intervals: prefix + ".bed",
		Supported: prefix + "_supported.bed",
		Filtered:  prefix + "_filtered.gff3",
	}
}

// Result reports the outcome of a run.
type Result struct {
	Artifacts
	Extract           extract.Stats
	SupportedFeatures int
	Valid             validity.TranscriptSet
	Filter            filter.Stats
}

// Pipeline wires the extractor, an overlap engine and the filter.
type Pipeline struct {
	engine    overlap.Engine
	extractor *extract.Extractor
	filter    *filter.Filter
	logger    *zap.Logger
}

// New creates a pipeline using the given overlap engine.
func New(engine overlap.Engine) *Pipeline {
	return &Pipeline{
		engine:    engine,
		extractor: extract.NewExtractor(),
		filter:    filter.New(),
		logger:    zap.NewNop(),
	}
}

// SetFeatureType sets the GFF3 type treated as a gap feature.
func (p *Pipeline) SetFeatureType(featureType string) {
	p.extractor.SetFeatureType(featureType)
}

// SetLogger sets the logger for progress and warning messages. Engines
// with a SetLogger method get a named child logger too.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
	p.extractor.SetLogger(l.Named("extract"))
	p.filter.SetLogger(l.Named("filter"))
	if e, ok := p.engine.(interface{ SetLogger(*zap.Logger) }); ok {
		e.SetLogger(l.Named("overlap"))
	}
}

// Run filters the annotation at annotationPath, keeping transcripts with at
// least one gap feature overlapping an interval in junctionPath.
// An overlap engine failure aborts the run before the filtered annotation
// is written.
func (p *Pipeline) Run(ctx context.Context, annotationPath, junctionPath, prefix string) (*Result, error) {
	res := &Result{Artifacts: ArtifactsFor(prefix)}

	if dir := filepath.Dir(prefix); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	// 1. Gap features -> BED
	p.logger.Info("extracting gap features", zap.String("annotation", annotationPath))
	stats, err := p.extractor.ExtractFile(annotationPath, res.Intervals)
	if err != nil {
		return nil, fmt.Errorf("extract gap features: %w", err)
	}
	res.Extract = stats
	p.logger.Info("extracted gap features",
		zap.Int("gap_features", stats.GapFeatures),
		zap.Int("unowned", stats.Unowned),
		zap.Int("malformed", stats.Malformed),
		zap.String("output", res.Intervals))

	// 2. Gap features overlapping junctions
	p.logger.Info("finding gap features supported by junctions",
		zap.String("engine", p.engine.Name()),
		zap.String("junctions", junctionPath))
	supported, err := p.intersect(ctx, res.Artifacts, junctionPath)
	if err != nil {
		return nil, err
	}
	res.SupportedFeatures = supported
	p.logger.Info("found supported gap features",
		zap.Int("supported", supported),
		zap.String("output", res.Supported))

	// 3. Supported transcripts
	p.logger.Info("collecting transcripts with supported gap features")
	valid, err := validity.ResolveFile(res.Supported)
	if err != nil {
		return nil, fmt.Errorf("resolve valid transcripts: %w", err)
	}
	res.Valid = valid
	p.logger.Info("collected valid transcripts", zap.Int("transcripts", valid.Len()))
	if ce := p.logger.Check(zap.DebugLevel, "valid transcript IDs"); ce != nil {
		ce.Write(zap.Strings("ids", valid.IDs()))
	}

	// 4. Filter the original annotation
	p.logger.Info("filtering annotation", zap.String("output", res.Filtered))
	fstats, err := p.filter.RunFile(annotationPath, res.Filtered, valid)
	if err != nil {
		return nil, fmt.Errorf("filter annotation: %w", err)
	}
	res.Filter = fstats
	p.logger.Info("filtered annotation",
		zap.Int("kept", fstats.Kept),
		zap.Int("dropped", fstats.Dropped),
		zap.Int("comments", fstats.Comments))

	return res, nil
}

// intersect runs the overlap engine on the extracted intervals and writes
// its output to the supported-intervals artifact. Returns the number of
// supported gap features.
func (p *Pipeline) intersect(ctx context.Context, a Artifacts, junctionPath string) (int, error) {
	out, err := os.Create(a.Supported)
	if err != nil {
		return 0, fmt.Errorf("create supported intervals: %w", err)
	}

	lc := &lineCounter{w: out}
	err = p.engine.Intersect(ctx, a.Intervals, junctionPath, lc)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close supported intervals: %w", cerr)
	}
	if err != nil {
		return 0, fmt.Errorf("overlap engine %s: %w", p.engine.Name(), err)
	}
	return lc.lines, nil
}

// lineCounter counts newlines passing through to w.
type lineCounter struct {
	w     io.Writer
	lines int
}

func (lc *lineCounter) Write(b []byte) (int, error) {
	n, err := lc.w.Write(b)
	lc.lines += bytes.Count(b[:n], []byte{'\n'})
	return n, err
}
