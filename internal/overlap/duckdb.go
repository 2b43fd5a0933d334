package overlap

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/inodb/intron-filter/internal/bed"
	"github.com/inodb/intron-filter/internal/duckdb"
)

// DuckDB loads both interval sets into a DuckDB database and intersects
// them in SQL. A file-backed database keeps the last run's tables for
// inspection, and its junction table is reused while the junction file is
// unchanged.
type DuckDB struct {
	path   string
	logger *zap.Logger
}

// NewDuckDB creates an engine using the database at path.
// An empty path uses an in-memory database.
func NewDuckDB(path string) *DuckDB {
	return &DuckDB{path: path, logger: zap.NewNop()}
}

// SetLogger sets the logger for load messages.
func (d *DuckDB) SetLogger(l *zap.Logger) {
	d.logger = l
}

// Name implements Engine.
func (d *DuckDB) Name() string {
	return EngineDuckDB
}

// Intersect implements Engine.
func (d *DuckDB) Intersect(ctx context.Context, aPath, bPath string, out io.Writer) error {
	store, err := duckdb.Open(d.path)
	if err != nil {
		return err
	}
	defer store.Close()

	// Gap features are rewritten on every run.
	if err := store.Reset(ctx, duckdb.RoleGapFeatures); err != nil {
		return err
	}
	if err := d.load(ctx, store, duckdb.RoleGapFeatures, aPath, store.AppendGapFeatures); err != nil {
		return err
	}

	if err := d.loadJunctions(ctx, store, bPath); err != nil {
		return err
	}

	if err := d.logTotals(ctx, store); err != nil {
		return err
	}

	w := bed.NewWriter(out)
	if err := store.SupportedGapFeatures(ctx, w.Write); err != nil {
		return err
	}
	return w.Flush()
}

// loadJunctions reloads the junction table unless it was loaded from a
// file with the same fingerprint.
func (d *DuckDB) loadJunctions(ctx context.Context, store *duckdb.Store, path string) error {
	fp, err := fingerprint(path)
	if err != nil {
		return err
	}

	prev, ok, err := store.Source(ctx, duckdb.RoleJunctions)
	if err != nil {
		return err
	}
	if ok && prev.Matches(fp) {
		d.logger.Info("reusing loaded junctions",
			zap.String("path", fp.Path),
			zap.Int64("size", fp.Size),
			zap.Time("mod_time", fp.ModTime))
		return nil
	}

	if err := store.Reset(ctx, duckdb.RoleJunctions); err != nil {
		return err
	}
	return d.load(ctx, store, duckdb.RoleJunctions, path, store.AppendJunctions)
}

func (d *DuckDB) load(ctx context.Context, store *duckdb.Store, role, path string,
	appendFn func(context.Context, *bed.Reader) (int, error)) error {
	fp, err := fingerprint(path)
	if err != nil {
		return err
	}

	r, err := bed.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	n, err := appendFn(ctx, r)
	if err != nil {
		return fmt.Errorf("load %s from %s: %w", role, path, err)
	}
	if err := store.RecordSource(ctx, role, fp); err != nil {
		return err
	}

	d.logger.Debug("loaded intervals",
		zap.String("role", role),
		zap.Int("rows", n),
		zap.String("path", fp.Path),
		zap.Int64("size", fp.Size),
		zap.Time("mod_time", fp.ModTime))
	return nil
}

func (d *DuckDB) logTotals(ctx context.Context, store *duckdb.Store) error {
	gaps, err := store.CountGapFeatures(ctx)
	if err != nil {
		return err
	}
	junctions, err := store.CountJunctions(ctx)
	if err != nil {
		return err
	}

	database := store.Path()
	if database == "" {
		database = ":memory:"
	}
	d.logger.Info("intervals loaded",
		zap.String("database", database),
		zap.Int64("gap_features", gaps),
		zap.Int64("junctions", junctions))
	return nil
}

// fingerprint stats path under its absolute name, so a relative path
// matches the same file across working directories.
func fingerprint(path string) (duckdb.FileFingerprint, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return duckdb.FileFingerprint{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	fp, err := duckdb.StatFile(abs)
	if err != nil {
		return duckdb.FileFingerprint{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return fp, nil
}
