// Package overlap finds gap-feature intervals supported by junction intervals.
//
// An Engine reads two BED files, A and B, and writes every A record that
// overlaps at least one B record on the same chromosome. Each A record is
// written at most once and in input order. Overlap means a non-empty
// intersection of half-open intervals; exact boundary agreement is not
// required.
package overlap

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Engine names accepted by New.
const (
	EngineNative   = "native"
	EngineBedtools = "bedtools"
	EngineDuckDB   = "duckdb"
)

// Engines returns the accepted engine names, default first.
func Engines() []string {
	return []string{EngineNative, EngineBedtools, EngineDuckDB}
}

// Engine computes the subset of A that overlaps B.
type Engine interface {
	// Name identifies the engine in logs and errors.
	Name() string

	// Intersect writes the A records overlapping B to out as BED4 lines.
	Intersect(ctx context.Context, aPath, bPath string, out io.Writer) error
}

// Options configures engines that need external resources.
type Options struct {
	BedtoolsPath string // executable for the bedtools engine
	DuckDBPath   string // database file for the duckdb engine; empty = in-memory
}

// New returns the engine registered under name.
func New(name string, opts Options) (Engine, error) {
	switch name {
	case EngineNative, "":
		return NewNative(), nil
	case EngineBedtools:
		return NewBedtools(opts.BedtoolsPath), nil
	case EngineDuckDB:
		return NewDuckDB(opts.DuckDBPath), nil
	default:
		return nil, fmt.Errorf("unknown overlap engine %q (want one of %s)",
			name, strings.Join(Engines(), ", "))
	}
}
