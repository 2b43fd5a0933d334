package overlap

import (
	"context"
	"fmt"
	"io"

	"github.com/inodb/intron-filter/internal/bed"
)

// Native is an in-process engine backed by an Index over B.
type Native struct{}

// NewNative creates a native engine.
func NewNative() *Native {
	return &Native{}
}

// Name implements Engine.
func (n *Native) Name() string {
	return EngineNative
}

// Intersect implements Engine. B is loaded into memory; A is streamed.
func (n *Native) Intersect(ctx context.Context, aPath, bPath string, out io.Writer) error {
	bReader, err := bed.Open(bPath)
	if err != nil {
		return err
	}
	junctions, err := bReader.ReadAll()
	bReader.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", bPath, err)
	}
	idx, err := BuildIndex(junctions)
	if err != nil {
		return fmt.Errorf("index %s: %w", bPath, err)
	}

	aReader, err := bed.Open(aPath)
	if err != nil {
		return err
	}
	defer aReader.Close()

	w := bed.NewWriter(out)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		iv, err := aReader.Next()
		if err != nil {
			return fmt.Errorf("read %s: %w", aPath, err)
		}
		if iv == nil {
			break
		}

		if idx.Overlaps(iv.Chrom, iv.Start, iv.End) {
			if err := w.Write(*iv); err != nil {
				return fmt.Errorf("write supported interval: %w", err)
			}
		}
	}

	return w.Flush()
}
