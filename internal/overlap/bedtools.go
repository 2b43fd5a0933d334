package overlap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Bedtools runs `bedtools intersect -wa -u` as an external process.
type Bedtools struct {
	path string
}

// NewBedtools creates an engine invoking the given bedtools executable.
// An empty path looks up "bedtools" on PATH.
func NewBedtools(path string) *Bedtools {
	if path == "" {
		path = "bedtools"
	}
	return &Bedtools{path: path}
}

// Name implements Engine.
func (b *Bedtools) Name() string {
	return EngineBedtools
}

// Args returns the bedtools arguments used for the given inputs.
// -wa reports the original A record, -u reports it once however many B
// records it overlaps.
func (b *Bedtools) Args(aPath, bPath string) []string {
	return []string{"intersect", "-wa", "-u", "-a", aPath, "-b", bPath}
}

// Intersect implements Engine. A non-zero exit is returned as an error
// carrying the process stderr.
func (b *Bedtools) Intersect(ctx context.Context, aPath, bPath string, out io.Writer) error {
	cmd := exec.CommandContext(ctx, b.path, b.Args(aPath, bPath)...)
	cmd.Stdout = out

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("run %s: %w: %s", b.path, err, msg)
		}
		return fmt.Errorf("run %s: %w", b.path, err)
	}
	return nil
}
