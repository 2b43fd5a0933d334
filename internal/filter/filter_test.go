package filter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/intron-filter/internal/gff"
	"github.com/inodb/intron-filter/internal/validity"
)

const annotation = "##gff-version 3\n" +
	"chr1\t.\tgene\t1\t1000\t.\t+\t.\tID=gene1\n" +
	"chr1\t.\tmRNA\t1\t1000\t.\t+\t.\tID=tx1;Parent=gene1\n" +
	"chr1\t.\texon\t1\t100\t.\t+\t.\tParent=tx1\n" +
	"chr1\t.\tintron\t101\t200\t.\t+\t.\tParent=tx1\n" +
	"# between transcripts\n" +
	"chr1\t.\tmRNA\t1\t1000\t.\t+\t.\tID=tx2;Parent=gene1\n" +
	"chr1\t.\texon\t1\t100\t.\t+\t.\tParent=tx2\n" +
	"chr1\t.\tintron\t101\t200\t.\t+\t.\tID=orphan\n" +
	"chr1\t.\texon\t5\n"

func run(t *testing.T, input string, valid validity.TranscriptSet) (string, Stats) {
	t.Helper()
	var buf bytes.Buffer
	stats, err := New().Run(gff.NewReader(strings.NewReader(input)), &buf, valid)
	require.NoError(t, err)
	return buf.String(), stats
}

func TestRun_KeepsValidTranscript(t *testing.T) {
	out, stats := run(t, annotation, validity.NewTranscriptSet("tx1"))

	want := "##gff-version 3\n" +
		"chr1\t.\tmRNA\t1\t1000\t.\t+\t.\tID=tx1;Parent=gene1\n" +
		"chr1\t.\texon\t1\t100\t.\t+\t.\tParent=tx1\n" +
		"chr1\t.\tintron\t101\t200\t.\t+\t.\tParent=tx1\n" +
		"# between transcripts\n"
	assert.Equal(t, want, out)
	assert.Equal(t, Stats{Comments: 2, Kept: 3, Dropped: 4, Malformed: 1}, stats)
}

func TestRun_NoValidTranscripts(t *testing.T) {
	out, stats := run(t, annotation, validity.NewTranscriptSet())

	assert.Equal(t, "##gff-version 3\n# between transcripts\n", out, "comments always pass through")
	assert.Equal(t, 0, stats.Kept)
}

func TestRun_GeneKeptWhenIDValid(t *testing.T) {
	// Gene records only match when their own ID is in the set.
	out, _ := run(t, annotation, validity.NewTranscriptSet("gene1"))

	assert.Contains(t, out, "ID=gene1\n")
	assert.Contains(t, out, "ID=tx1;Parent=gene1\n")
	assert.Contains(t, out, "ID=tx2;Parent=gene1\n")
	assert.NotContains(t, out, "Parent=tx1\n")
}

func TestRun_OutputIsOrderedSubsequence(t *testing.T) {
	out, _ := run(t, annotation, validity.NewTranscriptSet("tx1", "tx2"))

	in := strings.SplitAfter(annotation, "\n")
	kept := strings.SplitAfter(out, "\n")

	// Every kept line appears in the input, in the same relative order.
	i := 0
	for _, line := range kept {
		if line == "" {
			continue
		}
		for i < len(in) && in[i] != line {
			i++
		}
		require.Less(t, i, len(in), "line %q not found in order", line)
		i++
	}
}

func TestRun_ByteIdentical(t *testing.T) {
	input := "#comment with trailing space \r\n" +
		"chr1\tsrc\texon\t1\t100\t0.5\t-\t2\tParent=tx1;Note=some%20text\r\n" +
		"chr1\tsrc\texon\t1\t100\t0.5\t-\t2\tParent=tx1"
	out, _ := run(t, input, validity.NewTranscriptSet("tx1"))
	assert.Equal(t, input, out)
}

func TestRun_MultipleMatchesKeptOnce(t *testing.T) {
	input := "chr1\t.\texon\t1\t100\t.\t+\t.\tID=tx1;Parent=tx1;Parent=tx2\n"
	out, stats := run(t, input, validity.NewTranscriptSet("tx1", "tx2"))
	assert.Equal(t, input, out)
	assert.Equal(t, 1, stats.Kept)
}

func TestRun_LaterTokenMatches(t *testing.T) {
	input := "chr1\t.\texon\t1\t100\t.\t+\t.\tParent=txBad;bogus;Parent=tx1\n"
	out, _ := run(t, input, validity.NewTranscriptSet("tx1"))
	assert.Equal(t, input, out)
}

func TestRun_SpaceAfterSeparator(t *testing.T) {
	// Tokens are trimmed, so "; Parent=tx1" still names tx1. The line is
	// written back with its spacing intact.
	line := "chr1\t.\texon\t1\t100\t.\t+\t.\tID=e1; Parent=tx1 ;Note=a=b\n"
	out, stats := run(t, line, validity.NewTranscriptSet("tx1"))
	assert.Equal(t, line, out)
	assert.Equal(t, 1, stats.Kept)
}

func TestRun_ValueKeepsEqualsSign(t *testing.T) {
	// The value is everything after the first '=': "tx1=alt" is not "tx1".
	line := "chr1\t.\texon\t1\t100\t.\t+\t.\tParent=tx1=alt\n"

	out, _ := run(t, line, validity.NewTranscriptSet("tx1"))
	assert.Empty(t, out)

	out, _ = run(t, line, validity.NewTranscriptSet("tx1=alt"))
	assert.Equal(t, line, out)
}

func TestRun_OtherKeysIgnored(t *testing.T) {
	input := "chr1\t.\texon\t1\t100\t.\t+\t.\tName=tx1;transcript_id=tx1\n"
	out, _ := run(t, input, validity.NewTranscriptSet("tx1"))
	assert.Empty(t, out)
}

func TestRun_UnknownSentinelNeverKeeps(t *testing.T) {
	input := "chr1\t.\tintron\t1\t100\t.\t+\t.\tParent=unknown\n"
	out, _ := run(t, input, validity.NewTranscriptSet("unknown"))
	assert.Empty(t, out)
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.gff3")
	out := filepath.Join(dir, "out.gff3")
	require.NoError(t, os.WriteFile(in, []byte(annotation), 0644))

	stats, err := New().RunFile(in, out, validity.NewTranscriptSet("tx2"))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Kept)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "##gff-version 3\n"+
		"# between transcripts\n"+
		"chr1\t.\tmRNA\t1\t1000\t.\t+\t.\tID=tx2;Parent=gene1\n"+
		"chr1\t.\texon\t1\t100\t.\t+\t.\tParent=tx2\n", string(data))
}
