package bed

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_SkipsHeaders(t *testing.T) {
	input := `track name=junctions
browser position chr1:1-1000
# comment

chr1	150	160
chr1	10	20	tx1
`
	ivs, err := NewReader(strings.NewReader(input)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []Interval{
		{Chrom: "chr1", Start: 150, End: 160},
		{Chrom: "chr1", Start: 10, End: 20, Name: "tx1"},
	}, ivs)
}

func TestReader_BED12(t *testing.T) {
	input := "chr2\t1000\t2000\tjunc1\t30\t+\t1000\t2000\t255,0,0\t2\t10,10\t0,990\n"
	ivs, err := NewReader(strings.NewReader(input)).ReadAll()
	require.NoError(t, err)
	require.Len(t, ivs, 1)
	assert.Equal(t, Interval{Chrom: "chr2", Start: 1000, End: 2000, Name: "junc1"}, ivs[0])
}

func TestReader_CRLF(t *testing.T) {
	ivs, err := NewReader(strings.NewReader("chr1\t1\t5\r\n")).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []Interval{{Chrom: "chr1", Start: 1, End: 5}}, ivs)
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few columns", "chr1\t100\n"},
		{"bad start", "chr1\tabc\t200\n"},
		{"bad end", "chr1\t100\txyz\n"},
		{"end before start", "chr1\t200\t100\n"},
		{"negative start", "chr1\t-1\t100\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader("chr1\t1\t2\n" + tt.input))
			_, err := r.ReadAll()
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, 2, perr.Line)
		})
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write(Interval{Chrom: "chr1", Start: 100, End: 200, Name: "tx1"}))
	require.NoError(t, w.Write(Interval{Chrom: "chrX", Start: 0, End: 5, Name: "unknown"}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "chr1\t100\t200\ttx1\nchrX\t0\t5\tunknown\n", buf.String())
	assert.Equal(t, 2, w.Count())
}

func TestWriterReaderRoundTrip(t *testing.T) {
	want := []Interval{
		{Chrom: "chr1", Start: 100, End: 200, Name: "tx1"},
		{Chrom: "chr2", Start: 5, End: 6, Name: "tx2"},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, iv := range want {
		require.NoError(t, w.Write(iv))
	}
	require.NoError(t, w.Flush())

	got, err := NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInterval_Overlaps(t *testing.T) {
	a := Interval{Chrom: "chr1", Start: 100, End: 200}

	tests := []struct {
		name string
		b    Interval
		want bool
	}{
		{"enclosed", Interval{Chrom: "chr1", Start: 150, End: 160}, true},
		{"enclosing", Interval{Chrom: "chr1", Start: 50, End: 250}, true},
		{"left partial", Interval{Chrom: "chr1", Start: 50, End: 101}, true},
		{"right partial", Interval{Chrom: "chr1", Start: 199, End: 300}, true},
		{"exact", Interval{Chrom: "chr1", Start: 100, End: 200}, true},
		{"abutting left", Interval{Chrom: "chr1", Start: 50, End: 100}, false},
		{"abutting right", Interval{Chrom: "chr1", Start: 200, End: 300}, false},
		{"other chrom", Interval{Chrom: "chr2", Start: 150, End: 160}, false},
		{"far away", Interval{Chrom: "chr1", Start: 500, End: 600}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(a), "symmetric")
		})
	}
}
