package overlap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/intron-filter/internal/bed"
)

func mustIndex(t *testing.T, intervals []bed.Interval) *Index {
	t.Helper()
	idx, err := BuildIndex(intervals)
	require.NoError(t, err)
	return idx
}

func TestBuildIndex_Empty(t *testing.T) {
	idx, err := BuildIndex(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.False(t, idx.Overlaps("chr1", 0, 100))
}

func TestIndex_SingleInterval(t *testing.T) {
	idx := mustIndex(t, []bed.Interval{{Chrom: "chr1", Start: 100, End: 200}})

	assert.True(t, idx.Overlaps("chr1", 150, 160), "enclosed")
	assert.True(t, idx.Overlaps("chr1", 50, 250), "enclosing")
	assert.True(t, idx.Overlaps("chr1", 199, 300), "last base")
	assert.True(t, idx.Overlaps("chr1", 0, 101), "first base")
	assert.False(t, idx.Overlaps("chr1", 200, 300), "end is exclusive")
	assert.False(t, idx.Overlaps("chr1", 0, 100), "query end is exclusive")
	assert.False(t, idx.Overlaps("chr2", 150, 160), "other chromosome")
}

func TestIndex_ZeroLengthJunction(t *testing.T) {
	// [150,150) lies strictly inside [100,200) and counts as support, as
	// with bedtools intersect. At a boundary it touches no base.
	idx := mustIndex(t, []bed.Interval{{Chrom: "chr1", Start: 150, End: 150}})

	assert.True(t, idx.Overlaps("chr1", 100, 200), "inside")
	assert.False(t, idx.Overlaps("chr1", 150, 200), "at query start")
	assert.False(t, idx.Overlaps("chr1", 100, 150), "at query end")
	assert.Equal(t,
		bed.Interval{Chrom: "chr1", Start: 100, End: 200}.Overlaps(bed.Interval{Chrom: "chr1", Start: 150, End: 150}),
		idx.Overlaps("chr1", 100, 200))
}

func TestIndex_DuplicateIntervals(t *testing.T) {
	idx := mustIndex(t, []bed.Interval{
		{Chrom: "chr1", Start: 100, End: 200},
		{Chrom: "chr1", Start: 100, End: 200},
	})
	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Overlaps("chr1", 150, 160))
}

func TestBuildIndex_InvertedInterval(t *testing.T) {
	_, err := BuildIndex([]bed.Interval{{Chrom: "chr1", Start: 200, End: 100}})
	assert.ErrorContains(t, err, "chr1:200-100")
}

func TestIndex_LongIntervalReachable(t *testing.T) {
	// A long interval followed by short ones: subtree ranges must keep the
	// long one reachable.
	idx := mustIndex(t, []bed.Interval{
		{Chrom: "chr1", Start: 100, End: 5000},
		{Chrom: "chr1", Start: 200, End: 210},
		{Chrom: "chr1", Start: 300, End: 310},
	})

	assert.True(t, idx.Overlaps("chr1", 4000, 4100))
	assert.False(t, idx.Overlaps("chr1", 5000, 6000))
}

func TestIndex_MatchesLinearScan(t *testing.T) {
	junctions := []bed.Interval{
		{Chrom: "chr1", Start: 1000, End: 5000},
		{Chrom: "chr1", Start: 2000, End: 3000},
		{Chrom: "chr1", Start: 4000, End: 8000},
		{Chrom: "chr1", Start: 6000, End: 7000},
		{Chrom: "chr1", Start: 9000, End: 10000},
		{Chrom: "chr2", Start: 0, End: 500},
		{Chrom: "chr1", Start: 9500, End: 9500},
		{Chrom: "chr1", Start: 6000, End: 7000},
	}
	idx := mustIndex(t, junctions)

	for _, chrom := range []string{"chr1", "chr2", "chr3"} {
		for start := int64(0); start <= 11000; start += 250 {
			for _, length := range []int64{1, 100, 750, 3000} {
				q := bed.Interval{Chrom: chrom, Start: start, End: start + length}

				linear := false
				for _, j := range junctions {
					if q.Overlaps(j) {
						linear = true
						break
					}
				}

				assert.Equal(t, linear, idx.Overlaps(chrom, q.Start, q.End), "query %s:%d-%d", chrom, q.Start, q.End)
			}
		}
	}
}
