package overlap

import (
	"fmt"

	"github.com/biogo/store/interval"

	"github.com/inodb/intron-filter/internal/bed"
)

// Index answers half-open overlap queries against a fixed set of intervals,
// with one interval tree per chromosome.
type Index struct {
	trees map[string]*interval.IntTree
	size  int
}

// member is an indexed interval. The tree rejects empty ranges, so a
// zero-length interval is stored with a one-base range and the exact
// coordinates are checked on match.
type member struct {
	uid        uintptr
	start, end int
}

func (m member) ID() uintptr { return m.uid }

func (m member) Range() interval.IntRange {
	end := m.end
	if end == m.start {
		end++
	}
	return interval.IntRange{Start: m.start, End: end}
}

// Overlap reports whether m shares at least one base with r.
func (m member) Overlap(r interval.IntRange) bool {
	return m.start < r.End && r.Start < m.end
}

// query is a half-open region. Its Overlap is used against stored and
// subtree ranges, which never understate a member's extent.
type query struct {
	start, end int
}

func (q query) Overlap(r interval.IntRange) bool {
	return r.Start < q.end && q.start < r.End
}

// hits reports whether the exact member coordinates overlap q.
func (q query) hits(m member) bool {
	return m.start < q.end && q.start < m.end
}

// BuildIndex creates an index from a slice of intervals. Intervals with
// end < start are rejected.
func BuildIndex(intervals []bed.Interval) (*Index, error) {
	idx := &Index{trees: make(map[string]*interval.IntTree), size: len(intervals)}
	for i, iv := range intervals {
		tree, ok := idx.trees[iv.Chrom]
		if !ok {
			tree = &interval.IntTree{}
			idx.trees[iv.Chrom] = tree
		}
		m := member{uid: uintptr(i), start: int(iv.Start), end: int(iv.End)}
		if err := tree.Insert(m, true); err != nil {
			return nil, fmt.Errorf("index %s:%d-%d: %w", iv.Chrom, iv.Start, iv.End, err)
		}
	}
	for _, tree := range idx.trees {
		tree.AdjustRanges()
	}
	return idx, nil
}

// Len returns the number of indexed intervals.
func (idx *Index) Len() int {
	return idx.size
}

// Overlaps reports whether [start, end) on chrom overlaps any indexed
// interval. A zero-length interval overlaps when it lies strictly inside.
func (idx *Index) Overlaps(chrom string, start, end int64) bool {
	tree, ok := idx.trees[chrom]
	if !ok {
		return false
	}

	q := query{start: int(start), end: int(end)}
	found := false
	tree.DoMatching(func(e interval.IntInterface) bool {
		found = q.hits(e.(member))
		return found
	}, q)
	return found
}
