// Package validity resolves which transcripts have junction-supported gap features.
package validity

import (
	"sort"

	"github.com/inodb/intron-filter/internal/bed"
	"github.com/inodb/intron-filter/internal/gff"
)

// TranscriptSet is a set of corroborated transcript IDs.
type TranscriptSet map[string]struct{}

// NewTranscriptSet creates a set holding the given IDs.
func NewTranscriptSet(ids ...string) TranscriptSet {
	s := make(TranscriptSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set. The unknown-parent sentinel and empty IDs
// are never inserted.
func (s TranscriptSet) Add(id string) {
	if id == "" || id == gff.UnknownParent {
		return
	}
	s[id] = struct{}{}
}

// Contains reports whether id is in the set.
func (s TranscriptSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of transcripts in the set.
func (s TranscriptSet) Len() int {
	return len(s)
}

// IDs returns the transcript IDs in sorted order.
func (s TranscriptSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve builds the valid-transcript set from overlap-engine output.
// Every interval's name column is an owning transcript; one supported gap
// feature is enough to validate it.
func Resolve(r *bed.Reader) (TranscriptSet, error) {
	valid := make(TranscriptSet)
	for {
		iv, err := r.Next()
		if err != nil {
			return nil, err
		}
		if iv == nil {
			return valid, nil
		}
		valid.Add(iv.Name)
	}
}

// ResolveFile opens path and resolves it with Resolve.
func ResolveFile(path string) (TranscriptSet, error) {
	r, err := bed.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return Resolve(r)
}
