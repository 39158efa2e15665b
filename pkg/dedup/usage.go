package dedup

import (
	"cmp"
	"slices"
)

// Usage counts the references rows actually made. Each chunk keeps its
// own Usage; the pipeline merges them.
type Usage struct {
	SharedPlacements int64   `json:"shared_placements"`
	GlyphPlacements  int64   `json:"glyph_placements"`
	Demoted          int64   `json:"demoted_windows"`
	PerRank          []int64 `json:"-"`
}

// NewUsage returns counters sized for idx.
func NewUsage(idx *Index) *Usage {
	return &Usage{PerRank: make([]int64, idx.Promoted())}
}

// Record adds one row's placements.
func (u *Usage) Record(placements []Placement, demoted int) {
	for _, p := range placements {
		if p.Kind == PlaceShared {
			u.SharedPlacements++
			u.PerRank[p.Rank]++
		} else {
			u.GlyphPlacements++
		}
	}
	u.Demoted += int64(demoted)
}

// Merge adds other into u.
func (u *Usage) Merge(other *Usage) {
	u.SharedPlacements += other.SharedPlacements
	u.GlyphPlacements += other.GlyphPlacements
	u.Demoted += other.Demoted
	if len(u.PerRank) < len(other.PerRank) {
		u.PerRank = append(u.PerRank, make([]int64, len(other.PerRank)-len(u.PerRank))...)
	}
	for r, n := range other.PerRank {
		u.PerRank[r] += n
	}
}

// UniqueUsed returns the number of promoted keys placed at least once.
func (u *Usage) UniqueUsed() int {
	n := 0
	for _, c := range u.PerRank {
		if c > 0 {
			n++
		}
	}
	return n
}

// Extremes returns the n most and n least placed keys among those used.
func (u *Usage) Extremes(idx *Index, n int) (top, bottom []KeyCount) {
	var used []KeyCount
	for r, c := range u.PerRank {
		if c > 0 {
			used = append(used, KeyCount{Rank: r, Key: string(DecodeKey(idx.keys[r], idx.length)), Count: uint64(c)})
		}
	}
	slices.SortFunc(used, func(a, b KeyCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Rank, b.Rank)
	})
	return extremes(len(used), n, func(i int) KeyCount { return used[i] })
}
