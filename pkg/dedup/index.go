package dedup

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bigjosh/gotham-pi-maker/pkg/digits"
	"github.com/bigjosh/gotham-pi-maker/pkg/layout"
)

// Config controls window promotion.
type Config struct {
	// Length is the window length L. Zero disables deduplication.
	Length int `yaml:"length" json:"length"`

	// Threshold is the minimum occurrence count for promotion.
	Threshold int `yaml:"threshold" json:"threshold"`

	// Workers bounds the counting goroutines. Zero uses GOMAXPROCS.
	Workers int `yaml:"workers" json:"workers"`
}

// DefaultConfig returns six-symbol windows promoted at three uses.
func DefaultConfig() Config {
	return Config{Length: 6, Threshold: 3}
}

// Index is the read-only result of the counting pass. It is shared by
// pointer between chunk workers.
type Index struct {
	length    int
	threshold int
	keys      []Key
	counts    []uint64
	rank      map[Key]int32

	windows   int64
	distinct  int
	histogram map[uint64]int
}

// Build counts every window of the processed grid rows and promotes those
// seen at least cfg.Threshold times. It must complete before any placement.
func Build(ctx context.Context, grid *layout.Grid, src digits.Source, cfg Config) (*Index, error) {
	if cfg.Length < 0 || cfg.Length > MaxKeyLength {
		return nil, fmt.Errorf("length %d outside [0, %d]: %w", cfg.Length, MaxKeyLength, ErrInvalidConfig)
	}
	if cfg.Threshold < 1 {
		return nil, fmt.Errorf("threshold %d must be at least 1: %w", cfg.Threshold, ErrInvalidConfig)
	}
	idx := &Index{length: cfg.Length, threshold: cfg.Threshold, rank: map[Key]int32{}, histogram: map[uint64]int{}}
	if cfg.Length == 0 {
		return idx, nil
	}
	if need := grid.SymbolCount(); src.Len() < need {
		return nil, fmt.Errorf("source has %d symbols, grid needs %d: %w", src.Len(), need, digits.ErrShortStream)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rows := grid.TotalRows()
	workers = min(workers, rows)
	band := (rows + workers - 1) / workers

	// Each band folds into merged as soon as it finishes and is dropped, so
	// only the bands still counting hold their own maps.
	var (
		mu     sync.Mutex
		merged map[Key]uint32
	)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		first, end := w*band, min((w+1)*band, rows)
		if first >= end {
			continue
		}
		g.Go(func() error {
			m := make(map[Key]uint32)
			n, err := countRows(gctx, grid, src, cfg.Length, first, end, m)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			idx.windows += n
			if merged == nil {
				merged = m
				return nil
			}
			if len(m) > len(merged) {
				merged, m = m, merged
			}
			for k, c := range m {
				merged[k] += c
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx.distinct = len(merged)
	for k, c := range merged {
		idx.histogram[uint64(c)]++
		if int(c) >= cfg.Threshold {
			idx.keys = append(idx.keys, k)
		}
	}
	sort.Slice(idx.keys, func(i, j int) bool {
		ci, cj := merged[idx.keys[i]], merged[idx.keys[j]]
		if ci != cj {
			return ci > cj
		}
		return idx.keys[i] < idx.keys[j]
	})
	idx.counts = make([]uint64, len(idx.keys))
	for r, k := range idx.keys {
		idx.counts[r] = uint64(merged[k])
		idx.rank[k] = int32(r)
	}
	return idx, nil
}

func countRows(ctx context.Context, grid *layout.Grid, src digits.Source, l, first, end int, m map[Key]uint32) (int64, error) {
	cfg := grid.Config()
	var windows int64
	for row := first; row < end; row++ {
		if err := ctx.Err(); err != nil {
			return windows, err
		}
		for col := 0; col < cfg.BlockCols; col++ {
			off := grid.SegmentOffset(row, col)
			text, err := src.Slice(off, int64(cfg.BlockWidth))
			if err != nil {
				return windows, err
			}
			for i := 0; i+l <= len(text); i += l {
				k, err := EncodeKey(text[i : i+l])
				if err != nil {
					var symErr *digits.InvalidSymbolError
					if errors.As(err, &symErr) {
						symErr.Offset += off + int64(i)
					}
					return windows, err
				}
				m[k]++
				windows++
			}
		}
	}
	return windows, nil
}

// Lookup returns the rank of a promoted key.
func (idx *Index) Lookup(k Key) (int, bool) {
	if idx == nil {
		return 0, false
	}
	r, ok := idx.rank[k]
	return int(r), ok
}

// Promoted returns the number of promoted keys.
func (idx *Index) Promoted() int {
	if idx == nil {
		return 0
	}
	return len(idx.keys)
}

// Key returns the key of rank r.
func (idx *Index) Key(r int) Key { return idx.keys[r] }

// Count returns the occurrence count of rank r.
func (idx *Index) Count(r int) uint64 { return idx.counts[r] }

// Length returns the window length (0 when disabled).
func (idx *Index) Length() int {
	if idx == nil {
		return 0
	}
	return idx.length
}

// Threshold returns the promotion threshold.
func (idx *Index) Threshold() int { return idx.threshold }

// Windows returns the number of windows counted.
func (idx *Index) Windows() int64 { return idx.windows }

// Histogram returns, for every occurrence count seen, how many distinct
// windows had that count. It covers promoted and dropped windows alike.
func (idx *Index) Histogram() map[uint64]int {
	out := make(map[uint64]int, len(idx.histogram))
	for c, n := range idx.histogram {
		out[c] = n
	}
	return out
}

// KeyCount pairs a key with a count.
type KeyCount struct {
	Rank  int    `json:"rank"`
	Key   string `json:"key"`
	Count uint64 `json:"count"`
}

// Stats summarizes the counting pass.
type Stats struct {
	Length          int        `json:"length"`
	Threshold       int        `json:"threshold"`
	Windows         int64      `json:"windows"`
	Distinct        int        `json:"distinct"`
	Promoted        int        `json:"promoted"`
	PromotedWindows int64      `json:"promoted_windows"`
	Top             []KeyCount `json:"top,omitempty"`
	Bottom          []KeyCount `json:"bottom,omitempty"`
}

// Stats returns the counting summary with the n most and least frequent
// promoted keys.
func (idx *Index) Stats(n int) Stats {
	st := Stats{
		Length:    idx.length,
		Threshold: idx.threshold,
		Windows:   idx.windows,
		Distinct:  idx.distinct,
		Promoted:  len(idx.keys),
	}
	for _, c := range idx.counts {
		st.PromotedWindows += int64(c)
	}
	st.Top, st.Bottom = extremes(len(idx.keys), n, func(r int) KeyCount {
		return KeyCount{Rank: r, Key: string(DecodeKey(idx.keys[r], idx.length)), Count: idx.counts[r]}
	})
	return st
}

// extremes returns the first n and the last n of m ranks, already ordered
// by descending count.
func extremes(m, n int, at func(int) KeyCount) (top, bottom []KeyCount) {
	n = min(n, m)
	for r := 0; r < n; r++ {
		top = append(top, at(r))
	}
	for r := m - n; r < m; r++ {
		bottom = append(bottom, at(r))
	}
	slices.Reverse(bottom)
	return top, bottom
}
