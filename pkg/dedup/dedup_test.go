package dedup

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigjosh/gotham-pi-maker/pkg/digits"
	"github.com/bigjosh/gotham-pi-maker/pkg/layout"
)

func testGrid(t *testing.T) *layout.Grid {
	t.Helper()
	g, err := layout.NewGrid(layout.Config{
		BlockCols:      2,
		BlockRows:      3,
		BlockWidth:     14,
		BlockHeight:    2,
		GlyphWidth:     4,
		GlyphHeight:    6,
		NominalAdvance: 4,
		RowPixelWidth:  14*4 + 3,
		MaxPadding:     3,
		ChunkRows:      2,
	})
	require.NoError(t, err)
	return g
}

// testStream draws from a small alphabet so windows repeat, and makes
// sure every block line has an interior '1'.
func testStream(g *layout.Grid, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	b := make([]byte, g.SymbolCount())
	alphabet := []byte("11P2")
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	w := g.Config().BlockWidth
	for off := 0; off < len(b); off += w {
		b[off+w/2] = '1'
	}
	return b
}

func bruteCounts(g *layout.Grid, stream []byte, l int) map[Key]int {
	counts := map[Key]int{}
	w := g.Config().BlockWidth
	for off := 0; off < len(stream); off += w {
		line := stream[off : off+w]
		for i := 0; i+l <= len(line); i += l {
			k, _ := EncodeKey(line[i : i+l])
			counts[k]++
		}
	}
	return counts
}

func TestKeyRoundTrip(t *testing.T) {
	for _, s := range []string{"", "0", "P", "3P14159", "000", "PPPPPPPPPPPPPPPPPP"} {
		k, err := EncodeKey([]byte(s))
		require.NoError(t, err)
		assert.Equal(t, s, string(DecodeKey(k, len(s))))
	}
	a, _ := EncodeKey([]byte("01"))
	b, _ := EncodeKey([]byte("1"))
	assert.Equal(t, a, b, "keys of different lengths may collide; L is fixed per index")
	assert.Equal(t, "P", Key(10).String())

	_, err := EncodeKey([]byte("0123456789012345678"))
	require.ErrorIs(t, err, ErrKeyLength)
	_, err = EncodeKey([]byte("1x"))
	var symErr *digits.InvalidSymbolError
	require.ErrorAs(t, err, &symErr)
	assert.Equal(t, int64(1), symErr.Offset)
}

func TestBuildPromotion(t *testing.T) {
	g := testGrid(t)
	stream := testStream(g, 1)
	for _, l := range []int{1, 2, 3, 5} {
		for _, threshold := range []int{1, 2, 3, 4} {
			idx, err := Build(context.Background(), g, digits.FromBytes(stream), Config{Length: l, Threshold: threshold, Workers: 3})
			require.NoError(t, err)

			want := bruteCounts(g, stream, l)
			promoted := 0
			for k, c := range want {
				r, ok := idx.Lookup(k)
				require.Equal(t, c >= threshold, ok, "L=%d T=%d key %s count %d", l, threshold, k, c)
				if ok {
					promoted++
					assert.Equal(t, uint64(c), idx.Count(r))
					assert.Equal(t, k, idx.Key(r))
				}
			}
			require.Equal(t, promoted, idx.Promoted())

			for r := 1; r < idx.Promoted(); r++ {
				prev, cur := idx.Count(r-1), idx.Count(r)
				require.True(t, prev > cur || (prev == cur && idx.Key(r-1) < idx.Key(r)), "rank order at %d", r)
			}
		}
	}
}

func TestBuildWorkerCountIndependent(t *testing.T) {
	g := testGrid(t)
	src := digits.FromBytes(testStream(g, 2))
	one, err := Build(context.Background(), g, src, Config{Length: 3, Threshold: 2, Workers: 1})
	require.NoError(t, err)
	for _, workers := range []int{2, 3, 5, 8} {
		many, err := Build(context.Background(), g, src, Config{Length: 3, Threshold: 2, Workers: workers})
		require.NoError(t, err)
		require.Equal(t, one.Stats(5), many.Stats(5), "workers=%d", workers)
		require.Equal(t, one.Histogram(), many.Histogram(), "workers=%d", workers)
		for r := 0; r < one.Promoted(); r++ {
			require.Equal(t, one.Key(r), many.Key(r), "workers=%d rank %d", workers, r)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	g := testGrid(t)
	stream := testStream(g, 3)
	ctx := context.Background()

	_, err := Build(ctx, g, digits.FromBytes(stream), Config{Length: 19, Threshold: 3})
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, err = Build(ctx, g, digits.FromBytes(stream), Config{Length: 3, Threshold: 0})
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, err = Build(ctx, g, digits.FromBytes(stream[:10]), Config{Length: 3, Threshold: 3})
	require.ErrorIs(t, err, digits.ErrShortStream)

	bad := append([]byte(nil), stream...)
	bad[30] = 'x'
	_, err = Build(ctx, g, digits.FromBytes(bad), Config{Length: 2, Threshold: 3, Workers: 2})
	var symErr *digits.InvalidSymbolError
	require.ErrorAs(t, err, &symErr)
	assert.Equal(t, int64(30), symErr.Offset)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Build(cancelled, g, digits.FromBytes(stream), Config{Length: 2, Threshold: 3})
	require.ErrorIs(t, err, context.Canceled)

	idx, err := Build(ctx, g, digits.FromBytes(stream[:1]), Config{Length: 0, Threshold: 3})
	require.NoError(t, err, "disabled index does not read the stream")
	require.Zero(t, idx.Promoted())
}

func TestPlaceRoundTrip(t *testing.T) {
	g := testGrid(t)
	stream := testStream(g, 4)
	src := digits.FromBytes(stream)
	for _, l := range []int{0, 1, 3, 4, 14, 15} {
		idx, err := Build(context.Background(), g, src, Config{Length: l, Threshold: 2})
		require.NoError(t, err)
		usage := NewUsage(idx)

		var rebuilt []byte
		it := g.Rows(src, 0, g.TotalRows())
		var buf []Placement
		for it.Next() {
			row := it.Row()
			var demoted int
			buf, demoted = idx.Place(row, buf[:0])
			usage.Record(buf, demoted)
			for i := 1; i < len(buf); i++ {
				require.Less(t, buf[i-1].Index, buf[i].Index)
				require.Equal(t, row.Symbols[buf[i].Index].X, buf[i].X)
			}
			rebuilt = append(rebuilt, Expand(buf, idx)...)
		}
		require.NoError(t, it.Err())
		require.Equal(t, stream, rebuilt, "L=%d", l)

		covered := usage.SharedPlacements*int64(l) + usage.GlyphPlacements
		require.Equal(t, int64(len(stream)), covered)
	}
}

func TestPlaceDemotesPaddedWindows(t *testing.T) {
	g, err := layout.NewGrid(layout.Config{
		BlockCols: 1, BlockRows: 1, BlockWidth: 6, BlockHeight: 1,
		GlyphWidth: 4, GlyphHeight: 6, NominalAdvance: 4,
		RowPixelWidth: 6*4 + 1, MaxPadding: 1, ChunkRows: 1,
	})
	require.NoError(t, err)

	tests := []struct {
		text        string
		wantShared  int
		wantDemoted int
	}{
		// The only interior '1' is index 1, inside the first window.
		{text: "212222", wantShared: 1, wantDemoted: 1},
		// Index 2 is the last symbol of the first window; padding there
		// only moves the next window.
		{text: "221222", wantShared: 2, wantDemoted: 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			src := digits.FromString(tt.text)
			idx, err := Build(context.Background(), g, src, Config{Length: 3, Threshold: 1})
			require.NoError(t, err)
			row, err := g.Line(src, 0, 0)
			require.NoError(t, err)

			placements, demoted := idx.Place(&row, nil)
			shared := 0
			for _, p := range placements {
				if p.Kind == PlaceShared {
					shared++
				}
			}
			assert.Equal(t, tt.wantShared, shared)
			assert.Equal(t, tt.wantDemoted, demoted)
			assert.Equal(t, tt.text, string(Expand(placements, idx)))
		})
	}
}

func TestStatsAndUsage(t *testing.T) {
	g := testGrid(t)
	src := digits.FromBytes(testStream(g, 5))
	idx, err := Build(context.Background(), g, src, Config{Length: 2, Threshold: 2, Workers: 2})
	require.NoError(t, err)

	st := idx.Stats(3)
	assert.Equal(t, int64(g.SymbolCount()/2), st.Windows)
	assert.Equal(t, st.Windows, idx.Windows())
	require.Len(t, st.Top, min(3, st.Promoted))
	assert.Equal(t, idx.Count(0), st.Top[0].Count)
	assert.Equal(t, idx.Count(idx.Promoted()-1), st.Bottom[0].Count)

	var histWindows int64
	histKeys := 0
	for c, n := range idx.Histogram() {
		histWindows += int64(c) * int64(n)
		histKeys += n
	}
	assert.Equal(t, st.Windows, histWindows)
	assert.Equal(t, st.Distinct, histKeys)

	a, b := NewUsage(idx), NewUsage(idx)
	a.Record([]Placement{{Kind: PlaceShared, Rank: 0}, {Kind: PlaceGlyph, Symbol: '1'}}, 1)
	b.Record([]Placement{{Kind: PlaceShared, Rank: 0}, {Kind: PlaceShared, Rank: 1}}, 0)
	a.Merge(b)
	assert.Equal(t, int64(3), a.SharedPlacements)
	assert.Equal(t, int64(1), a.GlyphPlacements)
	assert.Equal(t, int64(1), a.Demoted)
	assert.Equal(t, 2, a.UniqueUsed())
	top, bottom := a.Extremes(idx, 1)
	require.Len(t, top, 1)
	assert.Equal(t, 0, top[0].Rank)
	assert.Equal(t, uint64(2), top[0].Count)
	assert.Equal(t, 1, bottom[0].Rank)
}

func TestCostModel(t *testing.T) {
	m := GDSCostModel(2)
	// SREF 4 + SNAME 6 + XY 12 + ENDEL 4
	assert.Equal(t, 26.0, m.ReferenceOverhead)
	// BGNSTR 28 + STRNAME 6 + ENDSTR 4
	assert.Equal(t, 38.0, m.DefinitionOverhead)

	hist := map[uint64]int{1: 10, 5: 2}
	est := m.Estimate(hist, 3, 3, 100)
	assert.Equal(t, 2, est.Promoted)
	assert.Equal(t, int64(10), est.PromotedWindows)
	assert.Equal(t, int64(70), est.GlyphSymbols)
	want := 2*(38.0+3*26+5*26) + 70*26
	assert.InDelta(t, want, est.Bytes, 1e-9)

	// A lower threshold trades glyph references for definitions.
	all := m.Estimate(hist, 3, 1, 100)
	assert.Equal(t, 12, all.Promoted)
	assert.Equal(t, int64(40), all.GlyphSymbols)
}
