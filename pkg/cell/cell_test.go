package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlesDisjoint(t *testing.T) {
	seen := map[Handle]string{PixelHandle: "pixel"}
	for _, sym := range []byte("0123456789P") {
		h := GlyphHandle(sym)
		require.NotContains(t, seen, h)
		seen[h] = "glyph"
	}
	for r := 0; r < 100; r++ {
		h := DedupHandle(r)
		require.NotContains(t, seen, h)
		seen[h] = "dedup"
	}
	for chunk := 0; chunk < 3; chunk++ {
		ls := NewLocalSpace(chunk)
		for i := 0; i < 100; i++ {
			h := ls.Next()
			require.NotContains(t, seen, h)
			seen[h] = "local"
		}
	}
	assert.Panics(t, func() { GlyphHandle('x') })
}

func TestCollectorOrdering(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.Define(&Cell{Handle: PixelHandle, Kind: KindPixel, Boundaries: []Boundary{Rect(1, 0, 0, 0, 1, 1)}}))

	err := c.Define(&Cell{Handle: GlyphHandle('1'), Kind: KindGlyph, Refs: []Reference{{Target: GlyphHandle('2')}}})
	require.ErrorIs(t, err, ErrUndefinedReference)

	require.NoError(t, c.Define(&Cell{Handle: GlyphHandle('1'), Kind: KindGlyph, Refs: []Reference{{Target: PixelHandle}}}))
	err = c.Define(&Cell{Handle: PixelHandle, Kind: KindPixel})
	require.ErrorIs(t, err, ErrDuplicateCell)

	require.Equal(t, 2, c.Len())
	cells := c.Cells()
	assert.Equal(t, PixelHandle, cells[0].Handle)
	assert.Equal(t, "glyph", cells[1].Kind.String())
}

func TestFlattenArrays(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.Define(&Cell{Handle: PixelHandle, Boundaries: []Boundary{Rect(1, 0, 0, 0, 1, 1)}}))
	top := &Cell{Handle: 99, Refs: []Reference{
		{Target: PixelHandle, Origin: Point{10, 10}},
		{Target: PixelHandle, Origin: Point{0, 0}, Cols: 2, Rows: 2, ColStep: Point{X: 3}, RowStep: Point{Y: 5}},
	}}
	require.NoError(t, c.Define(top))

	var origins []Point
	require.NoError(t, c.Flatten(99, func(b Boundary) {
		origins = append(origins, b.Points[0])
	}))
	assert.Equal(t, []Point{{10, 10}, {0, 0}, {3, 0}, {0, 5}, {3, 5}}, origins)
	assert.Equal(t, 4, top.Refs[1].Count())
	assert.Equal(t, 1, top.Refs[0].Count())

	require.ErrorIs(t, c.Flatten(1234, func(Boundary) {}), ErrUndefinedReference)
}

func TestCompactRefs(t *testing.T) {
	a, b := Handle(5), Handle(6)
	refs := []Reference{
		{Target: a, Origin: Point{0, 0}},
		{Target: a, Origin: Point{4, 0}},
		{Target: a, Origin: Point{8, 0}},
		{Target: b, Origin: Point{12, 0}},
		{Target: a, Origin: Point{16, 0}},
		{Target: a, Origin: Point{22, 0}},
		{Target: a, Origin: Point{22, 6}},
	}
	got := CompactRefs(refs)
	require.Equal(t, []Reference{
		{Target: a, Origin: Point{0, 0}, Cols: 3, Rows: 1, ColStep: Point{X: 4}},
		{Target: b, Origin: Point{12, 0}},
		{Target: a, Origin: Point{16, 0}, Cols: 2, Rows: 1, ColStep: Point{X: 6}},
		{Target: a, Origin: Point{22, 6}},
	}, got)

	// Compaction never changes the placements.
	count := func(rs []Reference) (n int) {
		for _, r := range rs {
			n += r.Count()
		}
		return n
	}
	assert.Equal(t, count(refs), count(got))

	same := []Reference{{Target: a}, {Target: a}}
	assert.Equal(t, same, CompactRefs(same), "zero step stays as single references")
	assert.Empty(t, CompactRefs(nil))
}

func TestCompactRefsCapsColumns(t *testing.T) {
	refs := make([]Reference, MaxArrayCount+5)
	for i := range refs {
		refs[i] = Reference{Target: 7, Origin: Point{X: int32(i)}}
	}
	got := CompactRefs(refs)
	require.Len(t, got, 2)
	assert.Equal(t, MaxArrayCount, got[0].Cols)
	assert.Equal(t, 5, got[1].Cols)
	assert.Equal(t, Point{X: MaxArrayCount}, got[1].Origin)
}
