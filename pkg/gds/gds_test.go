package gds

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigjosh/gotham-pi-maker/internal/format"
	"github.com/bigjosh/gotham-pi-maker/pkg/cell"
)

var stamp = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func testOptions() EncoderOptions {
	opts := DefaultEncoderOptions()
	opts.Timestamp = stamp
	return opts
}

// sample is a pixel, a glyph built from a pixel array and a top cell.
func sample() []*cell.Cell {
	return []*cell.Cell{
		{Handle: cell.PixelHandle, Kind: cell.KindPixel, Boundaries: []cell.Boundary{cell.Rect(1, 0, 0, 0, 1000, 1000)}},
		{Handle: cell.GlyphHandle('1'), Kind: cell.KindGlyph, Refs: []cell.Reference{
			{Target: cell.PixelHandle, Cols: 3, Rows: 2, ColStep: cell.Point{X: 1000}, RowStep: cell.Point{Y: 1000}},
			{Target: cell.PixelHandle, Origin: cell.Point{X: 1000, Y: 5000}},
		}},
		{Handle: 99, Kind: cell.KindTop, Name: "TOP_CELL", Refs: []cell.Reference{
			{Target: cell.GlyphHandle('1'), Origin: cell.Point{X: -4000, Y: 7}},
		}},
	}
}

func encode(t *testing.T, opts EncoderOptions, cells []*cell.Cell) []byte {
	t.Helper()
	var out bytes.Buffer
	enc := NewEncoder(&out, opts)
	require.NoError(t, enc.Begin())
	for _, c := range cells {
		require.NoError(t, enc.Define(c))
	}
	require.NoError(t, enc.Close())
	assert.Equal(t, int64(out.Len()), enc.Stats().Bytes)
	return out.Bytes()
}

func TestEncodeVerify(t *testing.T) {
	data := encode(t, testOptions(), sample())
	require.Zero(t, len(data)%format.BlockSize)

	rep, err := Verify(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "PI", rep.Library)
	assert.Equal(t, 3, rep.Structures)
	assert.Equal(t, 1, rep.Boundaries)
	assert.Equal(t, 2, rep.SRefs)
	assert.Equal(t, 1, rep.ARefs)
	assert.Equal(t, int64(8), rep.Placements)
	assert.Equal(t, []string{"TOP_CELL"}, rep.Roots)
	assert.InDelta(t, 1e-3, rep.UserUnit, 1e-18)
	assert.InDelta(t, 1e-9, rep.DBUnit, 1e-24)
}

func TestHeaderBytes(t *testing.T) {
	data := encode(t, testOptions(), sample())

	rec, n, err := format.ParseRecord(data)
	require.NoError(t, err)
	assert.Equal(t, byte(format.RecHeader), rec.Type)
	assert.Equal(t, []byte{0x02, 0x58}, rec.Data)

	rec, m, err := format.ParseRecord(data[n:])
	require.NoError(t, err)
	require.Equal(t, byte(format.RecBgnLib), rec.Type)
	v, err := rec.Int16s()
	require.NoError(t, err)
	assert.Equal(t, []int16{2026, 3, 14, 15, 9, 26, 2026, 3, 14, 15, 9, 26}, v)

	rec, k, err := format.ParseRecord(data[n+m:])
	require.NoError(t, err)
	assert.Equal(t, "PI", rec.String())

	rec, _, err = format.ParseRecord(data[n+m+k:])
	require.NoError(t, err)
	require.Equal(t, byte(format.RecUnits), rec.Type)
	assert.Equal(t, []byte{
		0x3E, 0x41, 0x89, 0x37, 0x4B, 0xC6, 0xA7, 0xF0,
		0x39, 0x44, 0xB8, 0x2F, 0xA0, 0x9B, 0x5A, 0x54,
	}, rec.Data)
}

func TestArrayXY(t *testing.T) {
	lib, err := ReadLibrary(bytes.NewReader(encode(t, testOptions(), sample())))
	require.NoError(t, err)
	require.Len(t, lib.Structures, 3)

	g := lib.Structures[1]
	assert.Equal(t, "B", g.Name)
	require.Len(t, g.Refs, 2)
	arr := g.Refs[0]
	assert.Equal(t, lib.Structures[0].Name, arr.Target)
	assert.Equal(t, 3, arr.Cols)
	assert.Equal(t, 2, arr.Rows)
	assert.Equal(t, cell.Point{X: 1000}, arr.ColStep)
	assert.Equal(t, cell.Point{Y: 1000}, arr.RowStep)
	assert.False(t, g.Refs[1].IsArray())

	// The raw XY of the AREF holds the three reference points.
	var out bytes.Buffer
	var rb records
	rb.ref("B", sample()[1].Refs[0])
	require.NoError(t, rb.err)
	out.Write(rb.b)
	rd := NewReader(&out)
	for {
		rec, err := rd.Next()
		require.NoError(t, err)
		if rec.Type != format.RecXY {
			continue
		}
		xy, err := rec.Int32s()
		require.NoError(t, err)
		assert.Equal(t, []int32{0, 0, 3000, 0, 0, 2000}, xy)
		break
	}
}

func TestRoundTripFlatten(t *testing.T) {
	lib, err := ReadLibrary(bytes.NewReader(encode(t, testOptions(), sample())))
	require.NoError(t, err)

	col, handles, err := lib.Collector()
	require.NoError(t, err)
	var origins []cell.Point
	require.NoError(t, col.Flatten(handles["TOP_CELL"], func(b cell.Boundary) {
		origins = append(origins, b.Points[0])
	}))
	assert.ElementsMatch(t, []cell.Point{
		{-4000, 7}, {-3000, 7}, {-2000, 7},
		{-4000, 1007}, {-3000, 1007}, {-2000, 1007},
		{-3000, 5007},
	}, origins)
}

func TestNamesShortestFirst(t *testing.T) {
	var out bytes.Buffer
	enc := NewEncoder(&out, testOptions())
	require.NoError(t, enc.Begin())
	require.NoError(t, enc.Define(&cell.Cell{Handle: cell.PixelHandle, Boundaries: []cell.Boundary{cell.Rect(1, 0, 0, 0, 1, 1)}}))
	for i := 0; i < 30; i++ {
		require.NoError(t, enc.Define(&cell.Cell{Handle: cell.DedupHandle(i), Refs: []cell.Reference{{Target: cell.PixelHandle}}}))
	}
	name, ok := enc.NameOf(cell.PixelHandle)
	require.True(t, ok)
	assert.Equal(t, "A", name)
	name, _ = enc.NameOf(cell.DedupHandle(24))
	assert.Equal(t, "Z", name)
	name, _ = enc.NameOf(cell.DedupHandle(25))
	assert.Equal(t, "A0", name)
	require.NoError(t, enc.Close())
}

func TestEncoderErrors(t *testing.T) {
	newEnc := func() *Encoder {
		enc := NewEncoder(&bytes.Buffer{}, testOptions())
		require.NoError(t, enc.Begin())
		return enc
	}
	pixel := &cell.Cell{Handle: cell.PixelHandle, Boundaries: []cell.Boundary{cell.Rect(1, 0, 0, 0, 1, 1)}}

	t.Run("forward reference", func(t *testing.T) {
		enc := newEnc()
		err := enc.Define(&cell.Cell{Handle: 5, Refs: []cell.Reference{{Target: cell.PixelHandle}}})
		require.ErrorIs(t, err, ErrUndefinedReference)
		// The rejected cell consumed no name.
		require.NoError(t, enc.Define(pixel))
		name, _ := enc.NameOf(cell.PixelHandle)
		assert.Equal(t, "A", name)
	})

	t.Run("duplicate handle", func(t *testing.T) {
		enc := newEnc()
		require.NoError(t, enc.Define(pixel))
		require.ErrorIs(t, enc.Define(pixel), ErrDuplicateCell)
	})

	t.Run("duplicate fixed name", func(t *testing.T) {
		enc := newEnc()
		require.NoError(t, enc.Define(&cell.Cell{Handle: 7, Name: "TOP_CELL"}))
		require.ErrorIs(t, enc.Define(&cell.Cell{Handle: 8, Name: "TOP_CELL"}), ErrDuplicateCell)
	})

	t.Run("invalid name", func(t *testing.T) {
		enc := newEnc()
		require.ErrorIs(t, enc.Define(&cell.Cell{Handle: 7, Name: "BAD NAME"}), ErrInvalidName)
	})

	t.Run("too many vertices", func(t *testing.T) {
		enc := newEnc()
		pts := make([]cell.Point, format.MaxBoundaryVertices)
		for i := range pts {
			pts[i] = cell.Point{X: int32(i), Y: int32(i * i % 7)}
		}
		err := enc.Define(&cell.Cell{Handle: 7, Boundaries: []cell.Boundary{{Layer: 1, Points: pts}}})
		require.ErrorIs(t, err, format.ErrTooManyVertices)
		require.NoError(t, enc.Define(&cell.Cell{Handle: 8, Boundaries: []cell.Boundary{{Layer: 1, Points: pts[:format.MaxBoundaryVertices-1]}}}))
	})

	t.Run("degenerate", func(t *testing.T) {
		enc := newEnc()
		err := enc.Define(&cell.Cell{Handle: 7, Boundaries: []cell.Boundary{{Points: []cell.Point{{0, 0}, {1, 1}}}}})
		require.ErrorIs(t, err, ErrDegenerate)
	})

	t.Run("array too large", func(t *testing.T) {
		enc := newEnc()
		require.NoError(t, enc.Define(pixel))
		err := enc.Define(&cell.Cell{Handle: 7, Refs: []cell.Reference{{Target: cell.PixelHandle, Cols: format.MaxColRow + 1, Rows: 1, ColStep: cell.Point{X: 1}}}})
		require.ErrorIs(t, err, ErrArrayTooLarge)
	})

	t.Run("state", func(t *testing.T) {
		enc := NewEncoder(&bytes.Buffer{}, testOptions())
		require.ErrorIs(t, enc.Define(pixel), ErrState)
		require.ErrorIs(t, enc.Close(), ErrState)
		require.NoError(t, enc.Begin())
		require.ErrorIs(t, enc.Begin(), ErrState)
		require.NoError(t, enc.Close())
		require.ErrorIs(t, enc.Close(), ErrState)
	})
}

func TestEncoderReservedNames(t *testing.T) {
	opts := testOptions()
	opts.Reserved = []string{"A", "C"}
	var out bytes.Buffer
	enc := NewEncoder(&out, opts)
	require.NoError(t, enc.Begin())

	pixel := &cell.Cell{Handle: cell.PixelHandle, Boundaries: []cell.Boundary{cell.Rect(1, 0, 0, 0, 1, 1)}}
	require.NoError(t, enc.Define(pixel))
	glyph := &cell.Cell{Handle: cell.GlyphHandle('1'), Refs: []cell.Reference{{Target: cell.PixelHandle}}}
	require.NoError(t, enc.Define(glyph))
	top := &cell.Cell{Handle: 100, Name: "A", Refs: []cell.Reference{{Target: glyph.Handle}}}
	require.NoError(t, enc.Define(top))
	require.ErrorIs(t, enc.Define(&cell.Cell{Handle: 101, Name: "A"}), ErrDuplicateCell)
	require.NoError(t, enc.Close())

	name, _ := enc.NameOf(cell.PixelHandle)
	assert.Equal(t, "B", name)
	name, _ = enc.NameOf(glyph.Handle)
	assert.Equal(t, "D", name)

	rep, err := Verify(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, rep.Roots)

	t.Run("invalid", func(t *testing.T) {
		opts := testOptions()
		opts.Reserved = []string{"TOP CELL"}
		require.ErrorIs(t, NewEncoder(&bytes.Buffer{}, opts).Begin(), ErrInvalidName)
	})

	t.Run("listed twice", func(t *testing.T) {
		opts := testOptions()
		opts.Reserved = []string{"TOP", "TOP"}
		require.ErrorIs(t, NewEncoder(&bytes.Buffer{}, opts).Begin(), ErrDuplicateCell)
	})
}

func TestPadding(t *testing.T) {
	opts := testOptions()
	opts.PadTo = 0
	raw := encode(t, opts, sample())
	require.NotZero(t, len(raw)%format.BlockSize)

	padded := encode(t, testOptions(), sample())
	require.Equal(t, raw, padded[:len(raw)])
	for _, b := range padded[len(raw):] {
		require.Zero(t, b)
	}
	lib, err := ReadLibrary(bytes.NewReader(padded))
	require.NoError(t, err)
	assert.Equal(t, int64(len(padded)-len(raw)), lib.Padding)
}

func TestVerifyRejects(t *testing.T) {
	good := encode(t, testOptions(), sample())

	t.Run("truncated", func(t *testing.T) {
		opts := testOptions()
		opts.PadTo = 0
		raw := encode(t, opts, sample())
		_, err := Verify(bytes.NewReader(raw[:len(raw)/2]))
		require.ErrorIs(t, err, format.ErrTruncated)
	})

	t.Run("garbage after ENDLIB", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[len(bad)-1] = 1
		_, err := Verify(bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("missing header", func(t *testing.T) {
		_, n, err := format.ParseRecord(good)
		require.NoError(t, err)
		_, err = Verify(bytes.NewReader(good[n:]))
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("reference before definition", func(t *testing.T) {
		var b []byte
		b, _ = format.AppendInt16(b, format.RecHeader, format.StreamVersion)
		b, _ = format.AppendInt16(b, format.RecBgnLib, make([]int16, 12)...)
		b, _ = format.AppendString(b, format.RecLibName, "X")
		b, _ = format.AppendReal8(b, format.RecUnits, 1e-3, 1e-9)
		b, _ = format.AppendInt16(b, format.RecBgnStr, make([]int16, 12)...)
		b, _ = format.AppendString(b, format.RecStrName, "TOP")
		b = format.AppendEmpty(b, format.RecSRef)
		b, _ = format.AppendString(b, format.RecSName, "LATER")
		b, _ = format.AppendInt32(b, format.RecXY, 0, 0)
		b = format.AppendEmpty(b, format.RecEndEl)
		b = format.AppendEmpty(b, format.RecEndStr)
		b = format.AppendEmpty(b, format.RecEndLib)
		_, err := Verify(bytes.NewReader(b))
		require.ErrorIs(t, err, ErrUndefinedReference)
	})

	t.Run("duplicate structure", func(t *testing.T) {
		var b []byte
		b, _ = format.AppendInt16(b, format.RecHeader, format.StreamVersion)
		b, _ = format.AppendInt16(b, format.RecBgnLib, make([]int16, 12)...)
		b, _ = format.AppendString(b, format.RecLibName, "X")
		b, _ = format.AppendReal8(b, format.RecUnits, 1e-3, 1e-9)
		for i := 0; i < 2; i++ {
			b, _ = format.AppendInt16(b, format.RecBgnStr, make([]int16, 12)...)
			b, _ = format.AppendString(b, format.RecStrName, "A")
			b = format.AppendEmpty(b, format.RecEndStr)
		}
		b = format.AppendEmpty(b, format.RecEndLib)
		_, err := Verify(bytes.NewReader(b))
		require.ErrorIs(t, err, ErrDuplicateCell)
	})
}

func TestReaderRecordLengths(t *testing.T) {
	var b []byte
	b = binary.BigEndian.AppendUint16(b, 3)
	b = append(b, format.RecEndLib, 0)
	_, err := NewReader(bytes.NewReader(b)).Next()
	require.ErrorIs(t, err, format.ErrOddLength)
}
