package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeReal8KnownPatterns(t *testing.T) {
	cases := []struct {
		in   float64
		want uint64
	}{
		{0, 0},
		{1, 0x4110000000000000},
		{-1, 0xC110000000000000},
		{0.5, 0x4080000000000000},
		{16, 0x4210000000000000},
		{0.0625, 0x4010000000000000},
	}
	for _, tc := range cases {
		got, err := EncodeReal8(tc.in)
		require.NoError(t, err)
		require.Equalf(t, tc.want, got, "EncodeReal8(%v) = %#x", tc.in, got)
	}
}

func TestEncodeReal8UnitsExponent(t *testing.T) {
	// The UNITS values every writer emits: 1e-3 user units, 1e-9 metres.
	bits, err := EncodeReal8(1e-3)
	require.NoError(t, err)
	require.Equal(t, uint64(0x3E41), bits>>48)

	bits, err = EncodeReal8(1e-9)
	require.NoError(t, err)
	require.Equal(t, uint64(0x3944), bits>>48)
}

func TestReal8RoundTrip(t *testing.T) {
	for _, v := range []float64{1e-9, 1e-6, 1e-3, 0.1, 3.14159, 1000, 1e20, -42.5} {
		bits, err := EncodeReal8(v)
		require.NoError(t, err)
		got := DecodeReal8(bits)
		require.InEpsilon(t, v, got, 1e-15)
	}
}

func TestEncodeReal8Range(t *testing.T) {
	_, err := EncodeReal8(math.Inf(1))
	require.ErrorIs(t, err, ErrRealRange)
	_, err = EncodeReal8(math.NaN())
	require.ErrorIs(t, err, ErrRealRange)
	_, err = EncodeReal8(1e300)
	require.ErrorIs(t, err, ErrRealRange)
}
