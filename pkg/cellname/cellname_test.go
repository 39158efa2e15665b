package cellname

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameAtSequence(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "A"},
		{25, "Z"},
		{26, "A0"},
		{35, "A9"},
		{36, "AA"},
		{61, "AZ"},
		{62, "B0"},
		{26 + 26*36 - 1, "ZZ"},
		{26 + 26*36, "A00"},
		{26 + 26*36 + 1, "A01"},
	}
	for _, tt := range tests {
		got, err := NameAt(tt.n, 3)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "index %d", tt.n)
	}
}

func TestShortestFirstAndUnique(t *testing.T) {
	seen := map[string]bool{}
	prevLen := 1
	total := Capacity(2)
	require.Equal(t, uint64(26+26*36), total)
	for n := uint64(0); n < total; n++ {
		name, err := NameAt(n, 2)
		require.NoError(t, err)
		require.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
		require.GreaterOrEqual(t, len(name), prevLen)
		prevLen = len(name)
		require.True(t, name[0] >= 'A' && name[0] <= 'Z')
	}
	_, err := NameAt(total, 2)
	var exh *NameExhaustionError
	require.ErrorAs(t, err, &exh)
	assert.Equal(t, total, exh.Index)
}

func TestCapacitySaturates(t *testing.T) {
	assert.Equal(t, uint64(26), Capacity(1))
	assert.Equal(t, ^uint64(0), Capacity(20))
	name, err := NameAt(1<<62, 20)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(name), 20)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry[uint64](1)
	require.True(t, r.Reserve("B"))
	require.False(t, r.Reserve("B"))

	a, err := r.Name(10)
	require.NoError(t, err)
	assert.Equal(t, "A", a)
	c, err := r.Name(11)
	require.NoError(t, err)
	assert.Equal(t, "C", c, "reserved names are skipped")
	again, err := r.Name(10)
	require.NoError(t, err)
	assert.Equal(t, "A", again)

	got, ok := r.Lookup(11)
	require.True(t, ok)
	assert.Equal(t, "C", got)
	_, ok = r.Lookup(12)
	assert.False(t, ok)

	for id := uint64(100); r.Len() < 25; id++ {
		_, err := r.Name(id)
		require.NoError(t, err)
	}
	_, err = r.Name(999)
	var exh *NameExhaustionError
	require.ErrorAs(t, err, &exh)
	assert.Equal(t, 1, exh.MaxLength)
}
