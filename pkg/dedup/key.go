// Package dedup finds repeated fixed-length symbol windows and promotes the
// frequent ones to shared cells.
//
// Every block line is cut left to right into non-overlapping windows of L
// symbols; a trailing remainder shorter than L stays as individual glyphs.
// A window value seen at least Threshold times across the whole stream is
// promoted. Promoted windows are ranked by descending count (ties by key)
// and the rank is the shared cell's identity for the run.
package dedup

import (
	"errors"
	"fmt"

	"github.com/bigjosh/gotham-pi-maker/pkg/digits"
)

// MaxKeyLength is the longest window a Key packs exactly: 11^18 < 2^64.
const MaxKeyLength = 18

// Key is the base-11 packing of one window, most significant symbol first.
type Key uint64

var (
	// ErrInvalidConfig indicates an unusable window length or threshold.
	ErrInvalidConfig = errors.New("dedup: invalid configuration")
	// ErrKeyLength indicates a window longer than MaxKeyLength.
	ErrKeyLength = errors.New("dedup: window too long for key")
)

// EncodeKey packs symbols into a Key.
func EncodeKey(symbols []byte) (Key, error) {
	if len(symbols) > MaxKeyLength {
		return 0, fmt.Errorf("%d symbols: %w", len(symbols), ErrKeyLength)
	}
	var k Key
	for i, s := range symbols {
		ord, ok := digits.Ordinal(s)
		if !ok {
			return 0, &digits.InvalidSymbolError{Offset: int64(i), Byte: s}
		}
		k = k*digits.NumSymbols + Key(ord)
	}
	return k, nil
}

// DecodeKey unpacks a key of length n.
func DecodeKey(k Key, n int) []byte {
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = digits.FromOrdinal(int(k % digits.NumSymbols))
		k /= digits.NumSymbols
	}
	return out
}

// String renders the key as base-11 digits with 'P' for ten. The length is
// not recoverable from the key alone, so leading zeros are dropped.
func (k Key) String() string {
	if k == 0 {
		return "0"
	}
	var buf [MaxKeyLength + 1]byte
	i := len(buf)
	for k > 0 {
		i--
		buf[i] = digits.FromOrdinal(int(k % digits.NumSymbols))
		k /= digits.NumSymbols
	}
	return string(buf[i:])
}
