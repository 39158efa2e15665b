// Package buf holds bounds-checked helpers for decoding big-endian GDSII
// payloads. Short inputs decode as zero rather than panicking.
package buf

import "encoding/binary"

// U16BE decodes the first two bytes of b.
func U16BE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// I16BE decodes the first two bytes of b as a two's complement value.
func I16BE(b []byte) int16 { return int16(U16BE(b)) }

// I32BE decodes the first four bytes of b as a two's complement value.
func I32BE(b []byte) int32 {
	if len(b) < 4 {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

// U64BE decodes the first eight bytes of b. REAL8 values travel as this
// bit pattern.
func U64BE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
