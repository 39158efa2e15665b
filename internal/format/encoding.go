package format

import (
	"encoding/binary"
	"fmt"
)

// Binary encoding utilities for GDSII records.
//
// GDSII is big-endian throughout. The Append* helpers grow dst with one
// complete record (header plus payload) and return the extended slice, in
// the style of strconv.AppendInt, so an encoder can reuse one scratch
// buffer per record.

// AppendHeader appends a record header announcing a payload of n bytes.
func AppendHeader(dst []byte, recType, dataType byte, n int) ([]byte, error) {
	if n < 0 || n > MaxPayloadSize || n%2 != 0 {
		return dst, fmt.Errorf("%s payload of %d bytes: %w", RecordName(recType), n, ErrRecordTooLarge)
	}
	total := uint16(n + RecordHeaderSize)
	return append(dst, byte(total>>8), byte(total), recType, dataType), nil
}

// AppendEmpty appends a record without payload (ENDLIB, ENDSTR, BOUNDARY, ...).
func AppendEmpty(dst []byte, recType byte) []byte {
	out, _ := AppendHeader(dst, recType, DataNone, 0)
	return out
}

// AppendInt16 appends a record carrying int16 values.
func AppendInt16(dst []byte, recType byte, vals ...int16) ([]byte, error) {
	out, err := AppendHeader(dst, recType, DataInt16, 2*len(vals))
	if err != nil {
		return dst, err
	}
	for _, v := range vals {
		out = binary.BigEndian.AppendUint16(out, uint16(v))
	}
	return out, nil
}

// AppendInt32 appends a record carrying int32 values.
func AppendInt32(dst []byte, recType byte, vals ...int32) ([]byte, error) {
	out, err := AppendHeader(dst, recType, DataInt32, 4*len(vals))
	if err != nil {
		return dst, err
	}
	for _, v := range vals {
		out = binary.BigEndian.AppendUint32(out, uint32(v))
	}
	return out, nil
}

// AppendReal8 appends a record carrying REAL8 values.
func AppendReal8(dst []byte, recType byte, vals ...float64) ([]byte, error) {
	out, err := AppendHeader(dst, recType, DataReal8, 8*len(vals))
	if err != nil {
		return dst, err
	}
	for _, v := range vals {
		bits, encErr := EncodeReal8(v)
		if encErr != nil {
			return dst, encErr
		}
		out = binary.BigEndian.AppendUint64(out, bits)
	}
	return out, nil
}

// AppendString appends an ASCII record, NUL padded to an even length.
func AppendString(dst []byte, recType byte, s string) ([]byte, error) {
	n := PaddedLen(len(s))
	out, err := AppendHeader(dst, recType, DataASCII, n)
	if err != nil {
		return dst, err
	}
	out = append(out, s...)
	if n > len(s) {
		out = append(out, 0)
	}
	return out, nil
}

// PaddedLen returns n rounded up to the next even value.
func PaddedLen(n int) int {
	return (n + 1) &^ 1
}

// TrimString strips the NUL padding from an ASCII payload.
func TrimString(b []byte) string {
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}
