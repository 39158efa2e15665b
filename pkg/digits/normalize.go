package digits

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Validate checks that every byte of b is a symbol. base is the stream
// offset of b[0] and is only used for error reporting.
func Validate(b []byte, base int64) error {
	for i, c := range b {
		if !Valid(c) {
			return &InvalidSymbolError{Offset: base + int64(i), Byte: c}
		}
	}
	return nil
}

// Normalize copies a human formatted digit file into the stream form.
// ASCII whitespace is dropped and the first decimal point is fused with the
// '1' following it ("3.14" becomes "3P4"). Any other byte, or a point not
// followed by '1', is an InvalidSymbolError whose offset counts input bytes.
// It returns the number of symbols written.
func Normalize(r io.Reader, w io.Writer) (int64, error) {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	var (
		in, out    int64
		pendingDot bool
		sawDot     bool
		dotOff     int64
	)
	for {
		c, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("digits: read input: %w", err)
		}
		off := in
		in++
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			continue
		case c == '.' && !sawDot:
			sawDot, pendingDot, dotOff = true, true, off
			continue
		case c >= '0' && c <= '9':
			if pendingDot {
				if c != '1' {
					return out, &InvalidSymbolError{Offset: dotOff, Byte: '.'}
				}
				c = Point
				pendingDot = false
			}
		default:
			return out, &InvalidSymbolError{Offset: off, Byte: c}
		}
		if err := bw.WriteByte(c); err != nil {
			return out, fmt.Errorf("digits: write output: %w", err)
		}
		out++
	}
	if pendingDot {
		return out, &InvalidSymbolError{Offset: dotOff, Byte: '.'}
	}
	if err := bw.Flush(); err != nil {
		return out, fmt.Errorf("digits: write output: %w", err)
	}
	return out, nil
}
