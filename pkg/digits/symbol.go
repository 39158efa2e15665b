// Package digits models the symbol stream rendered by the layout engine:
// the decimal digits plus the decimal point fused with the digit after it.
package digits

// Symbol is one character of the stream.
type Symbol = byte

// Point is the fused decimal-point symbol ("3.1" is stored as "3P").
const Point Symbol = 'P'

// NumSymbols is the size of the alphabet.
const NumSymbols = 11

// Alphabet lists every symbol in ordinal order.
var Alphabet = []Symbol{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', Point}

// Ordinal maps a symbol to 0..9 for digits and 10 for Point. The second
// result is false for bytes outside the alphabet.
func Ordinal(s Symbol) (int, bool) {
	switch {
	case s >= '0' && s <= '9':
		return int(s - '0'), true
	case s == Point:
		return 10, true
	default:
		return 0, false
	}
}

// FromOrdinal is the inverse of Ordinal.
func FromOrdinal(n int) Symbol {
	if n == 10 {
		return Point
	}
	return Symbol('0' + n)
}

// Valid reports whether s belongs to the alphabet.
func Valid(s Symbol) bool {
	_, ok := Ordinal(s)
	return ok
}
