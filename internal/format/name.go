package format

import "fmt"

// ValidName reports whether s is usable as a structure name: 1 to
// MaxNameLength characters from A-Z, a-z, 0-9, '_', '?' and '$'.
func ValidName(s string) error {
	if len(s) == 0 || len(s) > MaxNameLength {
		return fmt.Errorf("%q: length %d: %w", s, len(s), ErrInvalidName)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '_', c == '?', c == '$':
		default:
			return fmt.Errorf("%q: character %q: %w", s, c, ErrInvalidName)
		}
	}
	return nil
}
