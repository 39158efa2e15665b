package font

import (
	"errors"
	"fmt"
)

// ErrSyntax indicates a font file that does not follow the text format.
var ErrSyntax = errors.New("font: syntax error")

// MalformedGlyphError reports a missing or inconsistent glyph.
type MalformedGlyphError struct {
	Symbol byte
	Reason string
}

func (e *MalformedGlyphError) Error() string {
	if e.Symbol == 0 {
		return "font: malformed font: " + e.Reason
	}
	return fmt.Sprintf("font: malformed glyph %q: %s", e.Symbol, e.Reason)
}
