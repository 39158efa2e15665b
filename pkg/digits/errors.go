package digits

import (
	"errors"
	"fmt"
)

// ErrShortStream indicates the source holds fewer symbols than required.
var ErrShortStream = errors.New("digits: stream too short")

// InvalidSymbolError reports a byte outside the symbol alphabet.
type InvalidSymbolError struct {
	Offset int64
	Byte   byte
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("digits: invalid symbol %q at offset %d", e.Byte, e.Offset)
}
