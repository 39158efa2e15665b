package font

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Parse reads a font in the text format:
//
//	4x6          first non-empty line: width x height
//	`1`          glyph key: backticked character, 0x31, or a bare character
//	.X..         height rows of '.' (off) and 'X' (on), width characters each
//	XX..
//	...
//
// Blank lines and lines starting with '#' are skipped between glyphs. The
// input may be UTF-8 or UTF-16 with a byte order mark.
func Parse(r io.Reader) (*Table, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	sc := bufio.NewScanner(transform.NewReader(r, dec))
	lineNo := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		lineNo++
		return strings.TrimRight(sc.Text(), "\r"), true
	}

	var t *Table
	for {
		line, ok := next()
		if !ok {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if t == nil {
			w, h, err := parseSize(trimmed)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			t = NewTable(w, h)
			continue
		}

		sym, err := parseKey(trimmed)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		g := &Glyph{Symbol: sym, Width: t.width, Height: t.height, Bits: make([]bool, 0, t.width*t.height)}
		for y := 0; y < t.height; y++ {
			row, ok := next()
			if !ok {
				return nil, fmt.Errorf("glyph %q: unexpected end of file: %w", sym, ErrSyntax)
			}
			row = strings.TrimSpace(row)
			if len(row) != t.width {
				return nil, &MalformedGlyphError{
					Symbol: sym,
					Reason: fmt.Sprintf("line %d: row length %d, want %d", lineNo, len(row), t.width),
				}
			}
			for i := 0; i < len(row); i++ {
				switch row[i] {
				case 'X':
					g.Bits = append(g.Bits, true)
				case '.':
					g.Bits = append(g.Bits, false)
				default:
					return nil, &MalformedGlyphError{
						Symbol: sym,
						Reason: fmt.Sprintf("line %d: unexpected %q in bitmap", lineNo, row[i]),
					}
				}
			}
		}
		if err := t.Add(g); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("font: read: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("empty font file: %w", ErrSyntax)
	}
	return t, nil
}

// Load parses the font file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size line %q, want WxH: %w", s, ErrSyntax)
	}
	w, errW := strconv.Atoi(strings.TrimSpace(ws))
	h, errH := strconv.Atoi(strings.TrimSpace(hs))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size line %q, want WxH: %w", s, ErrSyntax)
	}
	return w, h, nil
}

func parseKey(s string) (byte, error) {
	if len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' {
		lit := s[1 : len(s)-1]
		if len(lit) != 1 {
			return 0, fmt.Errorf("glyph literal %q must be one ASCII character: %w", lit, ErrSyntax)
		}
		return lit[0], nil
	}
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		code, err := strconv.ParseUint(s[2:], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("glyph code %q: %w", s, ErrSyntax)
		}
		return byte(code), nil
	}
	if len(s) == 1 {
		return s[0], nil
	}
	return 0, fmt.Errorf("unrecognized glyph key %q: %w", s, ErrSyntax)
}
