// Package font holds the bitmap glyphs the layout is rendered with.
//
// A Table is a fixed-size monospace bitmap font. Tables come from the text
// font format (see Parse), from the built-in 4x6 face (Default), or from
// rasterizing a golang.org/x/image/font face (FromFace).
package font

import (
	"fmt"
	"strings"
)

// Glyph is the bitmap of one symbol. Bits is row-major with row 0 at the
// top of the glyph.
type Glyph struct {
	Symbol  byte
	Width   int
	Height  int
	Bits    []bool
	Advance int
}

// At reports whether the pixel in column x of row y (from the top) is on.
func (g *Glyph) At(x, y int) bool {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return false
	}
	return g.Bits[y*g.Width+x]
}

// Filled returns the number of on pixels.
func (g *Glyph) Filled() int {
	n := 0
	for _, b := range g.Bits {
		if b {
			n++
		}
	}
	return n
}

// Table is an immutable-after-load set of equally sized glyphs.
type Table struct {
	width, height int
	glyphs        map[byte]*Glyph
	order         []byte
}

// NewTable returns an empty table for glyphs of the given size.
func NewTable(width, height int) *Table {
	return &Table{width: width, height: height, glyphs: make(map[byte]*Glyph)}
}

// Add inserts g. A second glyph for the same symbol, or a glyph whose size
// disagrees with the table, is a MalformedGlyphError.
func (t *Table) Add(g *Glyph) error {
	if _, dup := t.glyphs[g.Symbol]; dup {
		return &MalformedGlyphError{Symbol: g.Symbol, Reason: "duplicate glyph"}
	}
	if err := t.check(g); err != nil {
		return err
	}
	if g.Advance == 0 {
		g.Advance = g.Width
	}
	t.glyphs[g.Symbol] = g
	t.order = append(t.order, g.Symbol)
	return nil
}

func (t *Table) check(g *Glyph) error {
	if g.Width != t.width || g.Height != t.height {
		return &MalformedGlyphError{
			Symbol: g.Symbol,
			Reason: fmt.Sprintf("size %dx%d, font is %dx%d", g.Width, g.Height, t.width, t.height),
		}
	}
	if len(g.Bits) != g.Width*g.Height {
		return &MalformedGlyphError{
			Symbol: g.Symbol,
			Reason: fmt.Sprintf("%d mask bits, want %d", len(g.Bits), g.Width*g.Height),
		}
	}
	return nil
}

// Width returns the glyph width in pixels.
func (t *Table) Width() int { return t.width }

// Height returns the glyph height in pixels.
func (t *Table) Height() int { return t.height }

// Glyph returns the glyph for sym.
func (t *Table) Glyph(sym byte) (*Glyph, bool) {
	g, ok := t.glyphs[sym]
	return g, ok
}

// Symbols returns the symbols in the order they were added.
func (t *Table) Symbols() []byte {
	return append([]byte(nil), t.order...)
}

// Validate checks the table once before layout: the table has a non-zero
// size, every required symbol has a glyph, and every mask is consistent.
func (t *Table) Validate(required []byte) error {
	if t.width <= 0 || t.height <= 0 {
		return &MalformedGlyphError{Reason: fmt.Sprintf("empty font size %dx%d", t.width, t.height)}
	}
	for _, sym := range required {
		if _, ok := t.glyphs[sym]; !ok {
			return &MalformedGlyphError{Symbol: sym, Reason: "missing glyph"}
		}
	}
	for _, sym := range t.order {
		if err := t.check(t.glyphs[sym]); err != nil {
			return err
		}
	}
	return nil
}

// String renders the table in the text font format accepted by Parse.
func (t *Table) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d\n", t.width, t.height)
	for _, sym := range t.order {
		g := t.glyphs[sym]
		sb.WriteString(formatKey(sym))
		sb.WriteByte('\n')
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				if g.At(x, y) {
					sb.WriteByte('X')
				} else {
					sb.WriteByte('.')
				}
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func formatKey(sym byte) string {
	if sym > ' ' && sym < 0x7F && sym != '`' {
		return "`" + string(rune(sym)) + "`"
	}
	return fmt.Sprintf("0x%02X", sym)
}
