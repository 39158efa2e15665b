package font

import (
	"fmt"
	"image"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// FaceOptions controls rasterization in FromFace.
type FaceOptions struct {
	// Symbols to rasterize. Defaults to '0'..'9' and 'P'.
	Symbols []byte

	// Width and Height of each glyph cell. Zero takes the advance of '0'
	// and the line height from the face metrics.
	Width, Height int

	// Threshold is the minimum coverage (1..255) for a pixel to be on.
	// Zero means 128.
	Threshold uint8
}

// FromFace rasterizes face into a bitmap table. 'P' is composed as the '1'
// glyph with the '.' glyph drawn flush against the left edge.
func FromFace(face xfont.Face, opts FaceOptions) (*Table, error) {
	syms := opts.Symbols
	if len(syms) == 0 {
		syms = []byte("0123456789P")
	}
	m := face.Metrics()
	w, h := opts.Width, opts.Height
	if w == 0 {
		adv, ok := face.GlyphAdvance('0')
		if !ok {
			return nil, &MalformedGlyphError{Symbol: '0', Reason: "face has no glyph"}
		}
		w = adv.Ceil()
	}
	if h == 0 {
		h = m.Height.Ceil()
	}
	if w <= 0 || h <= 0 {
		return nil, &MalformedGlyphError{Reason: fmt.Sprintf("face cell %dx%d", w, h)}
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = 0x80
	}

	t := NewTable(w, h)
	for _, sym := range syms {
		img := image.NewAlpha(image.Rect(0, 0, w, h))
		d := &xfont.Drawer{Dst: img, Src: image.Opaque, Face: face}
		if sym == 'P' {
			if err := draw(d, '1', 0, m.Ascent); err != nil {
				return nil, err
			}
			bounds, _ := xfont.BoundString(face, ".")
			if err := draw(d, '.', -bounds.Min.X, m.Ascent); err != nil {
				return nil, err
			}
		} else if err := draw(d, rune(sym), 0, m.Ascent); err != nil {
			return nil, err
		}

		g := &Glyph{Symbol: sym, Width: w, Height: h, Bits: make([]bool, w*h)}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g.Bits[y*w+x] = img.AlphaAt(x, y).A >= threshold
			}
		}
		if err := t.Add(g); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func draw(d *xfont.Drawer, r rune, x, ascent fixed.Int26_6) error {
	if _, ok := d.Face.GlyphAdvance(r); !ok {
		return &MalformedGlyphError{Symbol: byte(r), Reason: "face has no glyph"}
	}
	d.Dot = fixed.Point26_6{X: x, Y: ascent}
	d.DrawString(string(r))
	return nil
}
