package polymerge

import "image"

// Area returns the signed area of p, positive when counter-clockwise.
func Area(p Polygon) int {
	s := 0
	for i := range p {
		a, b := p[i], p[(i+1)%len(p)]
		s += a.X*b.Y - b.X*a.Y
	}
	return s / 2
}

// Segment is one directed polygon edge.
type Segment struct {
	From, To image.Point
}

// Edges returns the closed edge list of p.
func Edges(p Polygon) []Segment {
	out := make([]Segment, len(p))
	for i := range p {
		out[i] = Segment{From: p[i], To: p[(i+1)%len(p)]}
	}
	return out
}

// SelfIntersects reports whether two edges of p cross at a point interior
// to both. Collinear overlaps, such as the two sides of a bridge, and
// touching at vertices are not crossings.
func SelfIntersects(p Polygon) bool {
	edges := Edges(p)
	for i := range edges {
		for j := i + 1; j < len(edges); j++ {
			if properCross(edges[i], edges[j]) {
				return true
			}
		}
	}
	return false
}

func properCross(a, b Segment) bool {
	d1 := orient(b.From, b.To, a.From)
	d2 := orient(b.From, b.To, a.To)
	d3 := orient(a.From, a.To, b.From)
	d4 := orient(a.From, a.To, b.To)
	return d1*d2 < 0 && d3*d4 < 0
}

func orient(a, b, c image.Point) int {
	v := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Rasterize fills every pixel of a w x h mask whose centre lies inside the
// polygons under the even-odd rule.
func Rasterize(polys []Polygon, w, h int) Mask {
	m := NewMask(w, h)
	for y := 0; y < h; y++ {
		// Pixel centres sit at half units; compare doubled coordinates.
		cy := 2*y + 1
		for x := 0; x < w; x++ {
			cx := 2*x + 1
			inside := false
			for _, p := range polys {
				for i := range p {
					a, b := p[i], p[(i+1)%len(p)]
					if a.X != b.X || 2*a.X < cx {
						continue
					}
					lo, hi := min(a.Y, b.Y), max(a.Y, b.Y)
					if 2*lo < cy && cy < 2*hi {
						inside = !inside
					}
				}
			}
			m.Set(x, y, inside)
		}
	}
	return m
}
