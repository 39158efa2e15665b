package dedup

import "github.com/bigjosh/gotham-pi-maker/internal/format"

// CostModel is the documented output size model used to choose L offline:
//
//	size = sum over promoted windows (DefinitionOverhead + L*GlyphReference
//	       + ReferenceOverhead*uses)
//	     + GlyphReference * symbols not covered by a promoted window
//
// The engine never evaluates it during a build.
type CostModel struct {
	DefinitionOverhead float64 // one shared cell, excluding its contents
	ReferenceOverhead  float64 // one reference to a shared cell
	GlyphReference     float64 // one reference to a glyph cell
}

// GDSCostModel derives the overheads from GDSII record sizes for cell names
// of nameLen characters.
func GDSCostModel(nameLen int) CostModel {
	name := float64(format.RecordHeaderSize + format.PaddedLen(nameLen))
	hdr := float64(format.RecordHeaderSize)
	// SREF, SNAME, XY (one point), ENDEL
	ref := hdr + name + hdr + 8 + hdr
	// BGNSTR with two timestamps, STRNAME, ENDSTR
	def := hdr + 2*format.TimestampFields*2 + name + hdr
	return CostModel{DefinitionOverhead: def, ReferenceOverhead: ref, GlyphReference: ref}
}

// Estimate is the outcome of the cost model for one L and threshold.
type Estimate struct {
	Length          int     `json:"length"`
	Threshold       int     `json:"threshold"`
	Promoted        int     `json:"promoted"`
	PromotedWindows int64   `json:"promoted_windows"`
	GlyphSymbols    int64   `json:"glyph_symbols"`
	Bytes           float64 `json:"bytes"`
}

// Estimate evaluates the model. histogram maps an occurrence count to the
// number of distinct windows with that count (see Index.Histogram) and
// symbols is the total number of symbols laid out.
func (m CostModel) Estimate(histogram map[uint64]int, l, threshold int, symbols int64) Estimate {
	est := Estimate{Length: l, Threshold: threshold}
	var covered int64
	for count, keys := range histogram {
		if int(count) < threshold {
			continue
		}
		est.Promoted += keys
		est.PromotedWindows += int64(count) * int64(keys)
		per := m.DefinitionOverhead + float64(l)*m.GlyphReference + float64(count)*m.ReferenceOverhead
		est.Bytes += float64(keys) * per
	}
	covered = est.PromotedWindows * int64(l)
	est.GlyphSymbols = symbols - covered
	est.Bytes += float64(est.GlyphSymbols) * m.GlyphReference
	return est
}
