package card

import "math"

// All lengths are millimetres unless noted. Font sizes are points.

// Geometry is the fixed physical constant set for the ID-1 card form factor
// and the A4 bulk layout. It is configuration, not per-student data.
type Geometry struct {
	CardW float64 // ISO/IEC 7810 ID-1
	CardH float64

	PageW  float64 // A4 portrait
	PageH  float64
	Margin float64 // outer page margin

	PairSpacing float64 // vertical space between pair slots
	CuttingGap  float64 // space between the front and back face of one pair
	GuideLen    float64 // registration tick length, extending outward from corners

	Pad          float64 // inner card padding
	HeaderH      float64 // front header band
	AccentH      float64 // accent stripe under the header
	BackHeaderH  float64
	PhotoW       float64
	PhotoH       float64
	QRSize       float64
	LogoThumbW   float64

	Font FontSizes
}

// FontSizes groups the per-label-class point sizes.
type FontSizes struct {
	Header  float64
	Title   float64
	Name    float64
	Field   float64
	Small   float64
	Caption float64
	Micro   float64
}

// DefaultGeometry returns the canonical card stock constants.
func DefaultGeometry() Geometry {
	return Geometry{
		CardW: 85.6,
		CardH: 53.98,

		PageW:  210,
		PageH:  297,
		Margin: 15,

		PairSpacing: 10,
		CuttingGap:  5,
		GuideLen:    3,

		Pad:         3,
		HeaderH:     10,
		AccentH:     1.2,
		BackHeaderH: 8,
		PhotoW:      20,
		PhotoH:      25,
		QRSize:      14,
		LogoThumbW:  8,

		Font: FontSizes{
			Header:  7,
			Title:   7,
			Name:    7.5,
			Field:   6,
			Small:   5,
			Caption: 3.5,
			Micro:   3,
		},
	}
}

// PairHeight is the vertical extent of one front+back pair including the cutting gap.
func (g Geometry) PairHeight() float64 {
	return 2*g.CardH + g.CuttingGap
}

// PagePlan places pair slots on pages for a given geometry.
type PagePlan struct {
	PairsPerPage int
	geo          Geometry
}

// PlanPages computes how many pairs fit on a page. The result is clamped to a
// minimum of 1 so that the assembly loop always makes forward progress.
func (g Geometry) PlanPages() PagePlan {
	k := int(math.Floor((g.PageH - 2*g.Margin) / (g.PairHeight() + g.PairSpacing)))
	if k < 1 {
		k = 1
	}
	return PagePlan{PairsPerPage: k, geo: g}
}

// SlotOrigin returns the top-left origin of slot n (0-indexed within a page).
// Slots are stacked from the bottom of the page up and horizontally centered;
// the y coordinate returned is top-down, matching the drawing canvas.
func (p PagePlan) SlotOrigin(n int) (x, y float64) {
	g := p.geo
	pairH := g.PairHeight()
	bottomUp := g.PageH - g.Margin - float64(n+1)*(pairH+g.PairSpacing)
	x = (g.PageW - g.CardW) / 2
	y = g.PageH - (bottomUp + pairH)
	return x, y
}

// PagesFor returns the number of pages needed for n pairs.
func (p PagePlan) PagesFor(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + p.PairsPerPage - 1) / p.PairsPerPage
}
