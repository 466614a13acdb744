package card

// drawGuides draws the print-shop cutting aids around one face: a solid trim
// rectangle on the face's bounding box plus a pair of short dashed
// registration ticks extending outward from each corner. Purely geometric and
// identical for front and back faces.
func (p painter) drawGuides(g Geometry, x, y, w, h float64) {
	l := g.GuideLen

	// corner registration marks
	p.pdf.SetDashPattern([]float64{0.8, 0.8}, 0)
	// top-left
	p.line(x-l, y, x, y, colGuide, 0.15)
	p.line(x, y-l, x, y, colGuide, 0.15)
	// top-right
	p.line(x+w, y, x+w+l, y, colGuide, 0.15)
	p.line(x+w, y-l, x+w, y, colGuide, 0.15)
	// bottom-left
	p.line(x-l, y+h, x, y+h, colGuide, 0.15)
	p.line(x, y+h, x, y+h+l, colGuide, 0.15)
	// bottom-right
	p.line(x+w, y+h, x+w+l, y+h, colGuide, 0.15)
	p.line(x+w, y+h, x+w, y+h+l, colGuide, 0.15)
	p.pdf.SetDashPattern([]float64{}, 0)

	// outer trim line
	p.strokeRect(x, y, w, h, colGuide, 0.1)
}
