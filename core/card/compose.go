package card

import "time"

// composePair draws one student's front and back faces at the pair slot whose
// top-left corner is (x, y): front on top, back below, separated by the
// cutting gap with a dashed cut lane across it. Returns the y coordinate
// immediately below the pair.
func (p painter) composePair(g Geometry, x, y float64, fld CardField, issuedAt time.Time) float64 {
	frontY := y
	backY := y + g.CardH + g.CuttingGap

	p.renderFace(g, x, frontY, FaceFront, fld, issuedAt)
	p.drawGuides(g, x, frontY, g.CardW, g.CardH)

	// cut lane at the midpoint of the gap
	laneY := frontY + g.CardH + g.CuttingGap/2
	p.dashedLine(x-g.GuideLen, laneY, x+g.CardW+g.GuideLen, laneY, colGuide, 0.1)
	p.textCentered(x+g.CardW/2, laneY-0.6, "CUT HERE", font{"", g.Font.Micro}, colMuted)

	p.renderFace(g, x, backY, FaceBack, fld, issuedAt)
	p.drawGuides(g, x, backY, g.CardW, g.CardH)

	return backY + g.CardH
}
