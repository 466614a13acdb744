package card

import (
	"strings"
	"time"
)

// Face selects which printable side of the card to draw.
type Face int

const (
	FaceFront Face = iota
	FaceBack
)

// renderFace draws one face of one card with its top-left corner at (x, y),
// staying within the card rectangle. Draw order matters: later draws occlude
// earlier ones.
func (p painter) renderFace(g Geometry, x, y float64, face Face, fld CardField, issuedAt time.Time) {
	fld = fld.normalized()
	if face == FaceFront {
		p.renderFront(g, x, y, fld, issuedAt)
	} else {
		p.renderBack(g, x, y, fld)
	}
}

func (p painter) renderFront(g Geometry, x, y float64, fld CardField, issuedAt time.Time) {
	primary := hexToRGB(fld.ColorHex)

	// background + frame
	p.fillRect(x, y, g.CardW, g.CardH, colWhite)
	p.strokeRect(x, y, g.CardW, g.CardH, primary, 0.3)

	// header band with institution name, optional motto and logo thumbnails
	p.fillRect(x, y, g.CardW, g.HeaderH, primary)
	if fld.SchoolMotto != "" {
		p.textCentered(x+g.CardW/2, y+g.HeaderH/2-0.2,
			truncateEllipsis(fld.SchoolName, maxSchoolNameChars), font{"B", g.Font.Header}, colWhite)
		p.textCentered(x+g.CardW/2, y+g.HeaderH/2+2.8,
			truncateEllipsis(fld.SchoolMotto, maxMottoChars), font{"I", g.Font.Caption}, colGold)
	} else {
		p.textCentered(x+g.CardW/2, y+g.HeaderH/2+1.2,
			truncateEllipsis(fld.SchoolName, maxSchoolNameChars), font{"B", g.Font.Header}, colWhite)
	}
	if logo := tryLoadImage(fld.LogoPath); logo != nil {
		logo.draw(p.pdf, x+g.Pad, y+1.5, g.LogoThumbW, g.HeaderH-3)
		logo.draw(p.pdf, x+g.CardW-g.Pad-g.LogoThumbW, y+1.5, g.LogoThumbW, g.HeaderH-3)
	}

	// accent stripe
	p.fillRect(x, y+g.HeaderH, g.CardW, g.AccentH, colGold)

	// photo block; stays an empty framed placeholder when no photo resolves
	px := x + g.Pad
	py := y + g.HeaderH + g.AccentH + 2.3
	p.fillRect(px, py, g.PhotoW, g.PhotoH, colPanel)
	p.strokeRect(px, py, g.PhotoW, g.PhotoH, primary, 0.4)
	if photo := tryLoadImage(fld.PhotoPath); photo != nil {
		photo.draw(p.pdf, px+0.8, py+0.8, g.PhotoW-1.6, g.PhotoH-1.6)
	}

	// identity text column
	tx := px + g.PhotoW + 3
	p.text(tx, py+3.2, strings.ToUpper(truncate(fld.FullName, maxNameChars)), font{"B", g.Font.Name}, colBlack)
	p.text(tx, py+8, "REG: "+truncate(orNA(fld.RegNo), maxRegNoChars), font{"", g.Font.Field}, colText)
	p.text(tx, py+12.5, truncate(orNA(fld.Course), maxCourseChars), font{"", g.Font.Field}, colText)
	p.text(tx, py+17, truncate(orNA(fld.ClassLevel), maxClassChars), font{"", g.Font.Field}, colText)

	// bottom strip: short ID, validity badge, security microtext
	idY := y + g.CardH - 6.5
	idTxt := "ID: " + truncate(fld.IDNumber, maxBottomIDChars)
	p.text(x+g.Pad, idY, idTxt, font{"B", g.Font.Small}, colBlack)
	if fld.ValidUntil != "" {
		validTxt := "VALID: " + fld.ValidUntil
		vf := font{"B", g.Font.Small}
		vx := x + g.Pad + p.textWidth(idTxt, font{"B", g.Font.Small}) + 4
		p.fillRect(vx-1, idY-2.6, p.textWidth(validTxt, vf)+2, 3.6, colHighlight)
		p.text(vx, idY, validTxt, vf, colNavy)
	}
	p.text(x+g.Pad, y+g.CardH-2.8,
		"EDUID SECURE ID - DO NOT DUPLICATE - ISSUED "+issuedAt.Format("01/2006"),
		font{"", g.Font.Micro}, colMuted)

	// QR block with verification captions; blank panel when no QR resolves
	panelW := g.QRSize + 1.6
	panelH := g.QRSize + 5.6
	qx := x + g.CardW - g.Pad - panelW
	qy := y + g.CardH - g.Pad - panelH
	p.fillRect(qx, qy, panelW, panelH, colPanel)
	if qr := tryLoadImage(fld.QRPath); qr != nil {
		qr.draw(p.pdf, qx+0.8, qy+0.8, g.QRSize, g.QRSize)
	}
	p.textCentered(qx+panelW/2, qy+g.QRSize+2.8, "Scan to Verify", font{"", g.Font.Caption}, colText)
	p.textCentered(qx+panelW/2, qy+g.QRSize+4.6, "Authenticity", font{"", g.Font.Caption}, colText)
}

// terms lines; clipped if they exceed the panel's vertical budget.
var termsLines = []string{
	"1. This card is the property of the issuing institution.",
	"2. It is valid only for the period shown and for official school purposes.",
	"3. Any alteration or defacement renders this card invalid.",
	"4. If lost or found, report to the registrar's office immediately.",
	"5. The institution may revoke this card at any time.",
}

func (p painter) renderBack(g Geometry, x, y float64, fld CardField) {
	primary := hexToRGB(fld.ColorHex)

	// navy background, faint diagonal watermark, frame
	p.fillRect(x, y, g.CardW, g.CardH, colNavy)
	p.drawWatermark(g, x, y, fld.SchoolName)
	p.strokeRect(x, y, g.CardW, g.CardH, colGold, 0.3)

	// header band
	p.fillRect(x, y, g.CardW, g.BackHeaderH, colGold)
	p.textCentered(x+g.CardW/2, y+g.BackHeaderH/2+1.2, "STUDENT IDENTITY CARD", font{"B", g.Font.Title}, colNavy)

	// emergency / medical panels
	panelW := (g.CardW - 3*g.Pad) / 2
	panelH := 15.0
	py := y + g.BackHeaderH + 1.5
	p.panel(g, x+g.Pad, py, panelW, panelH, "EMERGENCY CONTACT", []string{
		truncate(orNA(fld.EmergencyName), maxEmergencyChars),
		orNA(fld.EmergencyPhone),
	})
	allergies := fld.Allergies
	if allergies == "" {
		allergies = "None"
	}
	p.panel(g, x+2*g.Pad+panelW, py, panelW, panelH, "MEDICAL INFORMATION", []string{
		"Blood: " + orNA(fld.BloodType),
		"Allergies: " + truncate(allergies, maxAllergiesChars),
	})

	// terms & conditions
	ty := py + panelH + 1.5
	termsH := 17.0
	p.fillRect(x+g.Pad, ty, g.CardW-2*g.Pad, termsH, colWhite)
	p.strokeRect(x+g.Pad, ty, g.CardW-2*g.Pad, termsH, colGold, 0.2)
	p.fillRect(x+g.Pad, ty, g.CardW-2*g.Pad, 4, primary)
	p.textCentered(x+g.CardW/2, ty+2.8, "TERMS & CONDITIONS", font{"B", 4.5}, colWhite)
	baseline := ty + 6.4
	for _, line := range termsLines {
		if baseline > ty+termsH-1 { // vertical budget exhausted
			break
		}
		p.text(x+g.Pad+1.5, baseline, line, font{"", g.Font.Caption}, colText)
		baseline += 2.2
	}

	// signature strip and security notice
	sy := y + g.CardH - 6
	p.text(x+g.Pad, sy, "Authorized Signature:", font{"", g.Font.Small}, colWhite)
	sigX := x + g.Pad + p.textWidth("Authorized Signature:", font{"", g.Font.Small}) + 3
	p.line(sigX, sy, sigX+30, sy, colGold, 0.2)
	p.textCentered(x+g.CardW/2, y+g.CardH-2.5,
		"Card is void if tampered with. Verification is required on demand.",
		font{"", g.Font.Micro}, colGold)
}

// panel draws one boxed back-face panel with a mini title bar and content lines.
func (p painter) panel(g Geometry, x, y, w, h float64, title string, lines []string) {
	p.fillRect(x, y, w, h, colWhite)
	p.strokeRect(x, y, w, h, colGold, 0.2)
	p.fillRect(x, y, w, 4, colNavy)
	p.textCentered(x+w/2, y+2.8, title, font{"B", 4.5}, colWhite)
	baseline := y + 7.5
	for _, line := range lines {
		if baseline > y+h-1 {
			break
		}
		p.text(x+1.5, baseline, line, font{"", g.Font.Small}, colText)
		baseline += 4
	}
}

// drawWatermark tiles a very-low-opacity diagonal text pattern across the
// card, clipped to the card rectangle.
func (p painter) drawWatermark(g Geometry, x, y float64, schoolName string) {
	mark := strings.ToUpper(truncate(schoolName, 16))
	if mark == "" {
		mark = "OFFICIAL"
	}

	p.pdf.ClipRect(x, y, g.CardW, g.CardH, false)
	p.pdf.SetAlpha(0.05, "Normal")
	p.pdf.TransformBegin()
	p.pdf.TransformRotate(30, x+g.CardW/2, y+g.CardH/2)
	for row := 0; row < 10; row++ {
		yy := y - 20 + float64(row)*9
		xx := x - 25
		if row%2 == 1 {
			xx += 18
		}
		for col := 0; col < 5; col++ {
			p.text(xx+float64(col)*36, yy, mark, font{"B", 9}, colWhite)
		}
	}
	p.pdf.TransformEnd()
	p.pdf.SetAlpha(1, "Normal")
	p.pdf.ClipEnd()
}
