package card

import (
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
)

// rgb is an explicit paint value. Draw helpers take their colors and fonts as
// parameters and set the canvas state themselves on every call, so no drawing
// step depends on state left behind by a previous one.
type rgb struct {
	r, g, b int
}

var (
	colWhite     = rgb{255, 255, 255}
	colBlack     = rgb{26, 26, 26}
	colText      = rgb{51, 51, 51}
	colMuted     = rgb{120, 120, 120}
	colPanel     = rgb{244, 246, 250}
	colNavy      = rgb{16, 32, 66}
	colGold      = rgb{212, 175, 55}
	colGuide     = rgb{150, 150, 150}
	colHighlight = rgb{255, 243, 205}
)

// hexToRGB parses "#rrggbb" (or "rrggbb"); malformed input falls back to navy.
func hexToRGB(hex string) rgb {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return colNavy
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return colNavy
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}
}

// font is an explicit font value; family is always a built-in core font.
type font struct {
	style string // "", "B", "I"
	size  float64
}

const fontFamily = "Helvetica"

type painter struct {
	pdf *fpdf.Fpdf
}

func (p painter) fillRect(x, y, w, h float64, c rgb) {
	p.pdf.SetFillColor(c.r, c.g, c.b)
	p.pdf.Rect(x, y, w, h, "F")
}

func (p painter) strokeRect(x, y, w, h float64, c rgb, width float64) {
	p.pdf.SetDrawColor(c.r, c.g, c.b)
	p.pdf.SetLineWidth(width)
	p.pdf.Rect(x, y, w, h, "D")
}

func (p painter) line(x1, y1, x2, y2 float64, c rgb, width float64) {
	p.pdf.SetDrawColor(c.r, c.g, c.b)
	p.pdf.SetLineWidth(width)
	p.pdf.Line(x1, y1, x2, y2)
}

func (p painter) dashedLine(x1, y1, x2, y2 float64, c rgb, width float64) {
	p.pdf.SetDashPattern([]float64{1, 1}, 0)
	p.line(x1, y1, x2, y2, c, width)
	p.pdf.SetDashPattern([]float64{}, 0)
}

// text draws s with its baseline at y.
func (p painter) text(x, y float64, s string, f font, c rgb) {
	p.pdf.SetFont(fontFamily, f.style, f.size)
	p.pdf.SetTextColor(c.r, c.g, c.b)
	p.pdf.Text(x, y, s)
}

func (p painter) textCentered(cx, y float64, s string, f font, c rgb) {
	p.pdf.SetFont(fontFamily, f.style, f.size)
	p.pdf.SetTextColor(c.r, c.g, c.b)
	w := p.pdf.GetStringWidth(s)
	p.pdf.Text(cx-w/2, y, s)
}

func (p painter) textRight(rx, y float64, s string, f font, c rgb) {
	p.pdf.SetFont(fontFamily, f.style, f.size)
	p.pdf.SetTextColor(c.r, c.g, c.b)
	w := p.pdf.GetStringWidth(s)
	p.pdf.Text(rx-w, y, s)
}

// textWidth measures s under font f.
func (p painter) textWidth(s string, f font) float64 {
	p.pdf.SetFont(fontFamily, f.style, f.size)
	return p.pdf.GetStringWidth(s)
}
