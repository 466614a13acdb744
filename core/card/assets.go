package card

import (
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
)

// asset is an image file that decoded successfully, with its pixel dimensions.
type asset struct {
	path string
	w, h int
}

// tryLoadImage resolves a path to a drawable asset, or nil. It never errors:
// an empty path, a missing file or an undecodable image all yield nil and the
// caller renders the region as a blank placeholder instead.
func tryLoadImage(path string) *asset {
	if path == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif": // formats the PDF backend embeds
	default:
		return nil
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil
	}
	return &asset{path: path, w: b.Dx(), h: b.Dy()}
}

// fit computes the aspect-preserving placement of the asset centered in the
// given box.
func (a *asset) fit(boxX, boxY, boxW, boxH float64) (x, y, w, h float64) {
	ar := float64(a.w) / float64(a.h)
	boxAR := boxW / boxH
	if ar > boxAR {
		w = boxW
		h = boxW / ar
	} else {
		h = boxH
		w = boxH * ar
	}
	x = boxX + (boxW-w)/2
	y = boxY + (boxH-h)/2
	return x, y, w, h
}

// draw places the asset in the box, aspect-preserved. Failures inside the PDF
// backend surface through pdf.Err() at output time; they never panic here.
func (a *asset) draw(pdf *fpdf.Fpdf, boxX, boxY, boxW, boxH float64) {
	x, y, w, h := a.fit(boxX, boxY, boxW, boxH)
	pdf.ImageOptions(a.path, x, y, w, h, false, fpdf.ImageOptions{ReadDpi: false}, 0, "")
}
