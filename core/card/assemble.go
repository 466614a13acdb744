package card

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/kwanjiru/eduid/core"
)

// Mode selects the document variant.
type Mode int

const (
	// ModeSingle produces one page with one centered pair (personal download).
	ModeSingle Mode = iota
	// ModeBulk tiles pairs across pages for batch printing.
	ModeBulk
)

var ErrNothingToRender = errors.New("no renderable card records")

// Result is a finished, immutable render.
type Result struct {
	PDF      []byte
	Pages    int
	Rendered int
	Skipped  int
}

// Assembler drives the full pipeline: tiler for positions, compositor for
// drawing, and document finalization. One Assembler may be shared; every
// Assemble call owns a fresh canvas.
type Assembler struct {
	geo Geometry
	log core.Logger
}

func NewAssembler(geo Geometry, log core.Logger) *Assembler {
	return &Assembler{geo: geo, log: log}
}

// Assemble renders the given records in order into a finished PDF document.
// Records lacking both a name and a registration number are skipped, never
// aborting the batch. Output is fully deterministic for identical inputs and
// issuedAt; issuedAt also feeds the rendered security microtext.
func (a *Assembler) Assemble(fields []CardField, mode Mode, issuedAt time.Time, title string) (*Result, error) {
	// canvas size comes from the geometry so the tiler and the physical page agree
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: a.geo.PageW, Ht: a.geo.PageH},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(issuedAt)
	pdf.SetModificationDate(issuedAt)
	if title != "" {
		pdf.SetTitle(title, false)
	}

	p := painter{pdf: pdf}
	res := &Result{}

	switch mode {
	case ModeSingle:
		if err := a.assembleSingle(p, fields, issuedAt, res); err != nil {
			return nil, err
		}
	default:
		a.assembleBulk(p, fields, issuedAt, title, res)
	}

	if pdf.Err() {
		return nil, pdf.Error()
	}
	res.Pages = pdf.PageCount()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	res.PDF = buf.Bytes()
	return res, nil
}

func (a *Assembler) assembleSingle(p painter, fields []CardField, issuedAt time.Time, res *Result) error {
	var fld CardField
	var found bool
	for _, f := range fields {
		if f.Renderable() {
			fld, found = f, true
			break
		}
		res.Skipped++
	}
	if !found {
		return ErrNothingToRender
	}

	g := a.geo
	p.pdf.AddPage()
	x := (g.PageW - g.CardW) / 2
	y := (g.PageH - g.PairHeight()) / 2
	p.composePair(g, x, y, fld, issuedAt)
	res.Rendered++
	return nil
}

func (a *Assembler) assembleBulk(p painter, fields []CardField, issuedAt time.Time, title string, res *Result) {
	g := a.geo
	plan := g.PlanPages()

	slot := 0
	for i, fld := range fields {
		if !fld.Renderable() {
			res.Skipped++
			a.warn(fmt.Sprintf("skipping card record %d: no name or registration number", i))
			continue
		}
		if slot == 0 {
			p.pdf.AddPage()
			if p.pdf.PageCount() == 1 && title != "" {
				p.text(g.Margin, g.Margin-3, title, font{"B", 10}, colBlack)
			}
		}
		x, y := plan.SlotOrigin(slot)
		p.composePair(g, x, y, fld, issuedAt)
		res.Rendered++
		slot = (slot + 1) % plan.PairsPerPage
	}

	// a batch where every record was skipped still yields a (near) empty
	// document rather than an invalid zero-page file
	if p.pdf.PageCount() == 0 {
		p.pdf.AddPage()
		if title != "" {
			p.text(g.Margin, g.Margin-3, title, font{"B", 10}, colBlack)
		}
	}
}

func (a *Assembler) warn(msg string) {
	if a.log != nil {
		a.log.Warn(msg)
	}
}
