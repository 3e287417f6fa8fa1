package report

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/fichaflow/backend/internal/models"
)

// Renderer draws a paginated PDF from a semantic report. Layout decisions
// happen in LayoutReport; this type only translates blocks into gofpdf calls
// and stamps the footer onto every produced page at the end.
type Renderer struct {
	Brand      string
	FooterText string
}

func (r Renderer) Render(rep models.Report) (models.RenderedDocument, error) {
	g := DefaultGeometry()

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, g.MarginBottom)
	pdf.SetMargins(g.MarginLeft, g.MarginTop, g.MarginRight)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	measure := func(text string, size float64, bold bool) float64 {
		pdf.SetFont("Helvetica", fontStyle(bold), size)
		return pdf.GetStringWidth(tr(text))
	}

	layout := LayoutReport(rep, r.Brand, g, measure)

	for page := 1; page <= layout.Pages; page++ {
		pdf.AddPage()
	}

	for _, b := range layout.Blocks {
		pdf.SetPage(b.Page)
		switch b.Kind {
		case KindRect:
			cr, cg, cb := hexToRGB(b.Color)
			pdf.SetFillColor(cr, cg, cb)
			pdf.Rect(b.X, b.Y, b.W, b.H, "F")
		case KindLine:
			cr, cg, cb := hexToRGB(b.Color)
			pdf.SetDrawColor(cr, cg, cb)
			pdf.SetLineWidth(b.H)
			pdf.Line(b.X, b.Y, b.X+b.W, b.Y)
		case KindText:
			cr, cg, cb := hexToRGB(b.Color)
			pdf.SetTextColor(cr, cg, cb)
			pdf.SetFont("Helvetica", fontStyle(b.Bold), b.Size)
			pdf.SetXY(b.X, b.Y)
			pdf.CellFormat(b.W, b.H, tr(b.Text), "", 0, cellAlign(b.Align), false, 0, "")
		}
	}

	// Footer pass: identical centered line on every page, after all content
	// is in place.
	if r.FooterText != "" {
		fr, fg, fb := hexToRGB("#999999")
		for page := 1; page <= layout.Pages; page++ {
			pdf.SetPage(page)
			pdf.SetTextColor(fr, fg, fb)
			pdf.SetFont("Helvetica", "", 8)
			pdf.SetXY(g.MarginLeft, g.PageHeight-30)
			pdf.CellFormat(g.ContentWidth(), 12, tr(r.FooterText), "", 0, "CM", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return models.RenderedDocument{}, err
	}
	return models.RenderedDocument{PDF: buf.Bytes(), Pages: layout.Pages}, nil
}

func fontStyle(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

func cellAlign(a string) string {
	switch a {
	case "C":
		return "CM"
	case "R":
		return "RM"
	default:
		return "LM"
	}
}

func hexToRGB(hex string) (int, int, int) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return 0, 0, 0
	}
	r, _ := strconv.ParseInt(h[0:2], 16, 32)
	g, _ := strconv.ParseInt(h[2:4], 16, 32)
	b, _ := strconv.ParseInt(h[4:6], 16, 32)
	return int(r), int(g), int(b)
}
