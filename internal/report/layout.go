package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fichaflow/backend/internal/models"
)

// Block kinds emitted by the layout pass.
const (
	KindText = "text"
	KindRect = "rect"
	KindLine = "line"
)

// Block is one positioned drawing primitive on a specific page.
type Block struct {
	Page  int
	Kind  string
	X     float64
	Y     float64
	W     float64
	H     float64
	Text  string
	Color string
	Size  float64
	Bold  bool
	Align string
}

// Measurer returns the rendered width of a string at a font size. The layout
// receives it as a function so tests can run without a PDF backend.
type Measurer func(text string, size float64, bold bool) float64

// Layout is the result of the pure pagination pass.
type Layout struct {
	Blocks []Block
	Pages  int
}

const (
	brandSize     = 22.0
	titleSize     = 16.0
	metaSize      = 11.0
	storeSize     = 14.0
	headingSize   = 12.0
	bodySize      = 9.0
	kpiValueSize  = 24.0
	kpiLabelSize  = 9.0
	sectionHdrH   = 18.0
	rowH          = 14.0
	totalH        = 16.0
	sepH          = 12.0
	narrativeGap  = 6.0
	histogramRowH = 13.0

	colorInk    = "#333333"
	colorMuted  = "#666666"
	colorRule   = "#e5e7eb"
	colorOK     = "#059669"
	colorKPIRed = "#dc2626"
	colorKPIOrg = "#ea580c"
	colorKPIYel = "#d97706"
)

// Column widths of the 4-column ticket table, as fractions of content width.
var columnFractions = [4]float64{0.13, 0.18, 0.37, 0.32}

type layouter struct {
	g       Geometry
	measure Measurer
	cur     Cursor
	blocks  []Block
	pages   int
}

// LayoutReport paginates the semantic report into positioned blocks. It
// performs every page-break decision; the renderer only draws. The footer is
// not part of the layout: it is stamped onto every page afterwards.
func LayoutReport(rep models.Report, brand string, g Geometry, measure Measurer) Layout {
	l := &layouter{g: g, measure: measure, cur: g.Start(), pages: 1}

	l.header(rep, brand)
	l.kpiBand(rep.KPIs)
	l.verdict(rep.Verdict)
	l.narrative(rep.Narrative)
	for _, sec := range rep.Sections {
		l.section(sec)
	}
	l.histogram(rep.StatusHistogram)

	return Layout{Blocks: l.blocks, Pages: l.pages}
}

func (l *layouter) emit(b Block) {
	b.Page = l.cur.Page
	if b.Page > l.pages {
		l.pages = b.Page
	}
	l.blocks = append(l.blocks, b)
}

func (l *layouter) need(h float64) {
	l.cur = l.cur.EnsureRoom(l.g, h)
	if l.cur.Page > l.pages {
		l.pages = l.cur.Page
	}
}

func (l *layouter) textLine(text, color string, size float64, bold bool, align string, h float64) {
	l.need(h)
	l.emit(Block{
		Kind: KindText, X: l.g.MarginLeft, Y: l.cur.Y, W: l.g.ContentWidth(), H: h,
		Text: text, Color: color, Size: size, Bold: bold, Align: align,
	})
	l.cur = l.cur.Advance(h)
}

func (l *layouter) separator(color string) {
	l.need(sepH)
	l.emit(Block{
		Kind: KindLine, X: l.g.MarginLeft, Y: l.cur.Y + sepH/2,
		W: l.g.ContentWidth(), H: 1, Color: color,
	})
	l.cur = l.cur.Advance(sepH)
}

func (l *layouter) header(rep models.Report, brand string) {
	l.textLine(brand, "#e53935", brandSize, true, "L", 26)
	l.textLine("Análise de Fichas de Serviço", colorInk, titleSize, true, "C", 20)
	l.textLine(rep.AnalysisDate.Format("02/01/2006"), colorMuted, metaSize, false, "C", 14)
	l.separator(colorRule)

	store := rep.StoreName
	if rep.StoreNumber != nil {
		store = fmt.Sprintf("%s (#%d)", rep.StoreName, *rep.StoreNumber)
	}
	l.textLine(store, colorInk, storeSize, true, "L", 18)
	l.textLine("Relatório de Monitorização de Fichas de Serviço", colorMuted, bodySize+1, false, "L", 13)
	l.separator(colorInk)
}

func (l *layouter) kpiBand(k models.KPIBand) {
	const bandH = 44.0
	l.need(bandH + sepH)

	cells := []struct {
		label string
		value int
		color string
	}{
		{"TOTAL FICHAS", k.TotalTickets, colorInk},
		{"ABERTAS +5 DIAS", k.StaleOpen, pick(k.StaleOpen > 0, colorKPIRed, colorOK)},
		{"STATUS ALERTA", k.AlertStatus, pick(k.AlertStatus > 0, colorKPIOrg, colorOK)},
		{"SEM NOTAS", k.NoNotes, pick(k.NoNotes > 0, colorKPIYel, colorOK)},
	}

	cellW := l.g.ContentWidth() / 4
	for i, c := range cells {
		x := l.g.MarginLeft + float64(i)*cellW
		l.emit(Block{
			Kind: KindText, X: x, Y: l.cur.Y, W: cellW, H: 28,
			Text: fmt.Sprintf("%d", c.value), Color: c.color, Size: kpiValueSize, Bold: true, Align: "C",
		})
		l.emit(Block{
			Kind: KindText, X: x, Y: l.cur.Y + 28, W: cellW, H: 12,
			Text: c.label, Color: colorMuted, Size: kpiLabelSize, Align: "C",
		})
	}
	l.cur = l.cur.Advance(bandH)
	l.separator(colorRule)
}

var verdictPresentation = map[string]struct {
	label string
	color string
}{
	models.VerdictImproved: {"MELHOROU", colorOK},
	models.VerdictWorsened: {"PIOROU", colorKPIRed},
	models.VerdictStable:   {"ESTÁVEL", colorKPIYel},
}

func (l *layouter) verdict(v *models.EvolutionVerdict) {
	if v == nil {
		return
	}
	p, ok := verdictPresentation[v.Verdict]
	if !ok {
		p.label, p.color = v.Verdict, colorInk
	}

	l.need(18 + rowH)
	l.textLine("EVOLUÇÃO: "+p.label, p.color, headingSize, true, "L", 18)
	for _, line := range wrapText(l.measure, v.Rationale, l.g.ContentWidth(), bodySize, false) {
		l.textLine(line, colorInk, bodySize, false, "L", 12)
	}
	l.cur = l.cur.Advance(narrativeGap)
}

func (l *layouter) narrative(raw string) {
	text := StripHTML(raw)
	if text == "" {
		return
	}

	l.need(18 + rowH)
	l.textLine("Resumo da Análise", colorInk, headingSize, true, "L", 18)
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			l.cur = l.cur.Advance(4)
			continue
		}
		for _, line := range wrapText(l.measure, para, l.g.ContentWidth(), bodySize, false) {
			l.textLine(line, colorInk, bodySize, false, "L", 12)
		}
	}
	l.cur = l.cur.Advance(narrativeGap)
}

func (l *layouter) section(sec models.ReportSection) {
	// Header and first row stay together: a header is never the last thing
	// on a page.
	l.need(sectionHdrH + rowH)

	l.emit(Block{
		Kind: KindRect, X: l.g.MarginLeft, Y: l.cur.Y,
		W: l.g.ContentWidth(), H: sectionHdrH, Color: sec.IdentityColor,
	})
	l.emit(Block{
		Kind: KindText, X: l.g.MarginLeft + 6, Y: l.cur.Y + 4, W: l.g.ContentWidth() - 12, H: sectionHdrH - 4,
		Text: truncate(l.measure, sec.Title, l.g.ContentWidth()-12, bodySize+1, true),
		Color: "#ffffff", Size: bodySize + 1, Bold: true,
	})
	l.cur = l.cur.Advance(sectionHdrH + 2)

	for _, item := range sec.LineItems {
		l.need(rowH)
		l.tableRow(item)
		l.cur = l.cur.Advance(rowH)
	}

	l.need(totalH)
	l.emit(Block{
		Kind: KindText, X: l.g.MarginLeft, Y: l.cur.Y + 2, W: l.g.ContentWidth(), H: totalH - 2,
		Text: sec.Total, Color: sec.IdentityColor, Size: bodySize + 1, Bold: true,
	})
	l.cur = l.cur.Advance(totalH + narrativeGap)
}

// tableRow splits a pipe-delimited line item into exactly four columns.
// Malformed items (fewer fields) render with trailing columns blank.
func (l *layouter) tableRow(item string) {
	cols := splitLineItem(item)
	x := l.g.MarginLeft
	for i, frac := range columnFractions {
		w := l.g.ContentWidth() * frac
		text := truncate(l.measure, cols[i], w-4, bodySize, false)
		l.emit(Block{
			Kind: KindText, X: x, Y: l.cur.Y, W: w, H: rowH,
			Text: text, Color: colorInk, Size: bodySize,
		})
		x += w
	}
}

func (l *layouter) histogram(hist map[string]int) {
	if len(hist) == 0 {
		return
	}

	type entry struct {
		status string
		count  int
	}
	entries := make([]entry, 0, len(hist))
	for s, c := range hist {
		entries = append(entries, entry{s, c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count == entries[j].count {
			return entries[i].status < entries[j].status
		}
		return entries[i].count > entries[j].count
	})

	l.need(18 + histogramRowH)
	l.textLine("QUANTIDADE DE PROCESSOS POR STATUS", colorInk, headingSize-1, true, "L", 18)
	for _, e := range entries {
		l.need(histogramRowH)
		l.emit(Block{
			Kind: KindText, X: l.g.MarginLeft, Y: l.cur.Y, W: l.g.ContentWidth() * 0.7, H: histogramRowH,
			Text: truncate(l.measure, e.status, l.g.ContentWidth()*0.7-4, bodySize, false),
			Color: colorInk, Size: bodySize,
		})
		l.emit(Block{
			Kind: KindText, X: l.g.MarginLeft + l.g.ContentWidth()*0.7, Y: l.cur.Y,
			W: l.g.ContentWidth() * 0.3, H: histogramRowH,
			Text: fmt.Sprintf("%d", e.count), Color: colorInk, Size: bodySize, Align: "R",
		})
		l.cur = l.cur.Advance(histogramRowH)
	}
}

func splitLineItem(item string) [4]string {
	var cols [4]string
	parts := strings.SplitN(item, " | ", 4)
	for i := 0; i < len(parts) && i < 4; i++ {
		cols[i] = strings.TrimSpace(parts[i])
	}
	return cols
}

// truncate ellipsizes text that would overflow the given width so long
// values can never corrupt the column layout.
func truncate(measure Measurer, text string, width float64, size float64, bold bool) string {
	if measure(text, size, bold) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if measure(candidate, size, bold) <= width {
			return candidate
		}
	}
	return ""
}

func wrapText(measure Measurer, text string, width float64, size float64, bold bool) []string {
	var words []string
	for _, w := range strings.Fields(text) {
		words = append(words, splitLongWord(measure, w, width, size, bold)...)
	}
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if measure(candidate, size, bold) <= width {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = w
	}
	lines = append(lines, line)
	return lines
}

// splitLongWord hard-breaks a token wider than the line into rune chunks
// that fit, so an unbroken run can never draw past the right margin.
func splitLongWord(measure Measurer, word string, width float64, size float64, bold bool) []string {
	if measure(word, size, bold) <= width {
		return []string{word}
	}
	var out []string
	runes := []rune(word)
	for len(runes) > 0 {
		n := len(runes)
		for n > 1 && measure(string(runes[:n]), size, bold) > width {
			n--
		}
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return out
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
