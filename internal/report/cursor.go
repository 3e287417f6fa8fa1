package report

// Geometry fixes the page box the layout works inside. Units are PDF points.
type Geometry struct {
	PageWidth    float64
	PageHeight   float64
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64
}

// A4 in points with the 40pt margins the reports have always used.
func DefaultGeometry() Geometry {
	return Geometry{
		PageWidth:    595.28,
		PageHeight:   841.89,
		MarginLeft:   40,
		MarginRight:  40,
		MarginTop:    40,
		MarginBottom: 40,
	}
}

func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - g.MarginLeft - g.MarginRight
}

func (g Geometry) Bottom() float64 {
	return g.PageHeight - g.MarginBottom
}

// Cursor is the pagination state: current page (1-based) and vertical
// position. It is a value; layout functions take one and return the next, so
// page-break decisions are testable without drawing anything.
type Cursor struct {
	Page int
	Y    float64
}

func (g Geometry) Start() Cursor {
	return Cursor{Page: 1, Y: g.MarginTop}
}

// Fits reports whether a block of the given height fits above the printable
// bottom edge.
func (c Cursor) Fits(g Geometry, h float64) bool {
	return c.Y+h <= g.Bottom()
}

// NextPage moves the cursor to the top of a fresh page.
func (c Cursor) NextPage(g Geometry) Cursor {
	return Cursor{Page: c.Page + 1, Y: g.MarginTop}
}

// Advance moves the cursor down within the current page.
func (c Cursor) Advance(h float64) Cursor {
	return Cursor{Page: c.Page, Y: c.Y + h}
}

// EnsureRoom breaks to a new page before a block that would not fit. The
// block is never split from whatever the caller groups into h (e.g. a
// section header plus its first row).
func (c Cursor) EnsureRoom(g Geometry, h float64) Cursor {
	if c.Fits(g, h) {
		return c
	}
	return c.NextPage(g)
}
