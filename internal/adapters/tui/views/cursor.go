package views

// Cursor tracks a position over the gallery window and the slice of it
// currently on screen. The window grows as more pages load, so unlike a
// classic paginator there is no fixed page count; the viewport just slides
// to keep the cursor visible.
type Cursor struct {
	viewRows int
	top      int
	pos      int
	total    int
}

// NewCursor creates a cursor with the given viewport height in rows.
func NewCursor(viewRows int) *Cursor {
	if viewRows <= 0 {
		viewRows = 20
	}
	return &Cursor{viewRows: viewRows}
}

// SetViewRows updates the viewport height, e.g. on terminal resize.
func (c *Cursor) SetViewRows(rows int) {
	if rows > 0 {
		c.viewRows = rows
		c.ensureVisible()
	}
}

// SetTotal sets the window length, clamping the cursor into bounds.
func (c *Cursor) SetTotal(total int) {
	c.total = total
	if c.pos >= total {
		c.pos = total - 1
	}
	if c.pos < 0 {
		c.pos = 0
	}
	c.ensureVisible()
}

// Pos returns the absolute cursor index in the window.
func (c *Cursor) Pos() int {
	return c.pos
}

// SetPos moves the cursor to an absolute index.
func (c *Cursor) SetPos(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos >= c.total && c.total > 0 {
		pos = c.total - 1
	}
	c.pos = pos
	c.ensureVisible()
}

// Up moves the cursor up one row. Returns false at the top.
func (c *Cursor) Up() bool {
	if c.pos == 0 {
		return false
	}
	c.pos--
	c.ensureVisible()
	return true
}

// Down moves the cursor down one row. Returns false at the bottom of the
// loaded window.
func (c *Cursor) Down() bool {
	if c.pos >= c.total-1 {
		return false
	}
	c.pos++
	c.ensureVisible()
	return true
}

// PageUp and PageDown jump by a viewport.
func (c *Cursor) PageUp()   { c.SetPos(c.pos - c.viewRows) }
func (c *Cursor) PageDown() { c.SetPos(c.pos + c.viewRows) }

// Home and End jump to the window edges.
func (c *Cursor) Home() { c.SetPos(0) }
func (c *Cursor) End()  { c.SetPos(c.total - 1) }

// Visible returns the [start, end) slice of the window on screen.
func (c *Cursor) Visible() (start, end int) {
	start = c.top
	end = min(c.top+c.viewRows, c.total)
	return
}

// NearEnd reports whether the cursor is within threshold rows of the end
// of the loaded window, the point at which the next page should load.
func (c *Cursor) NearEnd(threshold int) bool {
	return c.total > 0 && c.pos >= c.total-threshold
}

// Reset returns the cursor to the top with an empty window.
func (c *Cursor) Reset() {
	c.pos = 0
	c.top = 0
	c.total = 0
}

func (c *Cursor) ensureVisible() {
	if c.pos < c.top {
		c.top = c.pos
	} else if c.pos >= c.top+c.viewRows {
		c.top = c.pos - c.viewRows + 1
	}
	if c.top < 0 {
		c.top = 0
	}
}
