package preview

import (
	uv "github.com/charmbracelet/ultraviolet"
)

// TerminalRenderer pushes a canvas to an ultraviolet terminal.
type TerminalRenderer struct {
	term *uv.Terminal
	cols int
	rows int
}

// NewTerminalRenderer wraps a terminal of the given cell size.
func NewTerminalRenderer(term *uv.Terminal, cols, rows int) *TerminalRenderer {
	return &TerminalRenderer{term: term, cols: cols, rows: rows}
}

// CanvasSize returns the pixel dimensions a canvas needs to fill the
// terminal: one column per pixel, two pixel rows per cell row.
func (r *TerminalRenderer) CanvasSize() (width, height int) {
	return r.cols, r.rows * 2
}

// Render draws the canvas into the terminal's cell buffer and flushes it.
func (r *TerminalRenderer) Render(c *Canvas) error {
	c.Draw(r.term, r.term.Bounds())
	return r.term.Display()
}
