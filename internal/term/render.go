package term

import (
	"fmt"

	"github.com/banshee-data/kinradar/internal/grid"
)

// Fixed cell palette: glyph, foreground color, and weight per intensity
// level. Levels 0-5 scale with population density; levels 6 and 7 are the
// left and right cone-border sentinels.
var (
	cellGlyphs = []byte(" .-+%8/\\")
	cellFg     = []int{0, 0, 7, 7, 7, 7, 2, 2}
	cellBold   = []bool{true, true, false, false, true, true, false, false}
)

// Origin positions a grid's top-left cell. A negative Col renders without
// horizontal positioning; a negative Row renders at the cursor's current
// vertical position.
type Origin struct {
	Row int
	Col int
}

// Renderer draws grids into a Sink. It caches the last-applied bold/fg/bg
// attributes locally so identical consecutive cells cost one byte each; the
// cache lives on the renderer, not in package state, so independent sinks
// (tests, split displays) never interfere.
type Renderer struct {
	sink Sink

	lastBold int // -1 unknown, else 0/1
	lastFg   int
	lastBg   int
}

// NewRenderer creates a renderer with an invalid attribute cache.
func NewRenderer(sink Sink) *Renderer {
	return &Renderer{sink: sink, lastBold: -1, lastFg: -1, lastBg: -1}
}

// Reset emits an attribute reset and invalidates the cache. Call before the
// first grid of a frame and after rendering completes.
func (r *Renderer) Reset() error {
	r.lastBold, r.lastFg, r.lastBg = -1, -1, -1
	return r.sink.Reset()
}

func (r *Renderer) setColor(bold bool, fg, bg int) error {
	// A cell whose foreground equals its background would be invisible
	// without the bold weight; swap to the opposite extreme.
	if !bold && fg == bg {
		if bg == 0 {
			fg = 7
		} else {
			fg = 0
		}
	}

	b := 0
	if bold {
		b = 1
	}
	if b != r.lastBold {
		if err := r.sink.SetBold(bold); err != nil {
			return err
		}
		r.lastBold = b
	}
	if fg != r.lastFg {
		if err := r.sink.SetForeground(fg); err != nil {
			return err
		}
		r.lastFg = fg
	}
	if bg != r.lastBg {
		if err := r.sink.SetBackground(bg); err != nil {
			return err
		}
		r.lastBg = bg
	}
	return nil
}

// cellLevel scales a population against the frame's maximum into palette
// levels 0-5, with the border sentinels mapping to 6 and 7.
func cellLevel(val int32, scale int32) int {
	switch val {
	case grid.CellLeftBorder:
		return 6
	case grid.CellRightBorder:
		return 7
	}
	level := int(val * 20 / scale)
	if level > 5 {
		level = 5
	}
	return level
}

func (r *Renderer) printCell(val, scale int32) error {
	level := cellLevel(val, scale)
	if err := r.setColor(cellBold[level], cellFg[level], 0); err != nil {
		return err
	}
	_, err := r.sink.Write(cellGlyphs[level : level+1])
	return err
}

// RenderGrid draws one grid. With transpose set, rows of output correspond
// to lateral buckets instead of distance buckets (used for the side view so
// its distance axis runs horizontally); lateral buckets print in descending
// order, keeping the sensor's upward direction at the top of the display.
// With clearToEOL set, the rest of each output line right of the grid is
// cleared. A grid whose PopMax is zero renders blank: the scale is forced to
// 1 rather than dividing by zero.
func (r *Renderer) RenderGrid(g *grid.Grid, origin Origin, transpose, clearToEOL bool) error {
	scale := g.PopMax
	if scale == 0 {
		scale = 1
	}

	if origin.Row >= 0 {
		if err := r.sink.MoveTo(origin.Row); err != nil {
			return err
		}
	}

	rows, cols := g.Config.DistanceDivs, g.Config.LateralDivs
	if transpose {
		rows, cols = cols, rows
	}

	for row := 0; row < rows; row++ {
		if origin.Col >= 0 {
			if err := r.sink.MoveToColumn(origin.Col); err != nil {
				return err
			}
		}
		for col := 0; col < cols; col++ {
			v, u := row, col
			if transpose {
				v, u = col, rows-1-row
			}
			if err := r.printCell(g.Cells[v][u], scale); err != nil {
				return err
			}
		}
		if clearToEOL {
			if err := r.sink.ClearLine(); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(r.sink); err != nil {
			return err
		}
	}
	return nil
}
