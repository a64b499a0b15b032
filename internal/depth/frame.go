package depth

import (
	"fmt"
	"time"
)

// Frame is one captured depth image: row-major 11-bit range codes at the
// sensor's native resolution, plus the capture timestamp and a monotonically
// increasing sequence number assigned by the source.
type Frame struct {
	Codes     []uint16
	Timestamp time.Time
	Sequence  uint32
}

// NewFrame allocates an empty full-resolution frame.
func NewFrame() *Frame {
	return &Frame{Codes: make([]uint16, FramePixels)}
}

// At returns the range code for pixel (x, y). No bounds check; callers
// iterate within the frame dimensions.
func (f *Frame) At(x, y int) uint16 {
	return f.Codes[y*FrameWidth+x]
}

// Validate checks that the frame carries a full-resolution code buffer.
func (f *Frame) Validate() error {
	if len(f.Codes) != FramePixels {
		return fmt.Errorf("frame has %d codes, want %d", len(f.Codes), FramePixels)
	}
	return nil
}

// RowBand restricts which image rows participate in binning: rows in
// [Top, Bottom) are considered.
type RowBand struct {
	Top    int // inclusive
	Bottom int // exclusive
}

// FullBand covers every row of the frame.
func FullBand() RowBand {
	return RowBand{Top: 0, Bottom: FrameHeight}
}

// Validate checks 0 <= Top < Bottom <= FrameHeight.
func (b RowBand) Validate() error {
	if b.Top < 0 || b.Bottom > FrameHeight || b.Top >= b.Bottom {
		return fmt.Errorf("row band [%d, %d) outside [0, %d)", b.Top, b.Bottom, FrameHeight)
	}
	return nil
}

// Clamp forces the band into the valid range, preserving at least one row.
// Used by the CLI layer so out-of-range flags degrade instead of failing.
func (b RowBand) Clamp() RowBand {
	if b.Top < 0 {
		b.Top = 0
	}
	if b.Top >= FrameHeight {
		b.Top = FrameHeight - 1
	}
	if b.Bottom > FrameHeight {
		b.Bottom = FrameHeight
	}
	if b.Bottom <= b.Top {
		b.Bottom = b.Top + 1
	}
	return b
}

// Rows returns the number of rows in the band.
func (b RowBand) Rows() int {
	return b.Bottom - b.Top
}
