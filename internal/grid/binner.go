package grid

import (
	"fmt"

	"github.com/banshee-data/kinradar/internal/depth"
	"github.com/banshee-data/kinradar/internal/geom"
)

// Binner converts one depth frame into populations in the two occupancy
// grids. Horizontal is the overhead view (world X against distance),
// Vertical the side view (world Y against distance). The two grids may carry
// independent clip planes; by default they share one pair.
type Binner struct {
	lut  *depth.RangeLUT
	proj *geom.Projector

	Horizontal *Grid
	Vertical   *Grid
}

// NewBinner allocates both grids and wires up the projection.
func NewBinner(lut *depth.RangeLUT, proj *geom.Projector, hcfg, vcfg Config) (*Binner, error) {
	h, err := New(hcfg)
	if err != nil {
		return nil, fmt.Errorf("horizontal grid: %v", err)
	}
	v, err := New(vcfg)
	if err != nil {
		return nil, fmt.Errorf("vertical grid: %v", err)
	}
	return &Binner{lut: lut, proj: proj, Horizontal: h, Vertical: v}, nil
}

// Clear resets both grids for the next frame.
func (b *Binner) Clear() {
	b.Horizontal.Clear()
	b.Vertical.Clear()
}

// Bin accumulates every pixel in the active row band into the grids. Pixels
// with the out-of-range sentinel are counted and skipped without touching
// either grid; pixels outside a grid's clip planes skip that grid only. The
// returned error is fatal: it means a lateral bucket fell outside the grid,
// which indicates a far-clip/extent configuration mismatch.
func (b *Binner) Bin(frame *depth.Frame, band depth.RowBand) (int, error) {
	if err := band.Validate(); err != nil {
		return 0, err
	}

	outOfRange := 0
	for y := band.Top; y < band.Bottom; y++ {
		for x := 0; x < depth.FrameWidth; x++ {
			code := frame.At(x, y)
			if code == depth.CodeOutOfRange {
				outOfRange++
				continue
			}
			z := b.lut.DistanceAt(code)

			if hc := b.Horizontal.Config; z >= hc.NearClip && z <= hc.FarClip {
				u, err := hc.LateralBucket(b.proj.HorizontalOffset(x, z))
				if err != nil {
					return outOfRange, fmt.Errorf("pixel (%d, %d): %v", x, y, err)
				}
				b.Horizontal.Increment(hc.DistanceBucket(z), u)
			}

			if vc := b.Vertical.Config; z >= vc.NearClip && z <= vc.FarClip {
				u, err := vc.LateralBucket(b.proj.VerticalOffset(y, z))
				if err != nil {
					return outOfRange, fmt.Errorf("pixel (%d, %d): %v", x, y, err)
				}
				b.Vertical.Increment(vc.DistanceBucket(z), u)
			}
		}
	}
	return outOfRange, nil
}
