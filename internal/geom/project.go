package geom

import (
	"fmt"
	"math"

	"github.com/banshee-data/kinradar/internal/depth"
)

// Calibration holds the angular extents used to project pixels into world
// space. The horizontal FOV of the depth sensor is well characterised at
// ~70 degrees. The vertical FOV is not: reference material disagrees between
// a distinct ~52.5 degree constant and reusing the horizontal per-pixel slope
// over the frame-height extent. It is therefore an explicit calibration
// parameter here rather than a hard-coded constant; the default reuses the
// horizontal slope, which is equivalent to a vertical FOV of
// 2*atan(tan(35 deg) * 240/320).
type Calibration struct {
	HorizontalFOVDegrees float64
	VerticalFOVDegrees   float64
}

// DefaultCalibration returns the calibration used by the stock sensor.
func DefaultCalibration() Calibration {
	tanHalfV := math.Tan(35*math.Pi/180) * float64(depth.FrameHeight) / float64(depth.FrameWidth)
	return Calibration{
		HorizontalFOVDegrees: 70,
		VerticalFOVDegrees:   2 * math.Atan(tanHalfV) * 180 / math.Pi,
	}
}

// Validate checks the angular extents are usable.
func (c Calibration) Validate() error {
	if c.HorizontalFOVDegrees <= 0 || c.HorizontalFOVDegrees >= 180 {
		return fmt.Errorf("horizontal FOV %.2f degrees outside (0, 180)", c.HorizontalFOVDegrees)
	}
	if c.VerticalFOVDegrees <= 0 || c.VerticalFOVDegrees >= 180 {
		return fmt.Errorf("vertical FOV %.2f degrees outside (0, 180)", c.VerticalFOVDegrees)
	}
	return nil
}

// Projector maps (pixel, distance) to world-space offsets in meters. The
// projection is linear in the pixel's signed offset from the frame center and
// in distance.
type Projector struct {
	slopeX float64 // meters of lateral offset per pixel per meter of distance
	slopeY float64
}

// NewProjector builds a projector from a calibration.
func NewProjector(cal Calibration) (*Projector, error) {
	if err := cal.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calibration: %v", err)
	}
	return &Projector{
		slopeX: math.Tan(cal.HorizontalFOVDegrees/2*math.Pi/180) / (depth.FrameWidth / 2),
		slopeY: math.Tan(cal.VerticalFOVDegrees/2*math.Pi/180) / (depth.FrameHeight / 2),
	}, nil
}

// HorizontalOffset returns the world X offset in meters for image column x at
// distance z. Columns left of center are positive.
func (p *Projector) HorizontalOffset(x int, z float64) float64 {
	return float64(depth.FrameWidth/2-x) * p.slopeX * z
}

// VerticalOffset returns the world Y offset in meters for image row y at
// distance z. Rows above center are positive.
func (p *Projector) VerticalOffset(y int, z float64) float64 {
	return float64(depth.FrameHeight/2-y) * p.slopeY * z
}

// MaxHorizontal returns the lateral half-extent of the view cone at distance z.
func (p *Projector) MaxHorizontal(z float64) float64 {
	return p.HorizontalOffset(0, z)
}

// MaxVertical returns the vertical half-extent of the view cone at distance z.
func (p *Projector) MaxVertical(z float64) float64 {
	return p.VerticalOffset(0, z)
}
