package geom

import (
	"math"
	"testing"

	"github.com/banshee-data/kinradar/internal/depth"
)

func mustProjector(t *testing.T) *Projector {
	t.Helper()
	p, err := NewProjector(DefaultCalibration())
	if err != nil {
		t.Fatalf("NewProjector: %v", err)
	}
	return p
}

func TestHorizontalOffsetCenterIsZero(t *testing.T) {
	p := mustProjector(t)
	if got := p.HorizontalOffset(depth.FrameWidth/2, 3.0); got != 0 {
		t.Errorf("center column offset = %f, want 0", got)
	}
	if got := p.VerticalOffset(depth.FrameHeight/2, 3.0); got != 0 {
		t.Errorf("center row offset = %f, want 0", got)
	}
}

func TestHorizontalOffsetLinearInDistance(t *testing.T) {
	p := mustProjector(t)
	at1 := p.HorizontalOffset(100, 1.0)
	at4 := p.HorizontalOffset(100, 4.0)
	if math.Abs(at4-4*at1) > 1e-12 {
		t.Errorf("offset not linear in distance: %f vs 4*%f", at4, at1)
	}
}

func TestHorizontalOffsetEdges(t *testing.T) {
	p := mustProjector(t)

	// At the left edge of the frame the offset equals z*tan(35 deg).
	want := 6.0 * math.Tan(35*math.Pi/180)
	if got := p.HorizontalOffset(0, 6.0); math.Abs(got-want) > 1e-9 {
		t.Errorf("left-edge offset = %f, want %f", got, want)
	}

	// Left of center positive, right of center negative.
	if p.HorizontalOffset(0, 2.0) <= 0 {
		t.Error("left edge should have positive offset")
	}
	if p.HorizontalOffset(depth.FrameWidth-1, 2.0) >= 0 {
		t.Error("right edge should have negative offset")
	}
}

func TestVerticalSlopeMatchesRemappedHorizontal(t *testing.T) {
	// The default vertical calibration reuses the horizontal per-pixel
	// slope, so equal pixel offsets from center give equal world offsets.
	p := mustProjector(t)
	h := p.HorizontalOffset(depth.FrameWidth/2-50, 3.0)
	v := p.VerticalOffset(depth.FrameHeight/2-50, 3.0)
	if math.Abs(h-v) > 1e-9 {
		t.Errorf("vertical slope differs from horizontal: %f vs %f", v, h)
	}
}

func TestCalibrationValidate(t *testing.T) {
	for _, cal := range []Calibration{
		{HorizontalFOVDegrees: 0, VerticalFOVDegrees: 45},
		{HorizontalFOVDegrees: 70, VerticalFOVDegrees: 180},
		{HorizontalFOVDegrees: -10, VerticalFOVDegrees: 45},
	} {
		if err := cal.Validate(); err == nil {
			t.Errorf("calibration %+v: expected error", cal)
		}
	}
	if err := DefaultCalibration().Validate(); err != nil {
		t.Errorf("default calibration invalid: %v", err)
	}
}
