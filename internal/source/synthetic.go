package source

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/kinradar/internal/depth"
)

// SyntheticScene names a generated test scene.
type SyntheticScene string

const (
	// SceneWall is a flat wall spanning the whole frame at a fixed distance.
	SceneWall SyntheticScene = "wall"
	// SceneOrbit is a square target circling the frame center against an
	// out-of-range background.
	SceneOrbit SyntheticScene = "orbit"
	// SceneEmpty has every pixel out of range.
	SceneEmpty SyntheticScene = "empty"
)

// SyntheticSource generates deterministic depth frames for tests and demos.
type SyntheticSource struct {
	Scene      SyntheticScene
	FrameRate  float64 // frames per second; 0 means unpaced
	FrameCount int     // frames to generate; 0 means until cancelled

	WallDistance float64 // meters, for SceneWall and the orbit target
	lut          *depth.RangeLUT
}

// NewSyntheticSource returns a generator for the named scene.
func NewSyntheticSource(scene SyntheticScene) *SyntheticSource {
	return &SyntheticSource{
		Scene:        scene,
		FrameRate:    30,
		WallDistance: 2.5,
		lut:          depth.NewRangeLUT(),
	}
}

// codeFor returns the largest range code not exceeding distance z.
func (s *SyntheticSource) codeFor(z float64) uint16 {
	lo, hi := uint16(0), uint16(depth.CodeOutOfRange-1)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.lut.DistanceAt(mid) <= z {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Generate fills f with frame n of the scene.
func (s *SyntheticSource) Generate(f *depth.Frame, n int) {
	switch s.Scene {
	case SceneWall:
		code := s.codeFor(s.WallDistance)
		for i := range f.Codes {
			f.Codes[i] = code
		}
	case SceneOrbit:
		for i := range f.Codes {
			f.Codes[i] = depth.CodeOutOfRange
		}
		angle := float64(n) * 2 * math.Pi / 120
		cx := depth.FrameWidth/2 + int(200*math.Cos(angle))
		cy := depth.FrameHeight/2 + int(120*math.Sin(angle))
		code := s.codeFor(s.WallDistance)
		for y := cy - 20; y < cy+20; y++ {
			if y < 0 || y >= depth.FrameHeight {
				continue
			}
			for x := cx - 20; x < cx+20; x++ {
				if x < 0 || x >= depth.FrameWidth {
					continue
				}
				f.Codes[y*depth.FrameWidth+x] = code
			}
		}
	default: // SceneEmpty
		for i := range f.Codes {
			f.Codes[i] = depth.CodeOutOfRange
		}
	}
	f.Sequence = uint32(n)
}

// Run generates frames until the configured count, cancellation, or a
// handler error.
func (s *SyntheticSource) Run(ctx context.Context, handler FrameHandler) error {
	switch s.Scene {
	case SceneWall, SceneOrbit, SceneEmpty:
	default:
		return fmt.Errorf("unknown synthetic scene %q", s.Scene)
	}

	var ticker *time.Ticker
	if s.FrameRate > 0 {
		ticker = time.NewTicker(time.Duration(float64(time.Second) / s.FrameRate))
		defer ticker.Stop()
	}

	f := depth.NewFrame()
	for n := 0; s.FrameCount == 0 || n < s.FrameCount; n++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		s.Generate(f, n)
		f.Timestamp = time.Now()
		if err := handler(f); err != nil {
			return err
		}
	}
	return nil
}
