package grid

import "fmt"

// Config describes one occupancy grid: the bucket resolution along the
// lateral and distance axes, the clip planes bounding the sensed volume, and
// the lateral half-extent of the view cone at the far clip plane. One Config
// per projection axis; set once per session and never mutated mid-frame.
type Config struct {
	LateralDivs  int     // buckets across the lateral axis
	DistanceDivs int     // buckets along the distance axis
	NearClip     float64 // meters
	FarClip      float64 // meters, > NearClip
	MaxLateral   float64 // lateral half-extent at FarClip, meters, > 0
}

// Validate checks the configuration is internally consistent.
func (c Config) Validate() error {
	if c.LateralDivs <= 0 {
		return fmt.Errorf("lateral divisions must be positive, got %d", c.LateralDivs)
	}
	if c.DistanceDivs <= 0 {
		return fmt.Errorf("distance divisions must be positive, got %d", c.DistanceDivs)
	}
	if c.NearClip < 0 {
		return fmt.Errorf("near clip must be non-negative, got %f", c.NearClip)
	}
	if c.FarClip <= c.NearClip {
		return fmt.Errorf("far clip %f must exceed near clip %f", c.FarClip, c.NearClip)
	}
	if c.MaxLateral <= 0 {
		return fmt.Errorf("max lateral extent must be positive, got %f", c.MaxLateral)
	}
	return nil
}

// DistanceBucket maps a distance in [NearClip, FarClip] to a bucket index.
// Exact bucket boundaries round toward the lower bucket; the far clip plane
// itself clamps into the last bucket.
func (c Config) DistanceBucket(z float64) int {
	v := int((z - c.NearClip) * float64(c.DistanceDivs) / (c.FarClip - c.NearClip))
	if v < 0 {
		return 0
	}
	if v >= c.DistanceDivs {
		return c.DistanceDivs - 1
	}
	return v
}

// LateralBucket maps a world lateral offset to a bucket index. An offset of
// exactly +MaxLateral lands on the upper grid edge and clamps into the last
// bucket. Any other out-of-range result means MaxLateral disagrees with the
// projection at FarClip, which is a fatal configuration error: the caller
// must abort the session rather than write out of bounds.
func (c Config) LateralBucket(w float64) (int, error) {
	u := int((w + c.MaxLateral) * float64(c.LateralDivs) / (2 * c.MaxLateral))
	if u == c.LateralDivs {
		return c.LateralDivs - 1, nil
	}
	if u < 0 || u > c.LateralDivs {
		return 0, fmt.Errorf("lateral offset %f maps to bucket %d of %d: max lateral extent %f inconsistent with far clip %f",
			w, u, c.LateralDivs, c.MaxLateral, c.FarClip)
	}
	return u, nil
}

// bandOuterEdge returns the distance at the far edge of distance bucket v.
func (c Config) bandOuterEdge(v int) float64 {
	return c.NearClip + float64(v+1)*(c.FarClip-c.NearClip)/float64(c.DistanceDivs)
}
