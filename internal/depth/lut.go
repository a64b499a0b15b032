package depth

import "math"

// Sensor frame geometry constants. The sensor always delivers full frames at
// its native resolution; partial frames are rejected at the source layer.
const (
	FrameWidth  = 640
	FrameHeight = 480
	FramePixels = FrameWidth * FrameHeight

	// CodeOutOfRange is the reserved range code meaning "no valid return".
	// It must never be passed to RangeLUT.DistanceAt; callers test for it
	// before lookup.
	CodeOutOfRange = 2047

	lutSize = 2048
)

// RangeLUT maps a raw 11-bit range code to a distance in meters. Built once
// at startup and immutable afterwards.
type RangeLUT struct {
	distances [lutSize]float64
}

// NewRangeLUT builds the lookup table from the empirical calibration formula
// for the 11-bit depth format:
//
//	distance = 0.1236 * tan(code/2842.5 + 1.1863)
//
// See http://groups.google.com/group/openkinect/browse_thread/thread/31351846fd33c78
func NewRangeLUT() *RangeLUT {
	lut := &RangeLUT{}
	for i := range lut.distances {
		lut.distances[i] = 0.1236 * math.Tan(float64(i)/2842.5+1.1863)
	}
	return lut
}

// DistanceAt returns the distance in meters for a raw range code. The table
// is total over 0..2047; code 2047 is a sentinel that callers must filter
// out before calling.
func (l *RangeLUT) DistanceAt(code uint16) float64 {
	return l.distances[code&(lutSize-1)]
}
