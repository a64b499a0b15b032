// Package session owns the per-frame lifecycle of the radar display: clear
// the occupancy grids, bin the frame, annotate the cone borders, render the
// selected views, and recompute the out-of-range indicator. One Session
// exists per capture run; it is driven synchronously by a frame source and
// exclusively owns its grids, so no locking is involved.
package session
