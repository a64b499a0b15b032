// Package grid owns the occupancy-grid layer of the pipeline: bucketing
// projected world coordinates into two independent 2D histograms (overhead
// and side views), tracking per-grid population maxima for rendering scale,
// and stamping the view cone's border sentinels after binning.
//
// Grids are allocated once from their Config and cleared every frame; they
// never resize. Cell values are either non-negative population counts or one
// of the two border sentinels.
package grid
