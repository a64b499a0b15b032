// Package geom converts depth-frame pixel coordinates into world-space
// offsets using a pinhole projection parameterised by the sensor's field of
// view. All functions are pure and stateless.
package geom
