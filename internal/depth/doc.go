// Package depth owns the raw depth-frame data model: 11-bit range codes at
// the sensor's native 640x480 resolution, the range-code-to-meters lookup
// table, and the active row band that restricts which rows are processed.
//
// Frames are transient: a Source delivers one frame at a time and the
// processing pipeline must not retain it past the callback.
package depth
