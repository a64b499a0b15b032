// Package source delivers depth frames to the processing session. Sources
// share one contract: frames arrive through a synchronous callback, one at a
// time, and the callback must return before the next frame is delivered.
//
// Four sources are provided: a UDP listener for the live sensor bridge (one
// packet per image row), a .dlog file replayer, a pcap replayer for captured
// sensor traffic, and a synthetic generator for tests and demos. A Recorder
// writes any source's frames back to a .dlog file.
package source
