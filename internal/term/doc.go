// Package term renders occupancy grids to a character-cell terminal. The
// Sink interface abstracts cursor positioning and SGR attributes so tests can
// capture output; ANSISink implements it with escape sequences over any
// io.Writer. The Renderer maps cell populations to a fixed glyph/color
// palette and caches the last-emitted attributes to minimise terminal I/O.
package term
