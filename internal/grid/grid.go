package grid

import "fmt"

// Cell sentinel values marking the view cone's boundary. Stamped after
// binning completes; everything else in a grid is a population count.
const (
	CellLeftBorder  int32 = -1
	CellRightBorder int32 = -2
)

// Grid is a 2D population histogram over (distance bucket, lateral bucket),
// plus the running maximum population used as the rendering scale. Owned by a
// single session; never shared across goroutines.
type Grid struct {
	Config Config
	Cells  [][]int32 // [DistanceDivs][LateralDivs]
	PopMax int32

	backing []int32
}

// New allocates a cleared grid sized from cfg.
func New(cfg Config) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid config: %v", err)
	}
	g := &Grid{
		Config:  cfg,
		Cells:   make([][]int32, cfg.DistanceDivs),
		backing: make([]int32, cfg.DistanceDivs*cfg.LateralDivs),
	}
	for v := range g.Cells {
		g.Cells[v] = g.backing[v*cfg.LateralDivs : (v+1)*cfg.LateralDivs]
	}
	return g, nil
}

// Clear zeroes every cell and resets the population maximum. Called at the
// start of every frame.
func (g *Grid) Clear() {
	clear(g.backing)
	g.PopMax = 0
}

// Increment adds one to cell (v, u) and keeps PopMax current.
func (g *Grid) Increment(v, u int) {
	g.Cells[v][u]++
	if g.Cells[v][u] > g.PopMax {
		g.PopMax = g.Cells[v][u]
	}
}

// AnnotateBorder stamps the cone outline into the grid: for every distance
// band, the lateral cells at the cone's left and right extent at the band's
// outer edge are overwritten with the border sentinels. Must run only after
// binning has finalised all populations for the frame, since the overwrite is
// destructive.
func (g *Grid) AnnotateBorder() error {
	cfg := g.Config
	for v := 0; v < cfg.DistanceDivs; v++ {
		zw := cfg.bandOuterEdge(v)
		extent := cfg.MaxLateral * zw / cfg.FarClip

		u, err := cfg.LateralBucket(extent)
		if err != nil {
			return fmt.Errorf("border annotation: %v", err)
		}
		g.Cells[v][u] = CellRightBorder

		u, err = cfg.LateralBucket(-extent)
		if err != nil {
			return fmt.Errorf("border annotation: %v", err)
		}
		g.Cells[v][u] = CellLeftBorder
	}
	return nil
}
