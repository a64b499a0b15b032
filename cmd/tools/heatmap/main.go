// Command heatmap renders one frame of a .dlog recording as a PNG heat map
// of the overhead occupancy grid.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/kinradar/internal/depth"
	"github.com/banshee-data/kinradar/internal/geom"
	"github.com/banshee-data/kinradar/internal/grid"
	"github.com/banshee-data/kinradar/internal/source"
)

var (
	input      = flag.String("i", "", "input .dlog recording")
	output     = flag.String("o", "heatmap.png", "output PNG path")
	frameIndex = flag.Int("frame", 0, "frame index to render")
	lateral    = flag.Int("g", 65, "lateral grid divisions")
	distance   = flag.Int("G", 32, "distance grid divisions")
	farClip    = flag.Float64("Z", 6, "far clipping plane in meters")
)

// errDone stops the replay once the requested frame has been captured.
var errDone = errors.New("done")

// gridXYZ adapts an occupancy grid to gonum's heat map data interface.
// X spans lateral meters left to right, Y distance meters near to far.
type gridXYZ struct {
	g *grid.Grid
}

func (d gridXYZ) Dims() (int, int) { return d.g.Config.LateralDivs, d.g.Config.DistanceDivs }

func (d gridXYZ) X(c int) float64 {
	cellWidth := 2 * d.g.Config.MaxLateral / float64(d.g.Config.LateralDivs)
	return -d.g.Config.MaxLateral + (float64(c)+0.5)*cellWidth
}

func (d gridXYZ) Y(r int) float64 {
	cellDepth := (d.g.Config.FarClip - d.g.Config.NearClip) / float64(d.g.Config.DistanceDivs)
	return d.g.Config.NearClip + (float64(r)+0.5)*cellDepth
}

func (d gridXYZ) Z(c, r int) float64 {
	v := d.g.Cells[r][c]
	if v < 0 {
		return 0
	}
	return float64(v)
}

func captureFrame(path string, index int) (*depth.Frame, error) {
	var captured *depth.Frame
	n := 0
	replay := &source.ReplaySource{Path: path, Speed: 0}
	err := replay.Run(context.Background(), func(f *depth.Frame) error {
		if n == index {
			captured = depth.NewFrame()
			copy(captured.Codes, f.Codes)
			captured.Timestamp = f.Timestamp
			captured.Sequence = f.Sequence
			return errDone
		}
		n++
		return nil
	})
	if err != nil && !errors.Is(err, errDone) {
		return nil, err
	}
	if captured == nil {
		return nil, fmt.Errorf("recording has only %d frames", n)
	}
	return captured, nil
}

func main() {
	flag.Parse()
	if *input == "" {
		log.Fatal("input recording is required (-i)")
	}

	frame, err := captureFrame(*input, *frameIndex)
	if err != nil {
		log.Fatalf("failed to read frame: %v", err)
	}

	lut := depth.NewRangeLUT()
	proj, err := geom.NewProjector(geom.DefaultCalibration())
	if err != nil {
		log.Fatalf("failed to build projector: %v", err)
	}
	hCfg := grid.Config{
		LateralDivs:  *lateral,
		DistanceDivs: *distance,
		FarClip:      *farClip,
		MaxLateral:   proj.MaxHorizontal(*farClip),
	}
	vCfg := grid.Config{
		LateralDivs:  *distance,
		DistanceDivs: *lateral,
		FarClip:      *farClip,
		MaxLateral:   proj.MaxVertical(*farClip),
	}

	binner, err := grid.NewBinner(lut, proj, hCfg, vCfg)
	if err != nil {
		log.Fatalf("failed to build binner: %v", err)
	}
	outOfRange, err := binner.Bin(frame, depth.FullBand())
	if err != nil {
		log.Fatalf("failed to bin frame: %v", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Frame %d overhead occupancy (out of range: %d)", frame.Sequence, outOfRange)
	p.X.Label.Text = "Lateral (m)"
	p.Y.Label.Text = "Distance (m)"

	pal := palette.Heat(12, 1)
	hm := plotter.NewHeatMap(gridXYZ{g: binner.Horizontal}, pal)
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, *output); err != nil {
		log.Fatalf("failed to save plot: %v", err)
	}
	log.Printf("✓ Created: %s (popmax %d)", *output, binner.Horizontal.PopMax)
}
