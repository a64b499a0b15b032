// Command gen-dlog generates sample .dlog recordings for testing replay.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/banshee-data/kinradar/internal/depth"
	"github.com/banshee-data/kinradar/internal/source"
)

func main() {
	output := flag.String("o", "sample.dlog", "output path")
	frames := flag.Int("n", 100, "number of frames")
	fps := flag.Float64("fps", 30, "recorded frame rate")
	scene := flag.String("scene", "orbit", "scene to generate (wall, orbit, empty)")
	flag.Parse()

	file, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *output, err)
	}
	defer file.Close()

	rec := source.NewRecorder(file)
	defer rec.Close()

	gen := source.NewSyntheticSource(source.SyntheticScene(*scene))
	interval := time.Duration(float64(time.Second) / *fps)
	start := time.Now()

	frame := depth.NewFrame()
	for i := 0; i < *frames; i++ {
		gen.Generate(frame, i)
		frame.Sequence = uint32(i)
		frame.Timestamp = start.Add(time.Duration(i) * interval)
		if err := rec.WriteFrame(frame); err != nil {
			log.Fatalf("failed to write frame %d: %v", i, err)
		}
		if (i+1)%10 == 0 {
			log.Printf("%d/%d frames", i+1, *frames)
		}
	}
	log.Printf("✓ Created: %s", *output)
}
