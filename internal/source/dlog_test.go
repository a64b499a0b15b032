package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/kinradar/internal/depth"
)

func writeRecording(t *testing.T, frames int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.dlog")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec := NewRecorder(file)
	base := time.Unix(1700000000, 0)
	for i := 0; i < frames; i++ {
		f := testFrame(uint32(i))
		f.Timestamp = base.Add(time.Duration(i) * 33 * time.Millisecond)
		if err := rec.WriteFrame(f); err != nil {
			t.Fatalf("WriteFrame %d: %v", i, err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}
	return path
}

func TestRecordReplayRoundtrip(t *testing.T) {
	muteLogs(t)
	path := writeRecording(t, 5)

	src := &ReplaySource{Path: path} // Speed 0: unpaced
	var seqs []uint32
	var stamps []time.Time
	err := src.Run(context.Background(), func(f *depth.Frame) error {
		seqs = append(seqs, f.Sequence)
		stamps = append(stamps, f.Timestamp)
		// Spot-check the payload survived compression.
		want := testFrame(f.Sequence)
		for _, i := range []int{0, 1000, depth.FramePixels - 1} {
			if f.Codes[i] != want.Codes[i] {
				t.Errorf("frame %d code %d = %d, want %d", f.Sequence, i, f.Codes[i], want.Codes[i])
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(seqs) != 5 {
		t.Fatalf("replayed %d frames, want 5", len(seqs))
	}
	for i, seq := range seqs {
		if seq != uint32(i) {
			t.Errorf("frame %d has sequence %d", i, seq)
		}
	}
	if gap := stamps[1].Sub(stamps[0]); gap != 33*time.Millisecond {
		t.Errorf("recorded gap = %v, want 33ms", gap)
	}
}

func TestReplayStopsOnHandlerError(t *testing.T) {
	muteLogs(t)
	path := writeRecording(t, 5)

	src := &ReplaySource{Path: path}
	calls := 0
	err := src.Run(context.Background(), func(f *depth.Frame) error {
		calls++
		if calls == 2 {
			return os.ErrClosed
		}
		return nil
	})
	if err != os.ErrClosed {
		t.Fatalf("err = %v, want handler error", err)
	}
	if calls != 2 {
		t.Errorf("handler called %d times, want 2", calls)
	}
}

func TestReplayRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.dlog")
	if err := os.WriteFile(path, []byte("not a recording at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := &ReplaySource{Path: path}
	if err := src.Run(context.Background(), func(*depth.Frame) error { return nil }); err == nil {
		t.Fatal("expected error for corrupt header")
	}
}

func TestSyntheticScenes(t *testing.T) {
	wall := NewSyntheticSource(SceneWall)
	f := depth.NewFrame()
	wall.Generate(f, 0)
	lut := depth.NewRangeLUT()
	z := lut.DistanceAt(f.At(320, 240))
	if z > wall.WallDistance || z < wall.WallDistance-0.1 {
		t.Errorf("wall distance = %f, want just under %f", z, wall.WallDistance)
	}

	empty := NewSyntheticSource(SceneEmpty)
	empty.Generate(f, 0)
	for i := range f.Codes {
		if f.Codes[i] != depth.CodeOutOfRange {
			t.Fatalf("empty scene pixel %d = %d", i, f.Codes[i])
		}
	}

	// Orbit frames are deterministic per index.
	orbit := NewSyntheticSource(SceneOrbit)
	a, b := depth.NewFrame(), depth.NewFrame()
	orbit.Generate(a, 17)
	orbit.Generate(b, 17)
	for i := range a.Codes {
		if a.Codes[i] != b.Codes[i] {
			t.Fatal("orbit scene not deterministic")
		}
	}
}

func TestSyntheticRunDeliversFrameCount(t *testing.T) {
	src := NewSyntheticSource(SceneWall)
	src.FrameRate = 0 // unpaced
	src.FrameCount = 3

	frames := 0
	err := src.Run(context.Background(), func(f *depth.Frame) error {
		frames++
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if frames != 3 {
		t.Errorf("delivered %d frames, want 3", frames)
	}
}
