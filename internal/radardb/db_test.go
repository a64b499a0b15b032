package radardb

import (
	"testing"
	"time"

	"github.com/banshee-data/kinradar/internal/session"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(t.TempDir() + "/stats.db")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return db
}

func TestRecordAndSummarise(t *testing.T) {
	db := openTestDB(t)

	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	id, err := db.RecordSession(start, session.DefaultConfig())
	if err != nil {
		t.Fatalf("RecordSession: %v", err)
	}
	if id == "" {
		t.Fatal("empty session id")
	}

	stats := []session.FrameStats{
		{Sequence: 0, Timestamp: start, HorizontalPopMax: 40, VerticalPopMax: 25, OutOfRange: 1000, PixelsConsidered: 307200},
		{Sequence: 1, Timestamp: start.Add(33 * time.Millisecond), HorizontalPopMax: 55, VerticalPopMax: 30, OutOfRange: 200000, PixelsConsidered: 307200, Alert: true},
	}
	for _, s := range stats {
		if err := db.RecordFrame(id, s); err != nil {
			t.Fatalf("RecordFrame %d: %v", s.Sequence, err)
		}
	}

	sum, err := db.Summarise(id)
	if err != nil {
		t.Fatalf("Summarise: %v", err)
	}
	if sum.Frames != 2 {
		t.Errorf("frames = %d, want 2", sum.Frames)
	}
	if sum.AlertFrames != 1 {
		t.Errorf("alert frames = %d, want 1", sum.AlertFrames)
	}
	if sum.MaxPopulation != 55 {
		t.Errorf("max population = %d, want 55", sum.MaxPopulation)
	}
	wantAvg := (1000.0/307200 + 200000.0/307200) / 2
	if diff := sum.AvgOutOfRange - wantAvg; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("avg out of range = %f, want %f", sum.AvgOutOfRange, wantAvg)
	}
}

func TestRecentFrames(t *testing.T) {
	db := openTestDB(t)

	id, err := db.RecordSession(time.Now(), session.DefaultConfig())
	if err != nil {
		t.Fatalf("RecordSession: %v", err)
	}
	base := time.Unix(1700000000, 0)
	for i := 0; i < 10; i++ {
		err := db.RecordFrame(id, session.FrameStats{
			Sequence:         uint32(i),
			Timestamp:        base.Add(time.Duration(i) * time.Second),
			HorizontalPopMax: int32(i),
			PixelsConsidered: 307200,
		})
		if err != nil {
			t.Fatalf("RecordFrame: %v", err)
		}
	}

	recent, err := db.RecentFrames(id, 3)
	if err != nil {
		t.Fatalf("RecentFrames: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d frames, want 3", len(recent))
	}
	if recent[0].Sequence != 9 || recent[2].Sequence != 7 {
		t.Errorf("sequences = %d..%d, want newest first 9..7", recent[0].Sequence, recent[2].Sequence)
	}
	if !recent[0].Timestamp.Equal(base.Add(9 * time.Second)) {
		t.Errorf("timestamp roundtrip failed: %v", recent[0].Timestamp)
	}

	// Frames from a different session are not returned.
	other, err := db.RecordSession(time.Now(), session.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if frames, err := db.RecentFrames(other, 5); err != nil || len(frames) != 0 {
		t.Errorf("other session frames = %d (err %v), want none", len(frames), err)
	}
}
