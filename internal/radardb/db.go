// Package radardb persists capture-session statistics to sqlite: one row per
// session and one row per processed frame. Recordings are small (a few ints
// per frame) and exist for tuning clip planes and row bands after the fact.
package radardb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/kinradar/internal/session"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the stats database at path.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id          TEXT PRIMARY KEY,
			started_unix_nanos  BIGINT,
			display_mode        TEXT,
			band_top            INT,
			band_bottom         INT,
			near_clip           DOUBLE,
			far_clip            DOUBLE,
			h_lateral_divs      INT,
			h_distance_divs     INT,
			v_lateral_divs      INT,
			v_distance_divs     INT
		);
		CREATE TABLE IF NOT EXISTS frames (
			session_id          TEXT,
			sequence            BIGINT,
			captured_unix_nanos BIGINT,
			xpopmax             INT,
			ypopmax             INT,
			out_of_range        INT,
			pixels_considered   INT,
			alert               INT,
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
		CREATE INDEX IF NOT EXISTS idx_frames_session ON frames(session_id, sequence);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// RecordSession inserts a session row and returns its generated id.
func (db *DB) RecordSession(start time.Time, cfg session.Config) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO sessions (
			session_id, started_unix_nanos, display_mode, band_top, band_bottom,
			near_clip, far_clip, h_lateral_divs, h_distance_divs, v_lateral_divs, v_distance_divs
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, start.UnixNano(), cfg.Mode.String(), cfg.Band.Top, cfg.Band.Bottom,
		cfg.Horizontal.NearClip, cfg.Horizontal.FarClip,
		cfg.Horizontal.LateralDivs, cfg.Horizontal.DistanceDivs,
		cfg.Vertical.LateralDivs, cfg.Vertical.DistanceDivs)
	if err != nil {
		return "", fmt.Errorf("failed to record session: %v", err)
	}
	return id, nil
}

// RecordFrame appends one frame's statistics.
func (db *DB) RecordFrame(sessionID string, s session.FrameStats) error {
	alert := 0
	if s.Alert {
		alert = 1
	}
	_, err := db.Exec(`INSERT INTO frames (
			session_id, sequence, captured_unix_nanos, xpopmax, ypopmax,
			out_of_range, pixels_considered, alert
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, s.Sequence, s.Timestamp.UnixNano(),
		s.HorizontalPopMax, s.VerticalPopMax,
		s.OutOfRange, s.PixelsConsidered, alert)
	if err != nil {
		return fmt.Errorf("failed to record frame: %v", err)
	}
	return nil
}

// SessionSummary aggregates a recorded session.
type SessionSummary struct {
	SessionID     string
	Frames        int
	AlertFrames   int
	MaxPopulation int
	AvgOutOfRange float64 // mean out-of-range ratio, 0..1
}

// Summarise computes the roll-up for one session.
func (db *DB) Summarise(sessionID string) (SessionSummary, error) {
	row := db.QueryRow(`SELECT
			COUNT(*),
			COALESCE(SUM(alert), 0),
			COALESCE(MAX(CASE WHEN xpopmax > ypopmax THEN xpopmax ELSE ypopmax END), 0),
			COALESCE(AVG(CAST(out_of_range AS DOUBLE) / pixels_considered), 0)
		FROM frames WHERE session_id = ?`, sessionID)

	s := SessionSummary{SessionID: sessionID}
	if err := row.Scan(&s.Frames, &s.AlertFrames, &s.MaxPopulation, &s.AvgOutOfRange); err != nil {
		return s, fmt.Errorf("failed to summarise session %s: %v", sessionID, err)
	}
	return s, nil
}

// RecentFrames returns up to limit of the session's most recent frame stats,
// newest first.
func (db *DB) RecentFrames(sessionID string, limit int) ([]session.FrameStats, error) {
	rows, err := db.Query(`SELECT sequence, captured_unix_nanos, xpopmax, ypopmax,
			out_of_range, pixels_considered, alert
		FROM frames WHERE session_id = ? ORDER BY sequence DESC LIMIT ?`,
		sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []session.FrameStats
	for rows.Next() {
		var s session.FrameStats
		var nanos int64
		var alert int
		if err := rows.Scan(&s.Sequence, &nanos, &s.HorizontalPopMax, &s.VerticalPopMax,
			&s.OutOfRange, &s.PixelsConsidered, &alert); err != nil {
			return nil, err
		}
		s.Timestamp = time.Unix(0, nanos)
		s.Alert = alert != 0
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
