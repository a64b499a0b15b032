package session

import (
	"fmt"
	"time"

	"github.com/banshee-data/kinradar/internal/depth"
	"github.com/banshee-data/kinradar/internal/geom"
	"github.com/banshee-data/kinradar/internal/grid"
	"github.com/banshee-data/kinradar/internal/term"
)

// DisplayMode selects which projection(s) the renderer emits.
type DisplayMode int

const (
	ShowBoth DisplayMode = iota
	ShowHorizontal
	ShowVertical
)

func (m DisplayMode) String() string {
	switch m {
	case ShowHorizontal:
		return "horizontal"
	case ShowVertical:
		return "vertical"
	default:
		return "both"
	}
}

// alertThresholdPercent is the out-of-range ratio above which the indicator
// raises its alert (LED goes red on the device collaborator).
const alertThresholdPercent = 35

// Config fixes a session's grid geometry, active row band, calibration and
// display mode. Set once before the first frame; immutable afterwards.
type Config struct {
	Horizontal  grid.Config
	Vertical    grid.Config
	Band        depth.RowBand
	Mode        DisplayMode
	Calibration geom.Calibration
}

// DefaultConfig mirrors the stock radar layout: a wide, shallow overhead
// view next to a tall transposed side view, clipping at six meters. Lateral
// extents are left at zero and derived from the calibration in New.
func DefaultConfig() Config {
	return Config{
		Horizontal:  grid.Config{LateralDivs: 65, DistanceDivs: 32, NearClip: 0, FarClip: 6},
		Vertical:    grid.Config{LateralDivs: 32, DistanceDivs: 80, NearClip: 0, FarClip: 6},
		Band:        depth.FullBand(),
		Mode:        ShowBoth,
		Calibration: geom.DefaultCalibration(),
	}
}

// FrameStats summarises one processed frame for logging and persistence.
type FrameStats struct {
	Sequence         uint32
	Timestamp        time.Time
	HorizontalPopMax int32
	VerticalPopMax   int32
	OutOfRange       int
	PixelsConsidered int
	Alert            bool
}

// Session drives the full tick for each delivered frame and owns all
// per-run state: grids, frame counter, indicator flag, and the renderer's
// attribute cache. Two sessions never share mutable state.
type Session struct {
	cfg      Config
	lut      *depth.RangeLUT
	binner   *grid.Binner
	renderer *term.Renderer
	sink     term.Sink

	frame uint32
	alert bool

	// OnAlert, if set, is invoked whenever the out-of-range alert flag
	// changes. The device-control collaborator uses it to pick LED state.
	OnAlert func(bool)
	// OnStats, if set, receives a summary of every processed frame.
	OnStats func(FrameStats)
}

// New validates the configuration, derives unset lateral extents from the
// calibration, and allocates the session's grids.
func New(cfg Config, sink term.Sink) (*Session, error) {
	if err := cfg.Band.Validate(); err != nil {
		return nil, fmt.Errorf("invalid row band: %v", err)
	}

	proj, err := geom.NewProjector(cfg.Calibration)
	if err != nil {
		return nil, err
	}
	if cfg.Horizontal.MaxLateral == 0 {
		cfg.Horizontal.MaxLateral = proj.MaxHorizontal(cfg.Horizontal.FarClip)
	}
	if cfg.Vertical.MaxLateral == 0 {
		cfg.Vertical.MaxLateral = proj.MaxVertical(cfg.Vertical.FarClip)
	}

	lut := depth.NewRangeLUT()
	binner, err := grid.NewBinner(lut, proj, cfg.Horizontal, cfg.Vertical)
	if err != nil {
		return nil, err
	}

	return &Session{
		cfg:      cfg,
		lut:      lut,
		binner:   binner,
		renderer: term.NewRenderer(sink),
		sink:     sink,
	}, nil
}

// Config returns the session's effective configuration, including derived
// lateral extents.
func (s *Session) Config() Config { return s.cfg }

// Alert reports the current out-of-range indicator state.
func (s *Session) Alert() bool { return s.alert }

// FrameCount returns the number of frames processed so far.
func (s *Session) FrameCount() uint32 { return s.frame }

// HandleFrame runs one complete tick: clear, bin, annotate, render, update
// the indicator. It is synchronous; the frame source must not deliver the
// next frame until it returns. A returned error is fatal to the session (it
// indicates a grid-extent configuration mismatch) and no further frames may
// be processed.
func (s *Session) HandleFrame(f *depth.Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}

	s.binner.Clear()

	outOfRange, err := s.binner.Bin(f, s.cfg.Band)
	if err != nil {
		return fmt.Errorf("binning frame %d: %v", s.frame, err)
	}

	if err := s.binner.Horizontal.AnnotateBorder(); err != nil {
		return err
	}
	if err := s.binner.Vertical.AnnotateBorder(); err != nil {
		return err
	}

	considered := s.cfg.Band.Rows() * depth.FrameWidth
	if err := s.render(f, outOfRange, considered); err != nil {
		return fmt.Errorf("rendering frame %d: %v", s.frame, err)
	}

	alert := outOfRange*100 > considered*alertThresholdPercent
	if alert != s.alert {
		s.alert = alert
		if s.OnAlert != nil {
			s.OnAlert(alert)
		}
	}

	if s.OnStats != nil {
		s.OnStats(FrameStats{
			Sequence:         s.frame,
			Timestamp:        f.Timestamp,
			HorizontalPopMax: s.binner.Horizontal.PopMax,
			VerticalPopMax:   s.binner.Vertical.PopMax,
			OutOfRange:       outOfRange,
			PixelsConsidered: considered,
			Alert:            alert,
		})
	}

	s.frame++
	return nil
}

// render emits the frame header and the grid(s) selected by the display
// mode. The horizontal view always renders before the vertical one so the
// two are never visually interleaved within a frame.
func (s *Session) render(f *depth.Frame, outOfRange, considered int) error {
	if err := s.sink.Home(false); err != nil {
		return err
	}
	if err := s.sink.ClearLine(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.sink, "time: %s frame: %d top: %d bottom: %d\n",
		f.Timestamp.Format("15:04:05.000"), s.frame, s.cfg.Band.Top, s.cfg.Band.Bottom); err != nil {
		return err
	}
	if err := s.sink.ClearLine(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.sink, "xpopmax: %d ypopmax: %d out: %d%%\n",
		s.binner.Horizontal.PopMax, s.binner.Vertical.PopMax, outOfRange*100/considered); err != nil {
		return err
	}

	if err := s.renderer.Reset(); err != nil {
		return err
	}

	if s.cfg.Mode == ShowBoth || s.cfg.Mode == ShowHorizontal {
		clear := s.cfg.Mode == ShowHorizontal
		if err := s.renderer.RenderGrid(s.binner.Horizontal, term.Origin{Row: 2, Col: -1}, false, clear); err != nil {
			return err
		}
	}
	if s.cfg.Mode == ShowBoth || s.cfg.Mode == ShowVertical {
		col := s.cfg.Horizontal.LateralDivs + 1
		if s.cfg.Mode == ShowVertical {
			col = -1
		}
		// Transposed so the side view's distance axis runs horizontally.
		if err := s.renderer.RenderGrid(s.binner.Vertical, term.Origin{Row: 2, Col: col}, true, true); err != nil {
			return err
		}
	}

	if err := s.renderer.Reset(); err != nil {
		return err
	}
	if err := s.sink.ClearLine(); err != nil {
		return err
	}

	if fl, ok := s.sink.(interface{ Flush() error }); ok {
		return fl.Flush()
	}
	return nil
}
