package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/kinradar/internal/depth"
	"github.com/banshee-data/kinradar/internal/indicator"
	"github.com/banshee-data/kinradar/internal/monitoring"
	"github.com/banshee-data/kinradar/internal/radardb"
	"github.com/banshee-data/kinradar/internal/session"
	"github.com/banshee-data/kinradar/internal/source"
	"github.com/banshee-data/kinradar/internal/term"
	"github.com/banshee-data/kinradar/internal/version"
)

var (
	// Grid geometry. The two views share their cross-axis divisions: the
	// overhead view's columns are the side view's rows and vice versa, so
	// -g and -G each set one axis on both grids.
	gridLateral  = flag.Int("g", 65, "Horizontal grid divisions (overhead columns, side rows)")
	gridDistance = flag.Int("G", 32, "Vertical grid divisions (overhead rows, side columns)")
	bandTop      = flag.Int("y", 0, "Top of active area in screen pixels (inclusive)")
	bandBottom   = flag.Int("Y", depth.FrameHeight, "Bottom of active area in screen pixels (exclusive)")
	nearClip     = flag.Float64("z", 0, "Near clipping plane in meters")
	farClip      = flag.Float64("Z", 6, "Far clipping plane in meters")
	horizOnly    = flag.Bool("horizontal", false, "Show the overhead view only")
	vertOnly     = flag.Bool("vertical", false, "Show the side view only")

	// Frame sources, mutually exclusive.
	listenAddr  = flag.String("listen", ":7411", "UDP listen address for the sensor bridge")
	replayPath  = flag.String("replay", "", "Replay a .dlog recording instead of listening")
	replaySpeed = flag.Float64("speed", 1, "Replay speed multiplier (0 = as fast as possible)")
	replayLoop  = flag.Bool("loop", false, "Loop the replayed recording")
	pcapPath    = flag.String("pcap", "", "Replay bridge packets from a pcap capture")
	pcapPort    = flag.Int("pcap-port", 7411, "UDP port to filter in the pcap capture")
	scene       = flag.String("scene", "", "Generate a synthetic scene (wall, orbit, empty)")

	// Collaborators.
	recordPath = flag.String("record", "", "Record received frames to a .dlog file")
	statsPath  = flag.String("stats", "", "Record per-frame stats to a sqlite database")
	ledPort    = flag.String("led", "", "Serial port for the LED alert indicator")
	logPath    = flag.String("log", "", "Append logs to a file instead of stderr")

	showVersion = flag.Bool("version", false, "Print version and exit")
)

// pickSource selects the frame source from the mutually exclusive flags.
func pickSource() (source.Source, error) {
	n := 0
	for _, set := range []bool{*replayPath != "", *pcapPath != "", *scene != ""} {
		if set {
			n++
		}
	}
	if n > 1 {
		return nil, fmt.Errorf("-replay, -pcap and -scene are mutually exclusive")
	}
	switch {
	case *replayPath != "":
		return &source.ReplaySource{Path: *replayPath, Speed: *replaySpeed, Loop: *replayLoop}, nil
	case *pcapPath != "":
		return pcapSource{path: *pcapPath, port: *pcapPort}, nil
	case *scene != "":
		src := source.NewSyntheticSource(source.SyntheticScene(*scene))
		switch src.Scene {
		case source.SceneWall, source.SceneOrbit, source.SceneEmpty:
		default:
			return nil, fmt.Errorf("unknown scene %q", *scene)
		}
		return src, nil
	default:
		return source.NewUDPSource(source.UDPConfig{
			Address:     *listenAddr,
			LogInterval: time.Minute,
		}), nil
	}
}

// pcapSource adapts the build-tagged pcap reader to the Source interface.
type pcapSource struct {
	path string
	port int
}

func (p pcapSource) Run(ctx context.Context, handler source.FrameHandler) error {
	return source.RunPcap(ctx, p.path, p.port, handler)
}

// displayRows returns the height of the rendered display in terminal rows.
// The side view renders transposed, so its height is its lateral division
// count, not its distance division count.
func displayRows(cfg session.Config) int {
	rows := 0
	if cfg.Mode != session.ShowVertical {
		rows = cfg.Horizontal.DistanceDivs
	}
	if cfg.Mode != session.ShowHorizontal && cfg.Vertical.LateralDivs > rows {
		rows = cfg.Vertical.LateralDivs
	}
	return rows
}

func run() error {
	cfg := session.DefaultConfig()
	cfg.Horizontal.LateralDivs = *gridLateral
	cfg.Horizontal.DistanceDivs = *gridDistance
	cfg.Vertical.LateralDivs = *gridDistance
	cfg.Vertical.DistanceDivs = *gridLateral
	cfg.Horizontal.NearClip = *nearClip
	cfg.Vertical.NearClip = *nearClip
	cfg.Horizontal.FarClip = *farClip
	cfg.Vertical.FarClip = *farClip
	cfg.Band = depth.RowBand{Top: *bandTop, Bottom: *bandBottom}.Clamp()
	switch {
	case *horizOnly && *vertOnly:
		return fmt.Errorf("-horizontal and -vertical are mutually exclusive")
	case *horizOnly:
		cfg.Mode = session.ShowHorizontal
	case *vertOnly:
		cfg.Mode = session.ShowVertical
	}

	src, err := pickSource()
	if err != nil {
		return err
	}

	out := bufio.NewWriterSize(os.Stdout, 64*1024)
	sink := term.NewANSISink(out)

	sess, err := session.New(cfg, sink)
	if err != nil {
		return err
	}

	var led indicator.Indicator = indicator.Nop{}
	if *ledPort != "" {
		led, err = indicator.OpenSerialLED(*ledPort)
		if err != nil {
			return fmt.Errorf("opening LED indicator: %v", err)
		}
	}
	defer led.Close()
	sess.OnAlert = func(alert bool) {
		if err := led.Set(alert); err != nil {
			monitoring.Logf("failed to set LED indicator: %v", err)
		}
	}

	if *statsPath != "" {
		db, err := radardb.NewDB(*statsPath)
		if err != nil {
			return fmt.Errorf("opening stats database: %v", err)
		}
		defer db.Close()
		sessionID, err := db.RecordSession(time.Now(), sess.Config())
		if err != nil {
			return fmt.Errorf("recording session: %v", err)
		}
		monitoring.Logf("recording stats to %s as session %s", *statsPath, sessionID)
		sess.OnStats = func(s session.FrameStats) {
			if err := db.RecordFrame(sessionID, s); err != nil {
				monitoring.Logf("failed to record frame stats: %v", err)
			}
		}
	}

	handler := sess.HandleFrame
	if *recordPath != "" {
		file, err := os.Create(*recordPath)
		if err != nil {
			return fmt.Errorf("creating recording: %v", err)
		}
		defer file.Close()
		rec := source.NewRecorder(file)
		defer rec.Close()
		handler = func(f *depth.Frame) error {
			if err := rec.WriteFrame(f); err != nil {
				return fmt.Errorf("writing recording: %v", err)
			}
			return sess.HandleFrame(f)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Clear the screen once up front; each frame repaints in place from the
	// home position.
	sink.Home(true)

	// Leave the cursor below the display with attributes reset, whatever
	// state the last frame left the terminal in.
	defer func() {
		sink.Reset()
		sink.MoveTo(displayRows(sess.Config()) + 3)
		out.Flush()
	}()

	if err := src.Run(ctx, handler); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("kinradar %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *logPath != "" {
		file, err := os.OpenFile(*logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		defer file.Close()
		log.SetOutput(file)
	}

	if err := run(); err != nil {
		log.Fatalf("kinradar: %v", err)
	}
}
