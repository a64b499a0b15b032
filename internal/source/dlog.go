package source

import (
	"bufio"
	"compress/zlib"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/banshee-data/kinradar/internal/depth"
	"github.com/banshee-data/kinradar/internal/monitoring"
)

// .dlog recording format:
//
//	header: magic "KDLOG01\n", width uint16, height uint16 (little-endian)
//	records, repeated: sequence uint32, timestamp int64 (unix nanos),
//	  compressed length uint32, zlib-compressed row-major codes
//	  (width*height little-endian uint16 values)
var dlogMagic = [8]byte{'K', 'D', 'L', 'O', 'G', '0', '1', '\n'}

// Recorder writes frames to a .dlog stream.
type Recorder struct {
	w           *bufio.Writer
	headerDone  bool
	frameBuf    []byte
	compressBuf []byte
}

// NewRecorder wraps a writer; the header is emitted with the first frame.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{
		w:        bufio.NewWriter(w),
		frameBuf: make([]byte, depth.FramePixels*2),
	}
}

// WriteFrame appends one frame record.
func (r *Recorder) WriteFrame(f *depth.Frame) error {
	if !r.headerDone {
		if _, err := r.w.Write(dlogMagic[:]); err != nil {
			return err
		}
		var dims [4]byte
		binary.LittleEndian.PutUint16(dims[0:2], depth.FrameWidth)
		binary.LittleEndian.PutUint16(dims[2:4], depth.FrameHeight)
		if _, err := r.w.Write(dims[:]); err != nil {
			return err
		}
		r.headerDone = true
	}

	for i, code := range f.Codes {
		binary.LittleEndian.PutUint16(r.frameBuf[2*i:], code)
	}

	var compressed writeCounter
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(r.frameBuf); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	var hdr [16]byte
	binary.LittleEndian.PutUint32(hdr[0:4], f.Sequence)
	binary.LittleEndian.PutUint64(hdr[4:12], uint64(f.Timestamp.UnixNano()))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(len(compressed)))
	if _, err := r.w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := r.w.Write(compressed); err != nil {
		return err
	}
	return nil
}

// Close flushes buffered records.
func (r *Recorder) Close() error {
	return r.w.Flush()
}

// writeCounter accumulates compressed bytes in memory per record.
type writeCounter []byte

func (w *writeCounter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}

// ReplaySource replays a .dlog recording. Speed scales the recorded
// inter-frame gaps: 1 replays in real time, 2 at double speed, and 0 as fast
// as the handler can consume. With Loop set, the recording repeats until the
// context is cancelled.
type ReplaySource struct {
	Path  string
	Speed float64
	Loop  bool
}

// Run streams the recording through the handler.
func (s *ReplaySource) Run(ctx context.Context, handler FrameHandler) error {
	for {
		if err := s.replayOnce(ctx, handler); err != nil {
			return err
		}
		if !s.Loop {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (s *ReplaySource) replayOnce(ctx context.Context, handler FrameHandler) error {
	file, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("opening recording: %v", err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	if err := readDlogHeader(r); err != nil {
		return fmt.Errorf("%s: %v", s.Path, err)
	}

	frame := depth.NewFrame()
	frameBuf := make([]byte, depth.FramePixels*2)
	frames := 0
	var lastTS time.Time

	for {
		var hdr [16]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF {
				monitoring.Logf("replayed %d frames from %s", frames, s.Path)
				return nil
			}
			return fmt.Errorf("reading record header: %v", err)
		}
		frame.Sequence = binary.LittleEndian.Uint32(hdr[0:4])
		frame.Timestamp = time.Unix(0, int64(binary.LittleEndian.Uint64(hdr[4:12])))
		compLen := binary.LittleEndian.Uint32(hdr[12:16])

		zr, err := zlib.NewReader(io.LimitReader(r, int64(compLen)))
		if err != nil {
			return fmt.Errorf("frame %d: %v", frame.Sequence, err)
		}
		if _, err := io.ReadFull(zr, frameBuf); err != nil {
			zr.Close()
			return fmt.Errorf("frame %d: %v", frame.Sequence, err)
		}
		zr.Close()
		for i := range frame.Codes {
			frame.Codes[i] = binary.LittleEndian.Uint16(frameBuf[2*i:])
		}

		if s.Speed > 0 && !lastTS.IsZero() {
			gap := frame.Timestamp.Sub(lastTS)
			if gap > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Duration(float64(gap) / s.Speed)):
				}
			}
		}
		lastTS = frame.Timestamp

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := handler(frame); err != nil {
			return err
		}
		frames++
	}
}

func readDlogHeader(r io.Reader) error {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	if [8]byte(hdr[0:8]) != dlogMagic {
		return fmt.Errorf("not a depth recording (bad magic)")
	}
	w := binary.LittleEndian.Uint16(hdr[8:10])
	h := binary.LittleEndian.Uint16(hdr[10:12])
	if w != depth.FrameWidth || h != depth.FrameHeight {
		return fmt.Errorf("recording is %dx%d, want %dx%d", w, h, depth.FrameWidth, depth.FrameHeight)
	}
	return nil
}
