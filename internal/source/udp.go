package source

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/banshee-data/kinradar/internal/monitoring"
)

// UDPConfig configures the live sensor-bridge listener.
type UDPConfig struct {
	Address     string        // listen address, e.g. ":7411"
	RcvBuf      int           // socket receive buffer, bytes (0: leave default)
	LogInterval time.Duration // stats log cadence (0: no periodic log)
}

// listenStats tracks receive counters with thread-safe operations. The
// receive loop writes them; the periodic stats logger reads them from its
// own goroutine.
type listenStats struct {
	mu       sync.Mutex
	packets  int64
	rejected int64
	frames   int64
	dropped  int64
}

func (ls *listenStats) addPacket() {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.packets++
}

func (ls *listenStats) addRejected() {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.rejected++
}

// setFrames copies the assembler's frame counters, which only the receive
// loop may touch directly.
func (ls *listenStats) setFrames(complete, dropped int) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.frames = int64(complete)
	ls.dropped = int64(dropped)
}

func (ls *listenStats) snapshot() (packets, rejected, frames, dropped int64) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.packets, ls.rejected, ls.frames, ls.dropped
}

// UDPSource receives bridge packets and assembles them into frames.
type UDPSource struct {
	cfg       UDPConfig
	assembler *FrameAssembler
	stats     listenStats
}

// NewUDPSource creates a listener for the given config.
func NewUDPSource(cfg UDPConfig) *UDPSource {
	return &UDPSource{cfg: cfg, assembler: NewFrameAssembler()}
}

// Run listens until the context is cancelled. Read deadlines keep the loop
// responsive to cancellation; frames are delivered synchronously from the
// receive loop, so the handler's processing time bounds the ingest rate.
func (s *UDPSource) Run(ctx context.Context, handler FrameHandler) error {
	addr, err := net.ResolveUDPAddr("udp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %v", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP: %v", err)
	}
	defer conn.Close()

	if s.cfg.RcvBuf > 0 {
		if err := conn.SetReadBuffer(s.cfg.RcvBuf); err != nil {
			monitoring.Logf("failed to set UDP receive buffer to %d bytes: %v", s.cfg.RcvBuf, err)
		}
	}
	monitoring.Logf("listening for depth packets on %s", s.cfg.Address)

	if s.cfg.LogInterval > 0 {
		go s.logStats(ctx)
	}

	buf := make([]byte, PacketSize+1)
	var pkt RowPacket
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(time.Second)); err != nil {
			return fmt.Errorf("setting read deadline: %v", err)
		}
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			monitoring.Logf("error reading UDP packet: %v", err)
			continue
		}

		s.stats.addPacket()
		if err := ParseRowPacket(buf[:n], &pkt); err != nil {
			s.stats.addRejected()
			monitoring.Logf("rejected packet: %v", err)
			continue
		}

		frame := s.assembler.Add(&pkt)
		s.stats.setFrames(s.assembler.CompleteFrames, s.assembler.DroppedFrames)
		if frame != nil {
			if err := handler(frame); err != nil {
				return err
			}
		}
	}
}

func (s *UDPSource) logStats(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.LogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			packets, rejected, frames, dropped := s.stats.snapshot()
			monitoring.Logf("udp: %d packets (%d rejected), %d frames complete, %d dropped",
				packets, rejected, frames, dropped)
		}
	}
}
