package source

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/banshee-data/kinradar/internal/depth"
	"github.com/banshee-data/kinradar/internal/monitoring"
)

// Sensor bridge packet format: the bridge splits each 640x480 frame into one
// UDP packet per image row, so a full frame is 480 packets.
//
// Layout (little-endian):
//
//	offset 0  magic     uint16  0x4B52
//	offset 2  row       uint16  image row index, 0..479
//	offset 4  sequence  uint32  frame sequence, shared by all rows of a frame
//	offset 8  timestamp int64   capture time, unix nanoseconds
//	offset 16 codes     640 x uint16  11-bit range codes for the row
const (
	PacketMagic  = 0x4B52
	PacketHeader = 16
	PacketSize   = PacketHeader + depth.FrameWidth*2
)

// RowPacket is one parsed bridge packet.
type RowPacket struct {
	Row       int
	Sequence  uint32
	Timestamp time.Time
	Codes     [depth.FrameWidth]uint16
}

// ParseRowPacket validates and decodes a bridge packet. Any malformed field
// rejects the whole packet; a dropped row is recoverable, a corrupt one is
// not worth binning.
func ParseRowPacket(buf []byte, pkt *RowPacket) error {
	if len(buf) != PacketSize {
		return fmt.Errorf("packet size %d, want %d", len(buf), PacketSize)
	}
	if magic := binary.LittleEndian.Uint16(buf[0:2]); magic != PacketMagic {
		return fmt.Errorf("bad packet magic 0x%04x", magic)
	}
	row := int(binary.LittleEndian.Uint16(buf[2:4]))
	if row >= depth.FrameHeight {
		return fmt.Errorf("row index %d outside frame", row)
	}
	pkt.Row = row
	pkt.Sequence = binary.LittleEndian.Uint32(buf[4:8])
	pkt.Timestamp = time.Unix(0, int64(binary.LittleEndian.Uint64(buf[8:16])))

	for i := 0; i < depth.FrameWidth; i++ {
		code := binary.LittleEndian.Uint16(buf[PacketHeader+2*i:])
		if code > depth.CodeOutOfRange {
			return fmt.Errorf("row %d col %d: range code %d exceeds 11 bits", row, i, code)
		}
		pkt.Codes[i] = code
	}
	return nil
}

// EncodeRowPacket writes one row of a frame in bridge packet format.
// Used by the replay and generator tools.
func EncodeRowPacket(buf []byte, f *depth.Frame, row int) {
	binary.LittleEndian.PutUint16(buf[0:2], PacketMagic)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(row))
	binary.LittleEndian.PutUint32(buf[4:8], f.Sequence)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(f.Timestamp.UnixNano()))
	for i := 0; i < depth.FrameWidth; i++ {
		binary.LittleEndian.PutUint16(buf[PacketHeader+2*i:], f.At(i, row))
	}
}

// FrameAssembler accumulates row packets into complete frames. A frame
// completes when all of its rows have arrived; when the sequence advances
// with rows still missing, the partial frame is dropped and counted.
type FrameAssembler struct {
	frame    *depth.Frame
	rowsSeen []bool
	rowCount int
	active   bool

	CompleteFrames int
	DroppedFrames  int
}

// NewFrameAssembler returns an assembler with an empty current frame.
func NewFrameAssembler() *FrameAssembler {
	return &FrameAssembler{
		frame:    depth.NewFrame(),
		rowsSeen: make([]bool, depth.FrameHeight),
	}
}

func (a *FrameAssembler) reset(seq uint32, ts time.Time) {
	clear(a.rowsSeen)
	a.rowCount = 0
	a.active = true
	a.frame.Sequence = seq
	a.frame.Timestamp = ts
}

// Add ingests one packet. When the packet completes a frame, the frame is
// returned; it is only valid until the next Add call.
func (a *FrameAssembler) Add(pkt *RowPacket) *depth.Frame {
	if !a.active || pkt.Sequence != a.frame.Sequence {
		if a.active && a.rowCount > 0 {
			a.DroppedFrames++
			monitoring.Logf("dropped incomplete frame %d: %d/%d rows",
				a.frame.Sequence, a.rowCount, depth.FrameHeight)
		}
		a.reset(pkt.Sequence, pkt.Timestamp)
	}

	if !a.rowsSeen[pkt.Row] {
		a.rowsSeen[pkt.Row] = true
		a.rowCount++
	}
	copy(a.frame.Codes[pkt.Row*depth.FrameWidth:(pkt.Row+1)*depth.FrameWidth], pkt.Codes[:])

	if a.rowCount == depth.FrameHeight {
		a.active = false
		a.CompleteFrames++
		return a.frame
	}
	return nil
}
