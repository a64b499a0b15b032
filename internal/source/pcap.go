//go:build pcap
// +build pcap

package source

import (
	"context"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/banshee-data/kinradar/internal/monitoring"
)

// RunPcap replays bridge packets out of a pcap capture, assembling them into
// frames exactly as the live UDP listener would. Frame timestamps come from
// the packets themselves, not the capture metadata, so replayed sessions
// reproduce the original timing fields. Only available when building with
// the 'pcap' tag.
func RunPcap(ctx context.Context, path string, udpPort int, handler FrameHandler) error {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return fmt.Errorf("failed to open pcap file %s: %w", path, err)
	}
	defer handle.Close()

	filter := fmt.Sprintf("udp port %d", udpPort)
	if err := handle.SetBPFFilter(filter); err != nil {
		return fmt.Errorf("failed to set BPF filter %q: %w", filter, err)
	}

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	assembler := NewFrameAssembler()
	packets, rejected := 0, 0
	var pkt RowPacket

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case packet := <-packetSource.Packets():
			if packet == nil {
				monitoring.Logf("pcap replay complete: %d packets (%d rejected), %d frames",
					packets, rejected, assembler.CompleteFrames)
				return nil
			}
			udpLayer, ok := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
			if !ok || len(udpLayer.Payload) == 0 {
				continue
			}
			packets++
			if err := ParseRowPacket(udpLayer.Payload, &pkt); err != nil {
				rejected++
				continue
			}
			if frame := assembler.Add(&pkt); frame != nil {
				if err := handler(frame); err != nil {
					return err
				}
			}
		}
	}
}
