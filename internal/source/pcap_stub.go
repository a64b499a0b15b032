//go:build !pcap
// +build !pcap

package source

import (
	"context"
	"fmt"
)

// RunPcap is a stub when pcap support is disabled.
// Build with -tags=pcap to enable capture replay.
func RunPcap(ctx context.Context, path string, udpPort int, handler FrameHandler) error {
	return fmt.Errorf("pcap support not enabled: rebuild with -tags=pcap to replay captures")
}
