package source

import (
	"context"

	"github.com/banshee-data/kinradar/internal/depth"
)

// FrameHandler consumes one delivered frame. The frame is only valid for the
// duration of the call; handlers must not retain it.
type FrameHandler func(*depth.Frame) error

// Source delivers depth frames to a handler until the context is cancelled,
// the source is exhausted, or the handler returns an error. Delivery is
// strictly sequential: Run never invokes the handler concurrently.
type Source interface {
	Run(ctx context.Context, handler FrameHandler) error
}
