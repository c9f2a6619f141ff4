package broadcast

import (
	"context"

	"courier-dispatch/internal/domain"
)

// Conn is a message-oriented bidirectional stream such as a websocket.
// WriteJSON is only ever called from one goroutine at a time.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// SnapshotSource reads the current positions of all couriers with a known location.
type SnapshotSource interface {
	ReadAll(ctx context.Context) ([]domain.CourierPositionView, error)
}

// PositionSink applies a position report coming from a courier stream.
type PositionSink interface {
	UpdateCourierPosition(ctx context.Context, courierID int64, lat, lon float64) error
}

// Relay propagates change signals between service instances.
type Relay interface {
	Publish(ctx context.Context) error
	// Subscribe blocks, calling onSignal for every received signal, until ctx is done.
	Subscribe(ctx context.Context, onSignal func()) error
}
