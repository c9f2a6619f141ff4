package broadcast

import (
	"time"

	"courier-dispatch/internal/domain"
)

// MessageTypeSnapshot tags outbound snapshot frames.
const MessageTypeSnapshot = "snapshot"

// Snapshot is the frame pushed to observers. It always carries the full state.
type Snapshot struct {
	Type     string                       `json:"type"`
	Couriers []domain.CourierPositionView `json:"couriers"`
	At       time.Time                    `json:"at"`
}

// positionReport is the frame a courier sends with its current location.
type positionReport struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}
