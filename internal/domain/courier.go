package domain

import (
	"time"

	"courier-dispatch/internal/geo"
)

type (
	// CourierStatus represents the availability status of a courier.
	CourierStatus string
	// OrderStatus represents the lifecycle status of an order.
	OrderStatus string
)

// Courier represents a delivery courier.
type Courier struct {
	ID              int64
	Name            string
	Status          CourierStatus
	Position        *geo.Point
	CurrentOrderID  *int64
	CompletedOrders int
	LastActive      *time.Time
}

// HasPosition reports whether a position was ever recorded.
func (c *Courier) HasPosition() bool {
	return c != nil && c.Position != nil
}

// PartialCourierUpdate carries optional fields to update a courier.
// A nil field means “do not change” that attribute.
type PartialCourierUpdate struct {
	ID     int64
	Name   *string
	Status *CourierStatus
}
