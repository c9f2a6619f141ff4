package domain

import (
	"time"

	"courier-dispatch/internal/geo"
)

// Recipient holds optional delivery recipient metadata.
type Recipient struct {
	Name    *string
	Phone   *string
	Comment *string
}

// Order is a delivery request moving through pending -> assigned -> delivered.
type Order struct {
	ID          int64
	ExternalID  *string
	Address     string
	Destination *geo.Point
	Status      OrderStatus
	CourierID   *int64
	CreatedAt   time.Time
	AssignedAt  *time.Time
	DeliveredAt *time.Time
	Recipient   Recipient
	Price       *float64
}

// NewOrder carries the data needed to create an order.
type NewOrder struct {
	ExternalID  *string
	Address     string
	Destination *geo.Point
	Recipient   Recipient
	Price       *float64
}

// AssignResult - result of binding an order to a courier.
type AssignResult struct {
	OrderID    int64
	CourierID  int64
	AssignedAt time.Time
}

// CompleteResult - result of a delivered order.
type CompleteResult struct {
	OrderID         int64
	CourierID       int64
	DeliveredAt     time.Time
	CompletedOrders int
}
