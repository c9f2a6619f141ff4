package handlers

import (
	"time"

	"courier-dispatch/internal/domain"
)

type courierDTO struct {
	ID              int64                `json:"id"`
	Name            string               `json:"name"`
	Status          domain.CourierStatus `json:"status"`
	Latitude        *float64             `json:"latitude"`
	Longitude       *float64             `json:"longitude"`
	CurrentOrderID  *int64               `json:"current_order_id"`
	CompletedOrders int                  `json:"completed_orders"`
	LastActive      *time.Time           `json:"last_active,omitempty"`
}

type createCourierRequest struct {
	Name   string               `json:"name"`
	Status domain.CourierStatus `json:"status"`
}

type updateCourierRequest struct {
	Name   *string               `json:"name,omitempty"`
	Status *domain.CourierStatus `json:"status,omitempty"`
}

// replaceCourierRequest is the PUT body; both fields are required.
type replaceCourierRequest struct {
	Name   *string               `json:"name"`
	Status *domain.CourierStatus `json:"status"`
}

type statusRequest struct {
	Status domain.CourierStatus `json:"status"`
}

type createOrderRequest struct {
	ExternalID     *string  `json:"external_id,omitempty"`
	Address        string   `json:"address"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	RecipientName  *string  `json:"recipient_name,omitempty"`
	RecipientPhone *string  `json:"recipient_phone,omitempty"`
	Comment        *string  `json:"comment,omitempty"`
	Price          *float64 `json:"price,omitempty"`
}

type orderDTO struct {
	ID             int64              `json:"id"`
	ExternalID     *string            `json:"external_id,omitempty"`
	Address        string             `json:"address"`
	Latitude       *float64           `json:"latitude"`
	Longitude      *float64           `json:"longitude"`
	Status         domain.OrderStatus `json:"status"`
	CourierID      *int64             `json:"courier_id"`
	RecipientName  *string            `json:"recipient_name,omitempty"`
	RecipientPhone *string            `json:"recipient_phone,omitempty"`
	Comment        *string            `json:"comment,omitempty"`
	Price          *float64           `json:"price,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	AssignedAt     *time.Time         `json:"assigned_at,omitempty"`
	DeliveredAt    *time.Time         `json:"delivered_at,omitempty"`
}

type assignResponse struct {
	OrderID    int64     `json:"order_id"`
	CourierID  int64     `json:"courier_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

type completeResponse struct {
	OrderID         int64     `json:"order_id"`
	CourierID       int64     `json:"courier_id"`
	DeliveredAt     time.Time `json:"delivered_at"`
	CompletedOrders int       `json:"completed_orders"`
}

type positionRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type positionDTO struct {
	CourierID  int64     `json:"courier_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CapturedAt time.Time `json:"captured_at"`
}
