package kafka

import (
	"strings"
	"time"

	"courier-dispatch/internal/service/orders"
)

// EventDTO is the wire shape of an order event.
type EventDTO struct {
	Event          string    `json:"event"`
	ExternalID     string    `json:"external_id"`
	OrderID        int64     `json:"order_id,omitempty"`
	Address        string    `json:"address,omitempty"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	RecipientName  *string   `json:"recipient_name,omitempty"`
	RecipientPhone *string   `json:"recipient_phone,omitempty"`
	Comment        *string   `json:"comment,omitempty"`
	Price          *float64  `json:"price,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// ToDomain converts EventDTO to orders.Event.
func ToDomain(dto EventDTO) orders.Event {
	return orders.Event{
		Kind:           strings.TrimSpace(dto.Event),
		ExternalID:     strings.TrimSpace(dto.ExternalID),
		OrderID:        dto.OrderID,
		Address:        strings.TrimSpace(dto.Address),
		Latitude:       dto.Latitude,
		Longitude:      dto.Longitude,
		RecipientName:  dto.RecipientName,
		RecipientPhone: dto.RecipientPhone,
		Comment:        dto.Comment,
		Price:          dto.Price,
		CreatedAt:      dto.CreatedAt,
	}
}

// empty reports an event that identifies no order.
func (dto EventDTO) empty() bool {
	return strings.TrimSpace(dto.Event) == "" ||
		(strings.TrimSpace(dto.ExternalID) == "" && dto.OrderID <= 0)
}
