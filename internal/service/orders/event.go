package orders

import (
	"time"
)

// Event kinds understood by the Processor.
const (
	EventCreated  = "created"
	EventCanceled = "canceled"
	EventDeleted  = "deleted"
)

// Event is a single upstream order event.
type Event struct {
	Kind       string
	ExternalID string
	// OrderID is the local id when the producer knows it; zero otherwise.
	OrderID        int64
	Address        string
	Latitude       *float64
	Longitude      *float64
	RecipientName  *string
	RecipientPhone *string
	Comment        *string
	Price          *float64
	CreatedAt      time.Time
}
