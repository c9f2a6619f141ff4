//go:generate mockgen -source=contracts.go -destination=orders_mocks_test.go -package=orders_test

package orders

import (
	"context"

	"courier-dispatch/internal/domain"
)

// OrderPort is the subset of dispatch operations driven by order events.
type OrderPort interface {
	CreateOrder(ctx context.Context, in domain.NewOrder) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// OrderLookup resolves an upstream order id to the local order. Absent orders yield nil.
type OrderLookup interface {
	GetByExternalID(ctx context.Context, externalID string) (*domain.Order, error)
}
