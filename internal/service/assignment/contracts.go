//go:generate mockgen -source=contracts.go -destination=mocks_test.go -package=assignment_test

package assignment

import (
	"context"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/ports/assigntx"
)

// orderRepository defines the order storage operations used by the engine.
// Get/ActiveByCourier return nil, nil when nothing matches.
type orderRepository interface {
	Create(ctx context.Context, in domain.NewOrder) (*domain.Order, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	ListPending(ctx context.Context) ([]domain.Order, error)
	ActiveByCourier(ctx context.Context, courierID int64) (*domain.Order, error)
	ListByCourier(ctx context.Context, courierID int64) ([]domain.Order, error)
	Delete(ctx context.Context, id int64) (bool, error)
	WithTx(ctx context.Context, fn func(tx assigntx.Repository) error) error
}

type courierReader interface {
	Get(ctx context.Context, id int64) (*domain.Courier, error)
}
