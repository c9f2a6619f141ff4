package assigntx

import (
	"context"
	"time"

	"courier-dispatch/internal/domain"
)

// Repository is the set of row-level operations available inside an assignment transaction.
// Lock* methods return nil, nil when the row does not exist.
type Repository interface {
	LockCourier(ctx context.Context, id int64) (*domain.Courier, error)
	LockOrder(ctx context.Context, id int64) (*domain.Order, error)
	FindAssignedOrderID(ctx context.Context, courierID int64) (*int64, error)
	MarkAssigned(ctx context.Context, orderID, courierID int64, at time.Time) error
	MarkDelivered(ctx context.Context, orderID int64, at time.Time) error
	SetCurrentOrder(ctx context.Context, courierID, orderID int64) error
	FinishCurrentOrder(ctx context.Context, courierID int64) (int, error)
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
