//go:generate mockgen -source=contracts.go -destination=mocks_test.go -package=courier

package courier

import (
	"context"

	"courier-dispatch/internal/domain"
)

// courierStore is the persistence the courier service needs.
type courierStore interface {
	Get(ctx context.Context, id int64) (*domain.Courier, error)
	List(ctx context.Context, limit, offset *int) ([]domain.Courier, error)
	Create(ctx context.Context, c *domain.Courier) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialCourierUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
