package dispatch

import (
	"context"

	"courier-dispatch/internal/broadcast"
	"courier-dispatch/internal/domain"
)

type orderEngine interface {
	Create(ctx context.Context, in domain.NewOrder) (*domain.Order, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	ListPending(ctx context.Context) ([]domain.Order, error)
	Assign(ctx context.Context, orderID, courierID int64) (domain.AssignResult, error)
	Complete(ctx context.Context, orderID, callerCourierID int64) (domain.CompleteResult, error)
	Nearest(ctx context.Context, courierID int64) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
	ActiveOrder(ctx context.Context, courierID int64) (*domain.Order, error)
	CourierOrders(ctx context.Context, courierID int64) ([]domain.Order, error)
}

type positionStore interface {
	Update(ctx context.Context, courierID int64, lat, lon float64) (domain.Position, error)
	Read(ctx context.Context, courierID int64) (domain.Position, error)
	ReadAll(ctx context.Context) ([]domain.CourierPositionView, error)
}

type courierService interface {
	Create(ctx context.Context, c *domain.Courier) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Courier, error)
	List(ctx context.Context, limit, offset *int) ([]domain.Courier, error)
	UpdatePartial(ctx context.Context, u domain.PartialCourierUpdate) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type streamHub interface {
	Notify()
	ConnectCourier(ctx context.Context, courierID int64, conn broadcast.Conn, sink broadcast.PositionSink) error
	SubscribeObserver(ctx context.Context, conn broadcast.Conn) error
}
