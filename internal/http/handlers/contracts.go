package handlers

import (
	"context"

	"courier-dispatch/internal/broadcast"
	"courier-dispatch/internal/domain"
)

type orderUsecase interface {
	CreateOrder(ctx context.Context, in domain.NewOrder) (*domain.Order, error)
	ListPendingOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	AssignOrder(ctx context.Context, orderID, courierID int64) (domain.AssignResult, error)
	CompleteOrder(ctx context.Context, orderID, callerCourierID int64) (domain.CompleteResult, error)
	NearestPendingOrder(ctx context.Context, courierID int64) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

type courierUsecase interface {
	CreateCourier(ctx context.Context, c *domain.Courier) (int64, error)
	GetCourier(ctx context.Context, id int64) (*domain.Courier, error)
	ListCouriers(ctx context.Context, limit, offset *int) ([]domain.Courier, error)
	UpdateCourier(ctx context.Context, u domain.PartialCourierUpdate) (bool, error)
	DeleteCourier(ctx context.Context, id int64) error
	SetCourierStatus(ctx context.Context, courierID int64, status domain.CourierStatus) error
	ActiveOrder(ctx context.Context, courierID int64) (*domain.Order, error)
	CourierOrders(ctx context.Context, courierID int64) ([]domain.Order, error)
}

type trackingUsecase interface {
	ReportPosition(ctx context.Context, courierID int64, lat, lon float64) (domain.Position, error)
	CourierPosition(ctx context.Context, courierID int64) (domain.Position, error)
	FullPositionSnapshot(ctx context.Context) ([]domain.CourierPositionView, error)
}

type streamUsecase interface {
	ConnectCourier(ctx context.Context, courierID int64, conn broadcast.Conn) error
	SubscribeObserver(ctx context.Context, conn broadcast.Conn) error
}
