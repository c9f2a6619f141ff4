// Package dispatch is the single entry point used by transports. It runs the
// assignment engine and position store and asks the hub to broadcast after
// every committed change that alters a snapshot.
package dispatch

import (
	"context"

	"courier-dispatch/internal/broadcast"
	"courier-dispatch/internal/domain"
)

// Facade orchestrates orders, positions, couriers and the live hub.
type Facade struct {
	orders    orderEngine
	positions positionStore
	couriers  courierService
	hub       streamHub
}

var _ broadcast.PositionSink = (*Facade)(nil)

// New creates a Facade.
func New(orders orderEngine, positions positionStore, couriers courierService, hub streamHub) *Facade {
	return &Facade{orders: orders, positions: positions, couriers: couriers, hub: hub}
}

// CreateOrder stores a new pending order.
func (f *Facade) CreateOrder(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	return f.orders.Create(ctx, in)
}

// ListPendingOrders returns orders waiting for a courier.
func (f *Facade) ListPendingOrders(ctx context.Context) ([]domain.Order, error) {
	return f.orders.ListPending(ctx)
}

// GetOrder returns one order.
func (f *Facade) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return f.orders.Get(ctx, id)
}

// AssignOrder binds a pending order to a courier.
// Snapshots carry no order data, so nothing is broadcast.
func (f *Facade) AssignOrder(ctx context.Context, orderID, courierID int64) (domain.AssignResult, error) {
	return f.orders.Assign(ctx, orderID, courierID)
}

// CompleteOrder marks the caller's order as delivered.
func (f *Facade) CompleteOrder(ctx context.Context, orderID, callerCourierID int64) (domain.CompleteResult, error) {
	return f.orders.Complete(ctx, orderID, callerCourierID)
}

// NearestPendingOrder returns the closest pending order or nil when there is nothing to offer.
func (f *Facade) NearestPendingOrder(ctx context.Context, courierID int64) (*domain.Order, error) {
	return f.orders.Nearest(ctx, courierID)
}

// DeleteOrder removes an order.
func (f *Facade) DeleteOrder(ctx context.Context, id int64) error {
	return f.orders.Delete(ctx, id)
}

// ActiveOrder returns the courier's assigned order.
func (f *Facade) ActiveOrder(ctx context.Context, courierID int64) (*domain.Order, error) {
	return f.orders.ActiveOrder(ctx, courierID)
}

// CourierOrders returns the courier's order history.
func (f *Facade) CourierOrders(ctx context.Context, courierID int64) ([]domain.Order, error) {
	return f.orders.CourierOrders(ctx, courierID)
}

// UpdateCourierPosition persists a position and broadcasts only once the write succeeded.
func (f *Facade) UpdateCourierPosition(ctx context.Context, courierID int64, lat, lon float64) error {
	_, err := f.ReportPosition(ctx, courierID, lat, lon)
	return err
}

// ReportPosition is UpdateCourierPosition returning the stored position.
func (f *Facade) ReportPosition(ctx context.Context, courierID int64, lat, lon float64) (domain.Position, error) {
	p, err := f.positions.Update(ctx, courierID, lat, lon)
	if err != nil {
		return domain.Position{}, err
	}
	f.hub.Notify()
	return p, nil
}

// CourierPosition returns the last known position of a courier.
func (f *Facade) CourierPosition(ctx context.Context, courierID int64) (domain.Position, error) {
	return f.positions.Read(ctx, courierID)
}

// FullPositionSnapshot returns every courier with a known position.
func (f *Facade) FullPositionSnapshot(ctx context.Context) ([]domain.CourierPositionView, error) {
	return f.positions.ReadAll(ctx)
}

// SetCourierStatus changes availability and broadcasts the new state.
func (f *Facade) SetCourierStatus(ctx context.Context, courierID int64, status domain.CourierStatus) error {
	_, err := f.UpdateCourier(ctx, domain.PartialCourierUpdate{ID: courierID, Status: &status})
	return err
}

// CreateCourier registers a courier.
func (f *Facade) CreateCourier(ctx context.Context, c *domain.Courier) (int64, error) {
	return f.couriers.Create(ctx, c)
}

// GetCourier returns a courier.
func (f *Facade) GetCourier(ctx context.Context, id int64) (*domain.Courier, error) {
	return f.couriers.Get(ctx, id)
}

// ListCouriers returns couriers with optional paging.
func (f *Facade) ListCouriers(ctx context.Context, limit, offset *int) ([]domain.Courier, error) {
	return f.couriers.List(ctx, limit, offset)
}

// UpdateCourier applies a partial update. Any successful change is broadcast
// since name and status are both part of the snapshot.
func (f *Facade) UpdateCourier(ctx context.Context, u domain.PartialCourierUpdate) (bool, error) {
	ok, err := f.couriers.UpdatePartial(ctx, u)
	if err != nil {
		return false, err
	}
	f.hub.Notify()
	return ok, nil
}

// DeleteCourier removes an idle courier and broadcasts its disappearance.
func (f *Facade) DeleteCourier(ctx context.Context, id int64) error {
	if err := f.couriers.Delete(ctx, id); err != nil {
		return err
	}
	f.hub.Notify()
	return nil
}

// ConnectCourier hands a courier stream to the hub; reports flow back through the facade.
func (f *Facade) ConnectCourier(ctx context.Context, courierID int64, conn broadcast.Conn) error {
	return f.hub.ConnectCourier(ctx, courierID, conn, f)
}

// SubscribeObserver hands an observer stream to the hub.
func (f *Facade) SubscribeObserver(ctx context.Context, conn broadcast.Conn) error {
	return f.hub.SubscribeObserver(ctx, conn)
}
