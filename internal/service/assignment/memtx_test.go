package assignment_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/ports/assigntx"
)

// memStore is an in-memory stand-in for the transactional order repository.
// WithTx works on a copy and publishes it only when fn succeeds.
type memStore struct {
	mu       sync.Mutex
	couriers map[int64]domain.Courier
	orders   map[int64]domain.Order
}

func newMemStore() *memStore {
	return &memStore{
		couriers: make(map[int64]domain.Courier),
		orders:   make(map[int64]domain.Order),
	}
}

func (m *memStore) putCourier(c domain.Courier) { m.couriers[c.ID] = c }
func (m *memStore) putOrder(o domain.Order)     { m.orders[o.ID] = o }

func (m *memStore) order(id int64) domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

func (m *memStore) courier(id int64) domain.Courier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.couriers[id]
}

func (m *memStore) WithTx(_ context.Context, fn func(tx assigntx.Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{couriers: make(map[int64]domain.Courier), orders: make(map[int64]domain.Order)}
	for k, v := range m.couriers {
		tx.couriers[k] = v
	}
	for k, v := range m.orders {
		tx.orders[k] = v
	}
	if err := fn(tx); err != nil {
		return err
	}
	m.couriers, m.orders = tx.couriers, tx.orders
	return nil
}

type memTx struct {
	couriers map[int64]domain.Courier
	orders   map[int64]domain.Order
}

func (t *memTx) LockCourier(_ context.Context, id int64) (*domain.Courier, error) {
	c, ok := t.couriers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *memTx) LockOrder(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := t.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (t *memTx) FindAssignedOrderID(_ context.Context, courierID int64) (*int64, error) {
	for id, o := range t.orders {
		if o.Status == domain.OrderAssigned && o.CourierID != nil && *o.CourierID == courierID {
			id := id
			return &id, nil
		}
	}
	return nil, nil
}

func (t *memTx) MarkAssigned(_ context.Context, orderID, courierID int64, at time.Time) error {
	o := t.orders[orderID]
	if o.Status != domain.OrderPending {
		return apperr.ErrOrderNotAvailable
	}
	o.Status = domain.OrderAssigned
	o.CourierID = &courierID
	o.AssignedAt = &at
	t.orders[orderID] = o
	return nil
}

func (t *memTx) MarkDelivered(_ context.Context, orderID int64, at time.Time) error {
	o := t.orders[orderID]
	if o.Status != domain.OrderAssigned {
		return apperr.ErrInvalidState
	}
	o.Status = domain.OrderDelivered
	o.DeliveredAt = &at
	t.orders[orderID] = o
	return nil
}

func (t *memTx) SetCurrentOrder(_ context.Context, courierID, orderID int64) error {
	c, ok := t.couriers[courierID]
	if !ok {
		return fmt.Errorf("courier %d: %w", courierID, apperr.ErrNotFound)
	}
	c.CurrentOrderID = &orderID
	t.couriers[courierID] = c
	return nil
}

func (t *memTx) FinishCurrentOrder(_ context.Context, courierID int64) (int, error) {
	c, ok := t.couriers[courierID]
	if !ok {
		return 0, fmt.Errorf("courier %d: %w", courierID, apperr.ErrNotFound)
	}
	c.CurrentOrderID = nil
	c.CompletedOrders++
	t.couriers[courierID] = c
	return c.CompletedOrders, nil
}
