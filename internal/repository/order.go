package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
	"courier-dispatch/internal/ports/assigntx"
)

const orderColumns = `id, external_id, address, latitude, longitude, status, courier_id,
        recipient_name, recipient_phone, comment, price, created_at, assigned_at, delivered_at`

// OrderRepo represents order repository.
type OrderRepo struct {
	db *pgxpool.Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: db}
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o        domain.Order
		lat, lon *float64
	)
	err := row.Scan(&o.ID, &o.ExternalID, &o.Address, &lat, &lon, &o.Status, &o.CourierID,
		&o.Recipient.Name, &o.Recipient.Phone, &o.Recipient.Comment, &o.Price,
		&o.CreatedAt, &o.AssignedAt, &o.DeliveredAt)
	if err != nil {
		return nil, err
	}
	if lat != nil && lon != nil {
		o.Destination = &geo.Point{Lat: *lat, Lon: *lon}
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows, op string) ([]domain.Order, error) {
	defer rows.Close()
	out := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperr.Store(op, err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(op, err)
	}
	return out, nil
}

// Create inserts a pending order. A repeated external id yields apperr.ErrConflict.
func (r *OrderRepo) Create(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	var lat, lon *float64
	if in.Destination != nil {
		lat, lon = &in.Destination.Lat, &in.Destination.Lon
	}
	o, err := scanOrder(r.db.QueryRow(ctx, `
        INSERT INTO orders (external_id, address, latitude, longitude, status,
                            recipient_name, recipient_phone, comment, price)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+orderColumns,
		in.ExternalID, in.Address, lat, lon, string(domain.OrderPending),
		in.Recipient.Name, in.Recipient.Phone, in.Recipient.Comment, in.Price))
	if err != nil {
		if IsDuplicate(err) {
			return nil, fmt.Errorf("order with external id: %w", apperr.ErrConflict)
		}
		return nil, apperr.Store("create order", err)
	}
	return o, nil
}

// Get - returns order by its ID, nil when absent.
func (r *OrderRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, apperr.Store(fmt.Sprintf("get order %d", id), err)
	}
	return o, nil
}

// GetByExternalID - returns order by the upstream identifier, nil when absent.
func (r *OrderRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE external_id = $1`, externalID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, apperr.Store(fmt.Sprintf("get order by external id %q", externalID), err)
	}
	return o, nil
}

// ListPending returns pending orders ordered by id.
func (r *OrderRepo) ListPending(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY id`,
		string(domain.OrderPending))
	if err != nil {
		return nil, apperr.Store("list pending orders", err)
	}
	return collectOrders(rows, "list pending orders")
}

// ActiveByCourier returns the assigned order bound to the courier, nil when none.
func (r *OrderRepo) ActiveByCourier(ctx context.Context, courierID int64) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE courier_id = $1 AND status = $2`,
		courierID, string(domain.OrderAssigned)))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, apperr.Store(fmt.Sprintf("active order of courier %d", courierID), err)
	}
	return o, nil
}

// ListByCourier returns every order the courier has held, most recent assignment first.
func (r *OrderRepo) ListByCourier(ctx context.Context, courierID int64) ([]domain.Order, error) {
	op := fmt.Sprintf("orders of courier %d", courierID)
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE courier_id = $1 ORDER BY assigned_at DESC NULLS LAST, id DESC`,
		courierID)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	return collectOrders(rows, op)
}

// Delete removes the order and reports whether a row existed.
// A courier holding it as current order is released by the foreign key.
func (r *OrderRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, apperr.Store(fmt.Sprintf("delete order %d", id), err)
	}
	return ct.RowsAffected() > 0, nil
}

// WithTx opens a transaction and executes fn within it.
func (r *OrderRepo) WithTx(ctx context.Context, fn func(tx assigntx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperr.Store("begin tx", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				panic(rbErr)
			}
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return apperr.Store("rollback tx", fmt.Errorf("%w (original error: %s)", rbErr, err.Error()))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Store("commit tx", err)
	}

	return nil
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

// LockCourier - select courier row for update.
func (r *TxRepo) LockCourier(ctx context.Context, id int64) (*domain.Courier, error) {
	c, err := scanCourier(r.tx.QueryRow(ctx,
		`SELECT `+courierColumns+` FROM couriers WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, apperr.Store(fmt.Sprintf("lock courier %d", id), err)
	}
	return c, nil
}

// LockOrder - select order row for update.
func (r *TxRepo) LockOrder(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.tx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, apperr.Store(fmt.Sprintf("lock order %d", id), err)
	}
	return o, nil
}

// FindAssignedOrderID - id of the order currently assigned to the courier, nil when none.
func (r *TxRepo) FindAssignedOrderID(ctx context.Context, courierID int64) (*int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx,
		`SELECT id FROM orders WHERE courier_id = $1 AND status = $2 LIMIT 1`,
		courierID, string(domain.OrderAssigned)).Scan(&id)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, apperr.Store(fmt.Sprintf("find assigned order of courier %d", courierID), err)
	}
	return &id, nil
}

// MarkAssigned - bind a pending order to a courier.
func (r *TxRepo) MarkAssigned(ctx context.Context, orderID, courierID int64, at time.Time) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders
        SET status = $3, courier_id = $2, assigned_at = $4
        WHERE id = $1 AND status = $5
    `, orderID, courierID, string(domain.OrderAssigned), at, string(domain.OrderPending))
	if err != nil {
		if IsDuplicate(err) {
			return fmt.Errorf("assign order %d: %w", orderID, apperr.ErrCourierBusy)
		}
		return apperr.Store(fmt.Sprintf("assign order %d", orderID), err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("assign order %d: %w", orderID, apperr.ErrOrderNotAvailable)
	}
	return nil
}

// MarkDelivered - move an assigned order to delivered.
func (r *TxRepo) MarkDelivered(ctx context.Context, orderID int64, at time.Time) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders
        SET status = $2, delivered_at = $3
        WHERE id = $1 AND status = $4
    `, orderID, string(domain.OrderDelivered), at, string(domain.OrderAssigned))
	if err != nil {
		return apperr.Store(fmt.Sprintf("deliver order %d", orderID), err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("deliver order %d: %w", orderID, apperr.ErrInvalidState)
	}
	return nil
}

// SetCurrentOrder - point the courier at its active order.
func (r *TxRepo) SetCurrentOrder(ctx context.Context, courierID, orderID int64) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE couriers
        SET current_order_id = $2, updated_at = now()
        WHERE id = $1
    `, courierID, orderID)
	if err != nil {
		return apperr.Store(fmt.Sprintf("set current order of courier %d", courierID), err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("courier", courierID)
	}
	return nil
}

// FinishCurrentOrder - clear the active order and bump the completed counter.
func (r *TxRepo) FinishCurrentOrder(ctx context.Context, courierID int64) (int, error) {
	var completed int
	err := r.tx.QueryRow(ctx, `
        UPDATE couriers
        SET current_order_id = NULL,
            completed_orders = completed_orders + 1,
            updated_at = now()
        WHERE id = $1
        RETURNING completed_orders
    `, courierID).Scan(&completed)
	if err != nil {
		if IsNotFound(err) {
			return 0, apperr.NotFound("courier", courierID)
		}
		return 0, apperr.Store(fmt.Sprintf("finish order of courier %d", courierID), err)
	}
	return completed, nil
}
