package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courierColumns = `id, name, status, latitude, longitude, current_order_id, completed_orders, last_active`

// CourierRepo stores couriers, their positions and presence.
type CourierRepo struct{ db *pgxpool.Pool }

func NewCourierRepo(db *pgxpool.Pool) *CourierRepo { return &CourierRepo{db: db} }

func scanCourier(row pgx.Row) (*domain.Courier, error) {
	var (
		c        domain.Courier
		lat, lon *float64
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Status, &lat, &lon, &c.CurrentOrderID, &c.CompletedOrders, &c.LastActive); err != nil {
		return nil, err
	}
	if lat != nil && lon != nil {
		c.Position = &geo.Point{Lat: *lat, Lon: *lon}
	}
	return &c, nil
}

// Get returns the courier, or nil when absent.
func (r *CourierRepo) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	c, err := scanCourier(r.db.QueryRow(ctx,
		`SELECT `+courierColumns+` FROM couriers WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, apperr.Store(fmt.Sprintf("get courier %d", id), err)
	}
	return c, nil
}

// List pages through couriers by id. Nil limit or offset leaves that bound off.
func (r *CourierRepo) List(ctx context.Context, limit, offset *int) ([]domain.Courier, error) {
	var (
		q    strings.Builder
		args []any
	)
	q.WriteString(`SELECT ` + courierColumns + ` FROM couriers ORDER BY id`)
	for _, p := range []struct {
		clause string
		v      *int
	}{{"LIMIT", limit}, {"OFFSET", offset}} {
		if p.v != nil {
			args = append(args, *p.v)
			fmt.Fprintf(&q, " %s $%d", p.clause, len(args))
		}
	}

	rows, err := r.db.Query(ctx, q.String(), args...)
	if err != nil {
		return nil, apperr.Store("list couriers", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Courier, error) {
		c, err := scanCourier(row)
		if err != nil {
			return domain.Courier{}, err
		}
		return *c, nil
	})
	if err != nil {
		return nil, apperr.Store("list couriers", err)
	}
	return out, nil
}

// Create inserts a courier and returns its id.
func (r *CourierRepo) Create(ctx context.Context, c *domain.Courier) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO couriers(name, status) VALUES($1, $2) RETURNING id`,
		c.Name, c.Status).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.ErrConflict
		}
		return 0, apperr.Store("create courier", err)
	}
	return id, nil
}

// UpdatePartial applies a partial update to a courier and returns true if a row was affected.
func (r *CourierRepo) UpdatePartial(ctx context.Context, u domain.PartialCourierUpdate) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE couriers
        SET
            name       = COALESCE($2, name),
            status     = COALESCE($3, status),
            updated_at = now()
        WHERE id = $1
    `, u.ID, u.Name, u.Status)
	if err != nil {
		return false, apperr.Store(fmt.Sprintf("update courier %d", u.ID), err)
	}
	return ct.RowsAffected() > 0, nil
}

// Delete removes an idle courier. It returns false when the courier is absent or holds an active order.
func (r *CourierRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx,
		`DELETE FROM couriers WHERE id = $1 AND current_order_id IS NULL`, id)
	if err != nil {
		return false, apperr.Store(fmt.Sprintf("delete courier %d", id), err)
	}
	return ct.RowsAffected() > 0, nil
}

// UpdatePosition overwrites the stored position and last activity time.
// It returns false when the courier does not exist.
func (r *CourierRepo) UpdatePosition(ctx context.Context, p domain.Position) (bool, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
        UPDATE couriers
        SET latitude = $2, longitude = $3, last_active = $4, updated_at = now()
        WHERE id = $1
        RETURNING id
    `, p.CourierID, p.Lat, p.Lon, p.CapturedAt).Scan(&id)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, apperr.Store(fmt.Sprintf("update position %d", p.CourierID), err)
	}
	return true, nil
}

// ListPositions returns every courier with a recorded position.
func (r *CourierRepo) ListPositions(ctx context.Context) ([]domain.CourierPositionView, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, name, latitude, longitude, status
        FROM couriers
        WHERE latitude IS NOT NULL AND longitude IS NOT NULL
        ORDER BY id
    `)
	if err != nil {
		return nil, apperr.Store("list positions", err)
	}
	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (v domain.CourierPositionView, err error) {
		err = row.Scan(&v.CourierID, &v.Name, &v.Latitude, &v.Longitude, &v.Status)
		return v, err
	})
	if err != nil {
		return nil, apperr.Store("list positions", err)
	}
	return views, nil
}

// MarkOffline flips couriers that were last active before the cutoff to offline.
// Couriers without any recorded activity are left alone.
func (r *CourierRepo) MarkOffline(ctx context.Context, before time.Time) (int64, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE couriers
        SET status = $1, updated_at = now()
        WHERE status <> $1
          AND last_active IS NOT NULL
          AND last_active < $2
    `, string(domain.StatusOffline), before)
	if err != nil {
		return 0, apperr.Store("mark couriers offline", err)
	}
	return ct.RowsAffected(), nil
}
