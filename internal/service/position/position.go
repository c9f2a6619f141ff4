// Package position stores the last known location of each courier.
package position

import (
	"context"
	"fmt"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
)

type positionRepository interface {
	Get(ctx context.Context, id int64) (*domain.Courier, error)
	UpdatePosition(ctx context.Context, p domain.Position) (bool, error)
	ListPositions(ctx context.Context) ([]domain.CourierPositionView, error)
}

// Store is the only writer of courier position fields.
type Store struct {
	repo             positionRepository
	operationTimeout time.Duration
	now              func() time.Time
}

// NewStore creates a position Store.
func NewStore(r positionRepository, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Store{
		repo:             r,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Update overwrites the courier's position and last activity time.
func (s *Store) Update(ctx context.Context, courierID int64, lat, lon float64) (domain.Position, error) {
	if !(geo.Point{Lat: lat, Lon: lon}).Valid() {
		return domain.Position{}, apperr.Invalid("coordinates", fmt.Sprintf("(%v, %v) out of range", lat, lon))
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p := domain.Position{CourierID: courierID, Lat: lat, Lon: lon, CapturedAt: s.now()}
	ok, err := s.repo.UpdatePosition(ctx, p)
	if err != nil {
		return domain.Position{}, err
	}
	if !ok {
		return domain.Position{}, apperr.NotFound("courier", courierID)
	}
	return p, nil
}

// Read returns the last recorded position of a courier.
func (s *Store) Read(ctx context.Context, courierID int64) (domain.Position, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := s.repo.Get(ctx, courierID)
	if err != nil {
		return domain.Position{}, err
	}
	if c == nil {
		return domain.Position{}, apperr.NotFound("courier", courierID)
	}
	if !c.HasPosition() {
		return domain.Position{}, fmt.Errorf("courier %d: %w", courierID, apperr.ErrPositionNotAvailable)
	}

	p := domain.Position{CourierID: c.ID, Lat: c.Position.Lat, Lon: c.Position.Lon}
	if c.LastActive != nil {
		p.CapturedAt = *c.LastActive
	}
	return p, nil
}

// ReadAll returns every courier that has a recorded position.
func (s *Store) ReadAll(ctx context.Context) ([]domain.CourierPositionView, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.ListPositions(ctx)
}
