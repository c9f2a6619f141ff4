// Package courier manages the courier roster: registration, profile edits and removal.
package courier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

const defaultTimeout = 3 * time.Second

// Service validates roster changes before they reach the store.
type Service struct {
	store   courierStore
	timeout time.Duration
}

// NewService returns a Service bounding every store call by timeout.
func NewService(store courierStore, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{store: store, timeout: timeout}
}

func invalid(field, format string, args ...any) error {
	return apperr.Invalid(field, fmt.Sprintf(format, args...))
}

// normalizeNew trims the name and fills in the offline status when none is given.
func normalizeNew(c *domain.Courier) error {
	if c == nil {
		return invalid("courier", "is required")
	}
	c.Name = strings.TrimSpace(c.Name)
	switch {
	case c.Name == "":
		return invalid("name", "is required")
	case c.Status == "":
		c.Status = domain.StatusOffline
	case !c.Status.Valid():
		return invalid("status", "%q is unknown", c.Status)
	}
	return nil
}

func checkUpdate(u domain.PartialCourierUpdate) error {
	switch {
	case u.ID <= 0:
		return invalid("id", "must be positive")
	case u.Name == nil && u.Status == nil:
		return invalid("", "nothing to update")
	case u.Name != nil && strings.TrimSpace(*u.Name) == "":
		return invalid("name", "must not be blank")
	case u.Status != nil && !u.Status.Valid():
		return invalid("status", "%q is unknown", *u.Status)
	}
	return nil
}

// Get returns the courier or apperr.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.store.Get(ctx, id)
	switch {
	case err != nil:
		return nil, err
	case c == nil:
		return nil, apperr.NotFound("courier", id)
	}
	return c, nil
}

// List pages through the roster. Nil limit or offset means unbounded.
func (s *Service) List(ctx context.Context, limit, offset *int) ([]domain.Courier, error) {
	if limit != nil && *limit < 0 {
		return nil, invalid("limit", "must not be negative")
	}
	if offset != nil && *offset < 0 {
		return nil, invalid("offset", "must not be negative")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.List(ctx, limit, offset)
}

// Create registers a courier and returns the new id.
func (s *Service) Create(ctx context.Context, c *domain.Courier) (int64, error) {
	if err := normalizeNew(c); err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Create(ctx, c)
}

// UpdatePartial changes the name and/or status. A missing courier is apperr.ErrNotFound.
func (s *Service) UpdatePartial(ctx context.Context, u domain.PartialCourierUpdate) (bool, error) {
	if err := checkUpdate(u); err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	updated, err := s.store.UpdatePartial(ctx, u)
	if err != nil {
		return false, err
	}
	if !updated {
		return false, apperr.NotFound("courier", u.ID)
	}
	return true, nil
}

// Delete removes a courier. One still holding an active order is refused
// with a CourierBusyError naming that order.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	deleted, err := s.store.Delete(ctx, id)
	if err != nil || deleted {
		return err
	}

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if c != nil && c.CurrentOrderID != nil {
		return &apperr.CourierBusyError{CourierID: id, OrderID: *c.CurrentOrderID}
	}
	return apperr.NotFound("courier", id)
}
