//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/repository"
)

type CourierRepositorySuite struct {
	suite.Suite
	ctx  context.Context
	repo *repository.CourierRepo
}

func TestCourierRepositorySuite(t *testing.T) {
	suite.Run(t, new(CourierRepositorySuite))
}

func (s *CourierRepositorySuite) SetupSuite() {
	s.Require().NotNil(tcPool, "postgres container is not running")
	s.repo = repository.NewCourierRepo(tcPool)
}

func (s *CourierRepositorySuite) SetupTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	s.T().Cleanup(cancel)
	s.ctx = ctx

	_, err := tcPool.Exec(s.ctx, `TRUNCATE couriers, orders RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *CourierRepositorySuite) create(name string, status domain.CourierStatus) int64 {
	id, err := s.repo.Create(s.ctx, &domain.Courier{Name: name, Status: status})
	s.Require().NoError(err)
	return id
}

func (s *CourierRepositorySuite) TestCreateAndGet() {
	id := s.create("Artem", domain.StatusAvailable)

	got, err := s.repo.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(got)

	s.Equal(id, got.ID)
	s.Equal("Artem", got.Name)
	s.Equal(domain.StatusAvailable, got.Status)
	s.Nil(got.Position)
	s.Nil(got.CurrentOrderID)
	s.Zero(got.CompletedOrders)
	s.Nil(got.LastActive)
}

func (s *CourierRepositorySuite) TestGetNotFound() {
	got, err := s.repo.Get(s.ctx, 9999)
	s.Require().NoError(err)
	s.Require().Nil(got)
}

func (s *CourierRepositorySuite) TestListWithLimitOffset() {
	for i := 0; i < 3; i++ {
		s.create(fmt.Sprintf("C%d", i+1), domain.StatusAvailable)
	}

	limit := 2
	offset := 1

	list, err := s.repo.List(s.ctx, &limit, &offset)
	s.Require().NoError(err)

	s.Len(list, 2)
	s.True(list[0].ID < list[1].ID)
	s.Equal("C2", list[0].Name)

	all, err := s.repo.List(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *CourierRepositorySuite) TestUpdatePartial() {
	id := s.create("Not Artem", domain.StatusAvailable)

	newName := "Artem"
	ok, err := s.repo.UpdatePartial(s.ctx, domain.PartialCourierUpdate{ID: id, Name: &newName})
	s.Require().NoError(err)
	s.True(ok)

	got, err := s.repo.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(newName, got.Name)
	s.Equal(domain.StatusAvailable, got.Status)

	ok, err = s.repo.UpdatePartial(s.ctx, domain.PartialCourierUpdate{ID: 9999, Name: &newName})
	s.Require().NoError(err)
	s.False(ok)
}

func (s *CourierRepositorySuite) TestUpdatePosition_And_ListPositions() {
	withPos := s.create("Moving", domain.StatusAvailable)
	s.create("Never reported", domain.StatusAvailable)

	at := time.Now().UTC().Truncate(time.Microsecond)
	ok, err := s.repo.UpdatePosition(s.ctx, domain.Position{CourierID: withPos, Lat: 55.75, Lon: 37.61, CapturedAt: at})
	s.Require().NoError(err)
	s.True(ok)

	got, err := s.repo.Get(s.ctx, withPos)
	s.Require().NoError(err)
	s.Require().NotNil(got.Position)
	s.InDelta(55.75, got.Position.Lat, 1e-9)
	s.InDelta(37.61, got.Position.Lon, 1e-9)
	s.Require().NotNil(got.LastActive)
	s.True(at.Equal(*got.LastActive))

	views, err := s.repo.ListPositions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Equal(withPos, views[0].CourierID)
	s.Equal("Moving", views[0].Name)

	ok, err = s.repo.UpdatePosition(s.ctx, domain.Position{CourierID: 9999, Lat: 1, Lon: 1, CapturedAt: at})
	s.Require().NoError(err)
	s.False(ok)
}

func (s *CourierRepositorySuite) TestMarkOffline() {
	now := time.Now().UTC()

	stale := s.create("Stale", domain.StatusAvailable)
	fresh := s.create("Fresh", domain.StatusAvailable)
	silent := s.create("Silent", domain.StatusAvailable)

	_, err := s.repo.UpdatePosition(s.ctx, domain.Position{CourierID: stale, Lat: 1, Lon: 1, CapturedAt: now.Add(-time.Hour)})
	s.Require().NoError(err)
	_, err = s.repo.UpdatePosition(s.ctx, domain.Position{CourierID: fresh, Lat: 1, Lon: 1, CapturedAt: now})
	s.Require().NoError(err)

	n, err := s.repo.MarkOffline(s.ctx, now.Add(-10*time.Minute))
	s.Require().NoError(err)
	s.EqualValues(1, n)

	for id, want := range map[int64]domain.CourierStatus{
		stale:  domain.StatusOffline,
		fresh:  domain.StatusAvailable,
		silent: domain.StatusAvailable,
	} {
		got, err := s.repo.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(want, got.Status, "courier %d", id)
	}

	n, err = s.repo.MarkOffline(s.ctx, now.Add(-10*time.Minute))
	s.Require().NoError(err)
	s.Zero(n, "already offline couriers are not counted again")
}

func (s *CourierRepositorySuite) TestDelete() {
	id := s.create("Gone", domain.StatusOffline)

	ok, err := s.repo.Delete(s.ctx, id)
	s.Require().NoError(err)
	s.True(ok)

	got, err := s.repo.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Nil(got)

	ok, err = s.repo.Delete(s.ctx, id)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *CourierRepositorySuite) TestList_EmptyIsNotNil() {
	list, err := s.repo.List(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.NotNil(list)
	s.Empty(list)

	views, err := s.repo.ListPositions(s.ctx)
	s.Require().NoError(err)
	s.NotNil(views)
}

func (s *CourierRepositorySuite) TestCanceledContextIsStoreError() {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	calls := map[string]func() error{
		"get":  func() error { _, err := s.repo.Get(canceled, 1); return err },
		"list": func() error { _, err := s.repo.List(canceled, nil, nil); return err },
		"create": func() error {
			_, err := s.repo.Create(canceled, &domain.Courier{Name: "x", Status: domain.StatusAvailable})
			return err
		},
		"positions":    func() error { _, err := s.repo.ListPositions(canceled); return err },
		"mark offline": func() error { _, err := s.repo.MarkOffline(canceled, time.Now()); return err },
	}
	for name, call := range calls {
		s.Run(name, func() {
			err := call()
			s.ErrorIs(err, apperr.ErrStoreUnavailable)
			s.ErrorIs(err, context.Canceled)
		})
	}
}
