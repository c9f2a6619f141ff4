package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"courier-dispatch/internal/broadcast"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/http/handlers"
	"courier-dispatch/internal/identity"
	"courier-dispatch/internal/logx"
)

// stubDispatch implements every usecase the handlers consume; unset funcs fail the test.
type stubDispatch struct {
	t *testing.T

	createOrderFn   func(ctx context.Context, in domain.NewOrder) (*domain.Order, error)
	listPendingFn   func(ctx context.Context) ([]domain.Order, error)
	getOrderFn      func(ctx context.Context, id int64) (*domain.Order, error)
	assignFn        func(ctx context.Context, orderID, courierID int64) (domain.AssignResult, error)
	completeFn      func(ctx context.Context, orderID, callerID int64) (domain.CompleteResult, error)
	nearestFn       func(ctx context.Context, courierID int64) (*domain.Order, error)
	deleteOrderFn   func(ctx context.Context, id int64) error
	activeOrderFn   func(ctx context.Context, courierID int64) (*domain.Order, error)
	historyFn       func(ctx context.Context, courierID int64) ([]domain.Order, error)
	createCourierFn func(ctx context.Context, c *domain.Courier) (int64, error)
	getCourierFn    func(ctx context.Context, id int64) (*domain.Courier, error)
	listCouriersFn  func(ctx context.Context, limit, offset *int) ([]domain.Courier, error)
	updateCourierFn func(ctx context.Context, u domain.PartialCourierUpdate) (bool, error)
	deleteCourierFn func(ctx context.Context, id int64) error
	setStatusFn     func(ctx context.Context, courierID int64, status domain.CourierStatus) error
	reportFn        func(ctx context.Context, courierID int64, lat, lon float64) (domain.Position, error)
	positionFn      func(ctx context.Context, courierID int64) (domain.Position, error)
	snapshotFn      func(ctx context.Context) ([]domain.CourierPositionView, error)
	connectFn       func(ctx context.Context, courierID int64, conn broadcast.Conn) error
	subscribeFn     func(ctx context.Context, conn broadcast.Conn) error
}

func (s *stubDispatch) unexpected(name string) {
	s.t.Helper()
	s.t.Fatalf("unexpected call to %s", name)
}

func (s *stubDispatch) CreateOrder(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	if s.createOrderFn == nil {
		s.unexpected("CreateOrder")
	}
	return s.createOrderFn(ctx, in)
}

func (s *stubDispatch) ListPendingOrders(ctx context.Context) ([]domain.Order, error) {
	if s.listPendingFn == nil {
		s.unexpected("ListPendingOrders")
	}
	return s.listPendingFn(ctx)
}

func (s *stubDispatch) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if s.getOrderFn == nil {
		s.unexpected("GetOrder")
	}
	return s.getOrderFn(ctx, id)
}

func (s *stubDispatch) AssignOrder(ctx context.Context, orderID, courierID int64) (domain.AssignResult, error) {
	if s.assignFn == nil {
		s.unexpected("AssignOrder")
	}
	return s.assignFn(ctx, orderID, courierID)
}

func (s *stubDispatch) CompleteOrder(ctx context.Context, orderID, callerID int64) (domain.CompleteResult, error) {
	if s.completeFn == nil {
		s.unexpected("CompleteOrder")
	}
	return s.completeFn(ctx, orderID, callerID)
}

func (s *stubDispatch) NearestPendingOrder(ctx context.Context, courierID int64) (*domain.Order, error) {
	if s.nearestFn == nil {
		s.unexpected("NearestPendingOrder")
	}
	return s.nearestFn(ctx, courierID)
}

func (s *stubDispatch) DeleteOrder(ctx context.Context, id int64) error {
	if s.deleteOrderFn == nil {
		s.unexpected("DeleteOrder")
	}
	return s.deleteOrderFn(ctx, id)
}

func (s *stubDispatch) ActiveOrder(ctx context.Context, courierID int64) (*domain.Order, error) {
	if s.activeOrderFn == nil {
		s.unexpected("ActiveOrder")
	}
	return s.activeOrderFn(ctx, courierID)
}

func (s *stubDispatch) CourierOrders(ctx context.Context, courierID int64) ([]domain.Order, error) {
	if s.historyFn == nil {
		s.unexpected("CourierOrders")
	}
	return s.historyFn(ctx, courierID)
}

func (s *stubDispatch) CreateCourier(ctx context.Context, c *domain.Courier) (int64, error) {
	if s.createCourierFn == nil {
		s.unexpected("CreateCourier")
	}
	return s.createCourierFn(ctx, c)
}

func (s *stubDispatch) GetCourier(ctx context.Context, id int64) (*domain.Courier, error) {
	if s.getCourierFn == nil {
		s.unexpected("GetCourier")
	}
	return s.getCourierFn(ctx, id)
}

func (s *stubDispatch) ListCouriers(ctx context.Context, limit, offset *int) ([]domain.Courier, error) {
	if s.listCouriersFn == nil {
		s.unexpected("ListCouriers")
	}
	return s.listCouriersFn(ctx, limit, offset)
}

func (s *stubDispatch) UpdateCourier(ctx context.Context, u domain.PartialCourierUpdate) (bool, error) {
	if s.updateCourierFn == nil {
		s.unexpected("UpdateCourier")
	}
	return s.updateCourierFn(ctx, u)
}

func (s *stubDispatch) DeleteCourier(ctx context.Context, id int64) error {
	if s.deleteCourierFn == nil {
		s.unexpected("DeleteCourier")
	}
	return s.deleteCourierFn(ctx, id)
}

func (s *stubDispatch) SetCourierStatus(ctx context.Context, courierID int64, status domain.CourierStatus) error {
	if s.setStatusFn == nil {
		s.unexpected("SetCourierStatus")
	}
	return s.setStatusFn(ctx, courierID, status)
}

func (s *stubDispatch) ReportPosition(ctx context.Context, courierID int64, lat, lon float64) (domain.Position, error) {
	if s.reportFn == nil {
		s.unexpected("ReportPosition")
	}
	return s.reportFn(ctx, courierID, lat, lon)
}

func (s *stubDispatch) CourierPosition(ctx context.Context, courierID int64) (domain.Position, error) {
	if s.positionFn == nil {
		s.unexpected("CourierPosition")
	}
	return s.positionFn(ctx, courierID)
}

func (s *stubDispatch) FullPositionSnapshot(ctx context.Context) ([]domain.CourierPositionView, error) {
	if s.snapshotFn == nil {
		s.unexpected("FullPositionSnapshot")
	}
	return s.snapshotFn(ctx)
}

func (s *stubDispatch) ConnectCourier(ctx context.Context, courierID int64, conn broadcast.Conn) error {
	if s.connectFn == nil {
		s.unexpected("ConnectCourier")
	}
	return s.connectFn(ctx, courierID, conn)
}

func (s *stubDispatch) SubscribeObserver(ctx context.Context, conn broadcast.Conn) error {
	if s.subscribeFn == nil {
		s.unexpected("SubscribeObserver")
	}
	return s.subscribeFn(ctx, conn)
}

// asCourier injects an identity the way the auth middleware does; zero leaves the request anonymous.
func asCourier(id int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id > 0 {
				r = r.WithContext(identity.WithIdentity(r.Context(), identity.Identity{CourierID: id}))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newTestRouter(s *stubDispatch, callerID int64) http.Handler {
	logger := logx.Nop()
	orders := handlers.NewOrderHandler(logger, s)
	couriers := handlers.NewCourierHandler(logger, s)
	tracking := handlers.NewTrackingHandler(logger, s)

	r := chi.NewRouter()
	r.Use(asCourier(callerID))

	r.Post("/orders", orders.Create)
	r.Get("/orders/available", orders.ListAvailable)
	r.Get("/orders/nearest/{courier_id}", orders.Nearest)
	r.Get("/orders/{id}", orders.Get)
	r.Delete("/orders/{id}", orders.Delete)
	r.Post("/orders/{id}/assign/{courier_id}", orders.Assign)
	r.Post("/orders/{id}/complete", orders.Complete)

	r.Get("/couriers", couriers.List)
	r.Post("/couriers", couriers.Create)
	r.Get("/couriers/me", couriers.Me)
	r.Patch("/couriers/me/status", couriers.SetMyStatus)
	r.Get("/couriers/{id}", couriers.GetByID)
	r.Put("/couriers/{id}", couriers.Replace)
	r.Patch("/couriers/{id}", couriers.Update)
	r.Delete("/couriers/{id}", couriers.Delete)
	r.Get("/couriers/{id}/active-order", couriers.ActiveOrder)
	r.Get("/couriers/{id}/orders", couriers.Orders)

	r.Post("/tracking/update_position", tracking.UpdatePosition)
	r.Get("/tracking/position/{courier_id}", tracking.Position)
	r.Get("/tracking/all_positions", tracking.AllPositions)
	return r
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func ptr[T any](v T) *T { return &v }
