package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/ports/assigntx"
)

const (
	opAssign   = "assign"
	opComplete = "complete"
)

// Service owns the order lifecycle and the courier-order binding.
type Service struct {
	orders           orderRepository
	couriers         courierReader
	ops              *prometheus.CounterVec
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewService creates an assignment Service. A nil counter is replaced by an unregistered one.
func NewService(
	orders orderRepository,
	couriers courierReader,
	ops *prometheus.CounterVec,
	timeout time.Duration,
	logger logx.Logger,
) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if ops == nil {
		ops = metrics.NewAssignmentOperationsTotal()
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		orders:           orders,
		couriers:         couriers,
		ops:              ops,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Create validates and stores a new pending order.
func (s *Service) Create(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	in.Address = strings.TrimSpace(in.Address)
	if in.Address == "" {
		return nil, apperr.Invalid("address", "is required")
	}
	if in.Destination != nil && !in.Destination.Valid() {
		return nil, apperr.Invalid("destination", "out of range")
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, apperr.Invalid("price", "must not be negative")
	}
	if err := validateRecipient(in.Address, in.Recipient); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.orders.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order created",
		logx.String("event", "order_created"),
		logx.Int64("order_id", o.ID),
	)
	return o, nil
}

// Get returns an order by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFound("order", id)
	}
	return o, nil
}

// ListPending returns orders waiting for a courier.
func (s *Service) ListPending(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.orders.ListPending(ctx)
}

// ActiveOrder returns the order currently assigned to the courier.
func (s *Service) ActiveOrder(ctx context.Context, courierID int64) (*domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.orders.ActiveByCourier(ctx, courierID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("active order of courier %d: %w", courierID, apperr.ErrNotFound)
	}
	return o, nil
}

// CourierOrders returns the orders a courier has held, the active one included.
func (s *Service) CourierOrders(ctx context.Context, courierID int64) ([]domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := s.couriers.Get(ctx, courierID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("courier", courierID)
	}
	return s.orders.ListByCourier(ctx, courierID)
}

// Delete removes an order regardless of its state.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := s.orders.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("order", id)
	}
	s.logger.Info("order deleted",
		logx.String("event", "order_deleted"),
		logx.Int64("order_id", id),
	)
	return nil
}

// Assign binds a pending order to a courier that has no other active order.
// The checks and writes run in one transaction holding row locks on the courier, then the order.
func (s *Service) Assign(ctx context.Context, orderID, courierID int64) (domain.AssignResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result domain.AssignResult
	err := s.orders.WithTx(ctx, func(tx assigntx.Repository) error {
		courier, err := tx.LockCourier(ctx, courierID)
		if err != nil {
			return err
		}
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperr.NotFound("order", orderID)
		}
		if courier == nil {
			return apperr.NotFound("courier", courierID)
		}

		active, err := tx.FindAssignedOrderID(ctx, courierID)
		if err != nil {
			return err
		}
		if active != nil {
			return &apperr.CourierBusyError{CourierID: courierID, OrderID: *active}
		}
		if !order.Status.CanTransitionTo(domain.OrderAssigned) {
			return &apperr.StatusError{OrderID: orderID, Status: string(order.Status), Err: apperr.ErrOrderNotAvailable}
		}

		now := s.now()
		if err := tx.MarkAssigned(ctx, orderID, courierID, now); err != nil {
			return err
		}
		if err := tx.SetCurrentOrder(ctx, courierID, orderID); err != nil {
			return err
		}

		result = domain.AssignResult{OrderID: orderID, CourierID: courierID, AssignedAt: now}
		return nil
	})
	s.observe(opAssign, err)
	if err != nil {
		s.logger.Warn("assign rejected",
			logx.Int64("order_id", orderID),
			logx.Int64("courier_id", courierID),
			logx.Err(err),
		)
		return domain.AssignResult{}, err
	}

	s.logger.Info("order assigned",
		logx.String("event", "order_assigned"),
		logx.Int64("order_id", result.OrderID),
		logx.Int64("courier_id", result.CourierID),
		logx.Time("assigned_at", result.AssignedAt),
	)
	return result, nil
}

// Complete marks an assigned order as delivered on behalf of its owning courier.
func (s *Service) Complete(ctx context.Context, orderID, callerCourierID int64) (domain.CompleteResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result domain.CompleteResult
	err := s.orders.WithTx(ctx, func(tx assigntx.Repository) error {
		courier, err := tx.LockCourier(ctx, callerCourierID)
		if err != nil {
			return err
		}
		if courier == nil {
			return apperr.NotFound("courier", callerCourierID)
		}
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperr.NotFound("order", orderID)
		}
		if order.CourierID == nil || *order.CourierID != callerCourierID {
			return fmt.Errorf("order %d is not assigned to courier %d: %w", orderID, callerCourierID, apperr.ErrForbidden)
		}
		if !order.Status.CanTransitionTo(domain.OrderDelivered) {
			return &apperr.StatusError{OrderID: orderID, Status: string(order.Status), Err: apperr.ErrInvalidState}
		}

		now := s.now()
		if err := tx.MarkDelivered(ctx, orderID, now); err != nil {
			return err
		}
		completed, err := tx.FinishCurrentOrder(ctx, callerCourierID)
		if err != nil {
			return err
		}

		result = domain.CompleteResult{
			OrderID:         orderID,
			CourierID:       callerCourierID,
			DeliveredAt:     now,
			CompletedOrders: completed,
		}
		return nil
	})
	s.observe(opComplete, err)
	if err != nil {
		s.logger.Warn("complete rejected",
			logx.Int64("order_id", orderID),
			logx.Int64("courier_id", callerCourierID),
			logx.Err(err),
		)
		return domain.CompleteResult{}, err
	}

	s.logger.Info("order delivered",
		logx.String("event", "order_delivered"),
		logx.Int64("order_id", result.OrderID),
		logx.Int64("courier_id", result.CourierID),
		logx.Int("completed_orders", result.CompletedOrders),
	)
	return result, nil
}

// Nearest returns the pending order whose destination is closest to the courier.
// It returns nil, nil when the courier has no position or no pending order has coordinates.
// Equal distances resolve to the lowest order id.
func (s *Service) Nearest(ctx context.Context, courierID int64) (*domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	courier, err := s.couriers.Get(ctx, courierID)
	if err != nil {
		return nil, err
	}
	if courier == nil {
		return nil, apperr.NotFound("courier", courierID)
	}
	if !courier.HasPosition() {
		return nil, nil
	}

	pending, err := s.orders.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	var (
		best     *domain.Order
		bestDist float64
	)
	for i := range pending {
		o := &pending[i]
		if o.Destination == nil {
			continue
		}
		d := geo.Distance(*courier.Position, *o.Destination)
		if best == nil || d < bestDist || (d == bestDist && o.ID < best.ID) {
			best, bestDist = o, d
		}
	}
	return best, nil
}

const (
	maxAddressLen        = 200
	maxRecipientNameLen  = 100
	maxRecipientPhoneLen = 20
	maxCommentLen        = 500
)

func validateRecipient(address string, r domain.Recipient) error {
	tooLong := func(v *string, limit int) bool {
		return v != nil && utf8.RuneCountInString(*v) > limit
	}
	switch {
	case utf8.RuneCountInString(address) > maxAddressLen:
		return apperr.Invalid("address", fmt.Sprintf("longer than %d", maxAddressLen))
	case tooLong(r.Name, maxRecipientNameLen):
		return apperr.Invalid("recipient_name", fmt.Sprintf("longer than %d", maxRecipientNameLen))
	case tooLong(r.Phone, maxRecipientPhoneLen):
		return apperr.Invalid("recipient_phone", fmt.Sprintf("longer than %d", maxRecipientPhoneLen))
	case r.Phone != nil && *r.Phone != "" && !strings.HasPrefix(*r.Phone, "+"):
		return apperr.Invalid("recipient_phone", "must start with +")
	case tooLong(r.Comment, maxCommentLen):
		return apperr.Invalid("comment", fmt.Sprintf("longer than %d", maxCommentLen))
	}
	return nil
}

func (s *Service) observe(op string, err error) {
	s.ops.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrCourierBusy):
		return "courier_busy"
	case errors.Is(err, apperr.ErrOrderNotAvailable):
		return "order_not_available"
	case errors.Is(err, apperr.ErrForbidden):
		return "forbidden"
	case errors.Is(err, apperr.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, apperr.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return metrics.OutcomeError
	}
}
