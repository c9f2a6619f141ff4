// Package orders applies upstream order events to the dispatch core.
package orders

import (
	"context"
	"errors"
	"fmt"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
	"courier-dispatch/internal/logx"
)

// ErrRejected marks an event that can never be applied. Redelivering it is pointless.
var ErrRejected = errors.New("order event rejected")

// Processor processes order events. Every handler is idempotent so redelivery is safe.
type Processor struct {
	orders  OrderPort
	lookup  OrderLookup
	logger  logx.Logger
	factory *actionFactory
}

// NewProcessor creates a new orders.Processor.
func NewProcessor(orders OrderPort, lookup OrderLookup, logger logx.Logger) *Processor {
	if logger == nil {
		logger = logx.Nop()
	}
	p := &Processor{
		orders: orders,
		lookup: lookup,
		logger: logger.With(logx.String("component", "order_intake")),
	}
	p.factory = newActionFactory(p.onCreated, p.onRemoved)
	return p
}

// Handle processes a single orders.Event. Unknown kinds are ignored.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	fn, ok := p.factory.get(e.Kind)
	if !ok {
		p.logger.Debug("order event ignored",
			logx.String("kind", e.Kind),
			logx.String("external_id", e.ExternalID),
		)
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onCreated(ctx context.Context, e Event) error {
	in, err := newOrderFromEvent(e)
	if err != nil {
		return err
	}

	o, err := p.orders.CreateOrder(ctx, in)
	switch {
	case err == nil:
		p.logger.Info("order created from event",
			logx.Int64("order_id", o.ID),
			logx.String("external_id", e.ExternalID),
		)
		return nil
	case errors.Is(err, apperr.ErrConflict):
		p.logger.Debug("duplicate order event", logx.String("external_id", e.ExternalID))
		return nil
	case errors.Is(err, apperr.ErrInvalid):
		return fmt.Errorf("%w: external_id %q: %w", ErrRejected, e.ExternalID, err)
	default:
		return err
	}
}

func (p *Processor) onRemoved(ctx context.Context, e Event) error {
	id := e.OrderID
	if id == 0 {
		o, err := p.lookup.GetByExternalID(ctx, e.ExternalID)
		if err != nil {
			return err
		}
		if o == nil {
			return nil
		}
		id = o.ID
	}

	err := p.orders.DeleteOrder(ctx, id)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if err == nil {
		p.logger.Info("order removed by event",
			logx.Int64("order_id", id),
			logx.String("kind", e.Kind),
		)
	}
	return nil
}

func newOrderFromEvent(e Event) (domain.NewOrder, error) {
	in := domain.NewOrder{
		Address: e.Address,
		Recipient: domain.Recipient{
			Name:    e.RecipientName,
			Phone:   e.RecipientPhone,
			Comment: e.Comment,
		},
		Price: e.Price,
	}
	if e.ExternalID != "" {
		ext := e.ExternalID
		in.ExternalID = &ext
	}
	switch {
	case e.Latitude != nil && e.Longitude != nil:
		in.Destination = &geo.Point{Lat: *e.Latitude, Lon: *e.Longitude}
	case e.Latitude != nil || e.Longitude != nil:
		return domain.NewOrder{}, fmt.Errorf("%w: external_id %q: partial destination", ErrRejected, e.ExternalID)
	}
	return in, nil
}
