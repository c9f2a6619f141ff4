package app

import (
	"context"
	"errors"
	"time"

	"courier-dispatch/internal/service/orders"
	"courier-dispatch/internal/transport/kafka"
)

const orderEventTimeout = 5 * time.Second

type orderEventHandler interface {
	Handle(ctx context.Context, e orders.Event) error
}

// makeOrdersKafka adapts the processor to the consumer. Rejected events are
// reported as permanent so the consumer skips them instead of redelivering.
func makeOrdersKafka(p orderEventHandler) kafka.HandleFunc {
	return func(ctx context.Context, event orders.Event) error {
		ctx, cancel := context.WithTimeout(ctx, orderEventTimeout)
		defer cancel()

		err := p.Handle(ctx, event)
		if errors.Is(err, orders.ErrRejected) {
			return kafka.Permanent(err)
		}
		return err
	}
}
