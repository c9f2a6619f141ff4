// Package kafka consumes upstream order events.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"

	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/orders"
)

// HandleFunc processes a single orders.Event from Kafka.
type HandleFunc func(context.Context, orders.Event) error

var newConsumerGroup = sarama.NewConsumerGroup

const consumeRetryDelay = time.Second

// Consumer wraps a Sarama consumer group and dispatches events to a handler.
type Consumer struct {
	group      sarama.ConsumerGroup
	topic      string
	handler    HandleFunc
	logger     logx.Logger
	retryDelay time.Duration
}

// NewConsumer creates a new Kafka consumer. It returns nil, nil when Kafka is not configured.
func NewConsumer(logger logx.Logger, brokers []string, groupID, topic string, h HandleFunc) (*Consumer, error) {
	if logger == nil {
		logger = logx.Nop()
	}
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" || strings.TrimSpace(groupID) == "" {
		logger.Info("kafka consumer disabled: brokers, group or topic not set")
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	group, err := newConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		topic:   topic,
		handler: h,
		logger:  logger.With(logx.String("topic", topic), logx.String("group_id", groupID)),
	}, nil
}

// Run consumes until ctx is done. Rebalances and transient errors restart the
// session; a session that ended on a failed event or a consume error waits
// retryDelay before rejoining.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil {
		return nil
	}

	go c.drainErrors()

	h := &groupHandler{c: c}
	for {
		err := c.group.Consume(ctx, []string{c.topic}, h)
		failed := h.failed.Swap(false)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch {
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			return nil
		case err != nil:
			c.logger.Error("kafka consume error", logx.Err(err))
		case failed:
			c.logger.Warn("kafka session ended on a failed event, backing off")
		default:
			continue
		}
		if err := c.backoff(ctx); err != nil {
			return err
		}
	}
}

func (c *Consumer) backoff(ctx context.Context) error {
	d := c.retryDelay
	if d <= 0 {
		d = consumeRetryDelay
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Consumer) drainErrors() {
	for err := range c.group.Errors() {
		c.logger.Warn("kafka consumer group error", logx.Err(err))
	}
}

// Close leaves the group.
func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	return c.group.Close()
}

type groupHandler struct {
	c *Consumer
	// failed is set when a claim stopped on a transient handler error.
	failed atomic.Bool
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim marks a message only once it is applied or known to be unusable.
// A transient handler error ends the claim so the message is consumed again.
func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log := h.c.logger
	for msg := range claim.Messages() {
		var dto EventDTO
		if err := json.Unmarshal(msg.Value, &dto); err != nil {
			log.Warn("kafka bad json",
				logx.Int64("offset", msg.Offset),
				logx.Err(err),
			)
			sess.MarkMessage(msg, "")
			continue
		}
		if dto.empty() {
			log.Warn("kafka empty event", logx.Int64("offset", msg.Offset))
			sess.MarkMessage(msg, "")
			continue
		}

		ev := ToDomain(dto)
		if err := h.c.handler(sess.Context(), ev); err != nil {
			if IsPermanent(err) {
				log.Warn("kafka event rejected, skipping message",
					logx.String("event", ev.Kind),
					logx.String("external_id", ev.ExternalID),
					logx.Err(err),
				)
				sess.MarkMessage(msg, "")
				continue
			}
			log.Error("kafka handle failed, will retry",
				logx.String("event", ev.Kind),
				logx.String("external_id", ev.ExternalID),
				logx.Err(err),
			)
			h.failed.Store(true)
			return err
		}

		sess.MarkMessage(msg, "")
	}
	return nil
}
