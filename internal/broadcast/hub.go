// Package broadcast keeps live courier and observer streams and pushes
// position snapshots to observers after every committed change.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/metrics"
)

// ErrHubClosed is returned when a stream is handed to a hub that has been closed.
var ErrHubClosed = errors.New("broadcast hub closed")

const (
	defaultSendBuffer      = 8
	defaultSnapshotTimeout = 3 * time.Second
)

// Options tune a Hub. Zero values fall back to defaults.
type Options struct {
	SendBuffer      int
	SnapshotTimeout time.Duration
	Relay           Relay
	Metrics         *metrics.Broadcast
	Logger          logx.Logger
}

// Hub is the registry of live streams and the single fan-out loop.
type Hub struct {
	source          SnapshotSource
	relay           Relay
	metrics         *metrics.Broadcast
	logger          logx.Logger
	sendBuffer      int
	snapshotTimeout time.Duration
	now             func() time.Time

	// trigger is a coalescing signal; remote carries signals received from the relay.
	trigger chan struct{}
	remote  chan struct{}

	// fanMu orders snapshot reads with observer registration.
	fanMu sync.Mutex

	mu        sync.Mutex
	observers map[uuid.UUID]*observer
	couriers  map[int64]*courierConn
	closed    bool

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewHub creates a Hub reading snapshots from source.
func NewHub(source SnapshotSource, opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if opts.SnapshotTimeout <= 0 {
		opts.SnapshotTimeout = defaultSnapshotTimeout
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewBroadcast()
	}
	if opts.Logger == nil {
		opts.Logger = logx.Nop()
	}
	return &Hub{
		source:          source,
		relay:           opts.Relay,
		metrics:         opts.Metrics,
		logger:          opts.Logger.With(logx.String("component", "broadcast")),
		sendBuffer:      opts.SendBuffer,
		snapshotTimeout: opts.SnapshotTimeout,
		now:             func() time.Time { return time.Now().UTC() },
		trigger:         make(chan struct{}, 1),
		remote:          make(chan struct{}, 1),
		observers:       make(map[uuid.UUID]*observer),
		couriers:        make(map[int64]*courierConn),
		done:            make(chan struct{}),
	}
}

// Notify schedules a fan-out. It never blocks; signals raised while one is pending coalesce.
// Call it only after the change has been committed.
func (h *Hub) Notify() {
	signal(h.trigger)
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Run drives the fan-out loop until ctx is done or the hub is closed.
func (h *Hub) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if h.relay != nil && h.track() {
		go func() {
			defer h.wg.Done()
			if err := h.relay.Subscribe(ctx, func() { signal(h.remote) }); err != nil && ctx.Err() == nil {
				h.logger.Error("relay subscription stopped", logx.Err(err))
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.done:
			return nil
		case <-h.trigger:
			if h.relay == nil {
				h.fanOut(ctx)
				continue
			}
			if err := h.publish(ctx); err != nil {
				h.logger.Warn("relay publish failed, fanning out locally", logx.Err(err))
				h.fanOut(ctx)
			}
		case <-h.remote:
			h.fanOut(ctx)
		}
	}
}

func (h *Hub) publish(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.snapshotTimeout)
	defer cancel()
	return h.relay.Publish(ctx)
}

func (h *Hub) snapshot(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, h.snapshotTimeout)
	defer cancel()
	views, err := h.source.ReadAll(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Type: MessageTypeSnapshot, Couriers: views, At: h.now()}, nil
}

// track counts a hub goroutine in wg, unless the hub is already closed.
func (h *Hub) track() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.wg.Add(1)
	return true
}

func (h *Hub) fanOut(ctx context.Context) {
	h.fanMu.Lock()
	defer h.fanMu.Unlock()

	// Registration also holds fanMu, so an observer added later reads its own fresh snapshot.
	if h.ObserverCount() == 0 {
		return
	}

	snap, err := h.snapshot(ctx)
	if err != nil {
		h.logger.Warn("snapshot read failed", logx.Err(err))
		return
	}

	h.mu.Lock()
	targets := make([]*observer, 0, len(h.observers))
	for _, o := range h.observers {
		targets = append(targets, o)
	}
	h.mu.Unlock()

	for _, o := range targets {
		if o.enqueue(snap) {
			h.metrics.Dropped.Inc()
		}
	}
	h.metrics.Snapshots.Inc()
	h.logger.Debug("snapshot fanned out",
		logx.Int("observers", len(targets)),
		logx.Int("couriers", len(snap.Couriers)),
	)
}

// SubscribeObserver registers an observer stream. The current snapshot is queued
// before registration so it is always the first frame the observer receives.
// It blocks until the observer disconnects or the hub is closed.
func (h *Hub) SubscribeObserver(ctx context.Context, conn Conn) error {
	o := newObserver(conn, h.sendBuffer)

	h.fanMu.Lock()
	snap, err := h.snapshot(ctx)
	if err != nil {
		h.fanMu.Unlock()
		_ = conn.Close()
		return fmt.Errorf("initial snapshot: %w", err)
	}
	o.enqueue(snap)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		h.fanMu.Unlock()
		_ = conn.Close()
		return ErrHubClosed
	}
	h.observers[o.id] = o
	h.metrics.Observers.Set(float64(len(h.observers)))
	// Add under mu: Close marks the hub closed under mu before it waits.
	h.wg.Add(1)
	h.mu.Unlock()
	h.fanMu.Unlock()

	h.logger.Info("observer connected", logx.String("observer_id", o.id.String()))

	go func() {
		defer h.wg.Done()
		h.writeLoop(o)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.removeObserver(o)
	h.logger.Info("observer disconnected", logx.String("observer_id", o.id.String()))
	return nil
}

func (h *Hub) writeLoop(o *observer) {
	for {
		select {
		case <-o.done:
			return
		case snap := <-o.send:
			if err := o.conn.WriteJSON(snap); err != nil {
				h.logger.Warn("observer write failed",
					logx.String("observer_id", o.id.String()),
					logx.Err(err),
				)
				h.removeObserver(o)
				return
			}
		}
	}
}

func (h *Hub) removeObserver(o *observer) {
	h.mu.Lock()
	if cur, ok := h.observers[o.id]; ok && cur == o {
		delete(h.observers, o.id)
		h.metrics.Observers.Set(float64(len(h.observers)))
	}
	h.mu.Unlock()
	o.close()
}

// ConnectCourier registers the courier stream, replacing any previous stream for
// the same courier, and applies its position reports in arrival order.
// It blocks until the stream ends. An unknown courier closes the stream with apperr.ErrNotFound.
func (h *Hub) ConnectCourier(ctx context.Context, courierID int64, conn Conn, sink PositionSink) error {
	cc := &courierConn{id: courierID, conn: conn}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return ErrHubClosed
	}
	old := h.couriers[courierID]
	h.couriers[courierID] = cc
	h.metrics.Couriers.Set(float64(len(h.couriers)))
	h.mu.Unlock()

	log := h.logger.With(logx.Int64("courier_id", courierID))
	if old != nil {
		old.close()
		log.Info("courier stream replaced")
	} else {
		log.Info("courier connected")
	}
	defer h.removeCourier(cc)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Info("courier disconnected")
			return nil
		}

		var r positionReport
		if err := json.Unmarshal(data, &r); err != nil || r.Latitude == nil || r.Longitude == nil {
			log.Warn("malformed position report skipped", logx.Int("bytes", len(data)))
			continue
		}

		if err := sink.UpdateCourierPosition(ctx, courierID, *r.Latitude, *r.Longitude); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				log.Warn("unknown courier, closing stream")
				return err
			}
			log.Warn("position report rejected", logx.Err(err))
		}
	}
}

func (h *Hub) removeCourier(cc *courierConn) {
	h.mu.Lock()
	if cur, ok := h.couriers[cc.id]; ok && cur == cc {
		delete(h.couriers, cc.id)
		h.metrics.Couriers.Set(float64(len(h.couriers)))
	}
	h.mu.Unlock()
	cc.close()
}

// ObserverCount returns the number of registered observers.
func (h *Hub) ObserverCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// CourierCount returns the number of registered courier streams.
func (h *Hub) CourierCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.couriers)
}

// Close disconnects every stream and stops the fan-out loop. It is safe to call more than once.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		observers := h.observers
		couriers := h.couriers
		h.observers = make(map[uuid.UUID]*observer)
		h.couriers = make(map[int64]*courierConn)
		h.metrics.Observers.Set(0)
		h.metrics.Couriers.Set(0)
		h.mu.Unlock()

		close(h.done)
		for _, o := range observers {
			o.close()
		}
		for _, c := range couriers {
			c.close()
		}
	})
	h.wg.Wait()
	return nil
}
