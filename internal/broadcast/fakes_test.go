package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

var errConnClosed = errors.New("use of closed connection")

type fakeConn struct {
	in       chan []byte
	closed   chan struct{}
	once     sync.Once
	writes   chan Snapshot
	writeErr error
	block    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 128),
		closed: make(chan struct{}),
		writes: make(chan Snapshot, 128),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case b, ok := <-c.in:
		if !ok {
			return 0, nil, io.EOF
		}
		return 1, b, nil
	case <-c.closed:
		return 0, nil, errConnClosed
	}
}

func (c *fakeConn) WriteJSON(v any) error {
	if c.block != nil {
		select {
		case <-c.block:
		case <-c.closed:
			return errConnClosed
		}
	}
	if c.writeErr != nil {
		return c.writeErr
	}
	select {
	case <-c.closed:
		return errConnClosed
	default:
	}
	c.writes <- v.(Snapshot)
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) sendReport(lat, lon float64) {
	b, _ := json.Marshal(map[string]float64{"latitude": lat, "longitude": lon})
	c.in <- b
}

type fakeSource struct {
	mu    sync.Mutex
	views []domain.CourierPositionView
	err   error
	reads int
}

func (s *fakeSource) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *fakeSource) set(views ...domain.CourierPositionView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = views
}

func (s *fakeSource) ReadAll(context.Context) ([]domain.CourierPositionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.CourierPositionView, len(s.views))
	copy(out, s.views)
	return out, nil
}

type report struct {
	courierID int64
	lat, lon  float64
}

type fakeSink struct {
	mu      sync.Mutex
	known   map[int64]bool
	reports []report
}

func (s *fakeSink) UpdateCourierPosition(_ context.Context, courierID int64, lat, lon float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.known[courierID] {
		return apperr.ErrNotFound
	}
	s.reports = append(s.reports, report{courierID, lat, lon})
	return nil
}

func (s *fakeSink) snapshot() []report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report(nil), s.reports...)
}

type fakeRelay struct {
	mu         sync.Mutex
	published  int
	subscribed int
	publishErr error
	signals    chan struct{}
}

func (r *fakeRelay) Publish(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published++
	return r.publishErr
}

func (r *fakeRelay) publishedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.published
}

func (r *fakeRelay) subscribedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subscribed
}

func (r *fakeRelay) Subscribe(ctx context.Context, onSignal func()) error {
	r.mu.Lock()
	r.subscribed++
	r.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.signals:
			onSignal()
		}
	}
}
