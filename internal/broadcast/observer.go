package broadcast

import (
	"sync"

	"github.com/google/uuid"
)

type observer struct {
	id        uuid.UUID
	conn      Conn
	send      chan Snapshot
	done      chan struct{}
	closeOnce sync.Once
}

func newObserver(conn Conn, buffer int) *observer {
	return &observer{
		id:   uuid.New(),
		conn: conn,
		send: make(chan Snapshot, buffer),
		done: make(chan struct{}),
	}
}

// enqueue never blocks. When the queue is full the oldest snapshot is discarded.
// Callers must serialize enqueue calls for the same observer.
func (o *observer) enqueue(s Snapshot) (dropped bool) {
	select {
	case o.send <- s:
		return false
	default:
	}
	select {
	case <-o.send:
		dropped = true
	default:
	}
	select {
	case o.send <- s:
	default:
		dropped = true
	}
	return dropped
}

func (o *observer) close() {
	o.closeOnce.Do(func() {
		close(o.done)
		_ = o.conn.Close()
	})
}

type courierConn struct {
	id        int64
	conn      Conn
	closeOnce sync.Once
}

func (c *courierConn) close() {
	c.closeOnce.Do(func() { _ = c.conn.Close() })
}
