package handlers

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/broadcast"
	"courier-dispatch/internal/identity"
	"courier-dispatch/internal/logx"
)

const (
	defaultWriteTimeout = 5 * time.Second
	maxInboundFrame     = 4 << 10
)

// StreamHandler upgrades courier and observer connections and hands them to the hub.
type StreamHandler struct {
	uc           streamUsecase
	logger       logx.Logger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

// NewStreamHandler creates a StreamHandler. writeTimeout bounds every outbound frame.
func NewStreamHandler(logger logx.Logger, uc streamUsecase, writeTimeout time.Duration) *StreamHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &StreamHandler{
		uc:           uc,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Courier handles GET /ws/courier. Inbound frames are position reports of the authenticated courier.
func (h *StreamHandler) Courier(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
		return
	}
	conn, err := h.upgrade(w, r)
	if err != nil {
		return
	}

	err = h.uc.ConnectCourier(r.Context(), caller.CourierID, conn)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrNotFound):
		h.logger.Info("courier stream closed for unknown courier", logx.Int64("courier_id", caller.CourierID))
	default:
		h.logger.Warn("courier stream ended with error",
			logx.Int64("courier_id", caller.CourierID),
			logx.Err(err),
		)
	}
}

// Observer handles GET /ws/observer. The stream is push-only.
func (h *StreamHandler) Observer(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrade(w, r)
	if err != nil {
		return
	}
	if err := h.uc.SubscribeObserver(r.Context(), conn); err != nil {
		h.logger.Warn("observer stream ended with error", logx.Err(err))
	}
}

func (h *StreamHandler) upgrade(w http.ResponseWriter, r *http.Request) (*wsConn, error) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Debug("websocket upgrade failed",
			logx.String("request_id", reqID(r.Context())),
			logx.Err(err),
		)
		return nil, err
	}
	c.SetReadLimit(maxInboundFrame)
	return &wsConn{c: c, writeTimeout: h.writeTimeout}, nil
}

// wsConn adapts a websocket connection to broadcast.Conn.
type wsConn struct {
	c            *websocket.Conn
	writeTimeout time.Duration

	mu        sync.Mutex
	closeOnce sync.Once
}

var _ broadcast.Conn = (*wsConn)(nil)

func (w *wsConn) ReadMessage() (int, []byte, error) {
	return w.c.ReadMessage()
}

func (w *wsConn) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.c.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
		return err
	}
	return w.c.WriteJSON(v)
}

func (w *wsConn) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.c.Close() })
	return err
}
