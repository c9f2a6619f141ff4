package handlers

import (
	"errors"
	"net/http"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/logx"
)

const (
	codeInvalidInput         = "invalid_input"
	codeNotFound             = "not_found"
	codePositionNotAvailable = "position_not_available"
	codeUnauthorized         = "unauthorized"
	codeForbidden            = "forbidden"
	codeCourierBusy          = "courier_busy"
	codeOrderNotAvailable    = "order_not_available"
	codeInvalidState         = "invalid_state"
	codeConflict             = "conflict"
	codeStoreUnavailable     = "store_unavailable"
	codeInternal             = "internal_error"
)

// retryAfterSeconds is advertised on 503 replies.
const retryAfterSeconds = "1"

// writeAppError maps an application error onto its HTTP reply. Client
// errors echo the business message in detail; 5xx replies never do.
func writeAppError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status, body := http.StatusInternalServerError, errResponse{Detail: err.Error()}

	var busy *apperr.CourierBusyError
	switch {
	case errors.As(err, &busy):
		orderID := busy.OrderID
		status, body.Error, body.Code = http.StatusConflict, "courier already has an active order", codeCourierBusy
		body.ConflictingOrderID = &orderID
	case errors.Is(err, apperr.ErrCourierBusy):
		status, body.Error, body.Code = http.StatusConflict, "courier already has an active order", codeCourierBusy
	case errors.Is(err, apperr.ErrPositionNotAvailable):
		status, body.Error, body.Code = http.StatusNotFound, "position not available", codePositionNotAvailable
	case errors.Is(err, apperr.ErrNotFound):
		status, body.Error, body.Code = http.StatusNotFound, "not found", codeNotFound
	case errors.Is(err, apperr.ErrInvalid):
		status, body.Error, body.Code = http.StatusBadRequest, "invalid input", codeInvalidInput
	case errors.Is(err, apperr.ErrUnauthorized):
		status, body.Error, body.Code = http.StatusUnauthorized, "unauthorized", codeUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		status, body.Error, body.Code = http.StatusForbidden, "order belongs to another courier", codeForbidden
	case errors.Is(err, apperr.ErrOrderNotAvailable):
		status, body.Error, body.Code = http.StatusConflict, "order is not pending", codeOrderNotAvailable
	case errors.Is(err, apperr.ErrInvalidState):
		status, body.Error, body.Code = http.StatusConflict, "order is not assigned", codeInvalidState
	case errors.Is(err, apperr.ErrConflict):
		status, body.Error, body.Code = http.StatusConflict, "conflict", codeConflict
	case errors.Is(err, apperr.ErrStoreUnavailable):
		logger.Error("store unavailable",
			logx.String("request_id", reqID(r.Context())),
			logx.Err(err),
		)
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeError(logger, w, r, http.StatusServiceUnavailable, codeStoreUnavailable, "store unavailable")
		return
	default:
		logger.Error("unexpected error",
			logx.String("request_id", reqID(r.Context())),
			logx.String("path", r.URL.Path),
			logx.Err(err),
		)
		writeError(logger, w, r, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	var missing *apperr.NotFoundError
	if errors.As(err, &missing) {
		id := missing.ID
		body.Resource, body.ResourceID = missing.Resource, &id
	}
	var state *apperr.StatusError
	if errors.As(err, &state) {
		body.OrderStatus = state.Status
	}
	var field *apperr.FieldError
	if errors.As(err, &field) {
		body.Field = field.Field
	}
	writeErrorBody(logger, w, r, status, body)
}
