package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"courier-dispatch/internal/logx"
)

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Warn("json encode failed",
			logx.String("request_id", reqID(r.Context())),
			logx.Err(err),
		)
	}
}

// errResponse is the body of every error reply.
// Detail carries the business error text; the remaining fields are set
// when the error names them.
type errResponse struct {
	Error              string `json:"error"`
	Code               string `json:"code"`
	Detail             string `json:"detail,omitempty"`
	Resource           string `json:"resource,omitempty"`
	ResourceID         *int64 `json:"resource_id,omitempty"`
	OrderStatus        string `json:"order_status,omitempty"`
	Field              string `json:"field,omitempty"`
	ConflictingOrderID *int64 `json:"conflicting_order_id,omitempty"`
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeErrorBody(logger, w, r, status, errResponse{Error: msg, Code: code})
}

func writeErrorBody(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, body errResponse) {
	logger.Debug("http error",
		logx.String("request_id", reqID(r.Context())),
		logx.Int("status", status),
		logx.String("code", body.Code),
		logx.String("msg", body.Error),
	)
	writeJSON(logger, w, r, status, body)
}

// maxBodyBytes caps request bodies; larger ones get 413.
const maxBodyBytes = 1 << 20

// decodeJSON reads exactly one JSON value into dst, rejecting unknown fields.
// On failure it has already written the 4xx reply.
func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		if _, next := dec.Token(); next == io.EOF {
			return true
		}
		err = errors.New("trailing data")
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(logger, w, r, http.StatusRequestEntityTooLarge, codeInvalidInput, "body too large")
		return false
	}
	writeError(logger, w, r, http.StatusBadRequest, codeInvalidInput, "invalid json: "+err.Error())
	return false
}

// pathID parses a positive id URL parameter and replies 400 when it is malformed.
func pathID(logger logx.Logger, w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(logger, w, r, http.StatusBadRequest, codeInvalidInput, "invalid "+name)
		return 0, false
	}
	return id, true
}
