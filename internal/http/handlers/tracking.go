package handlers

import (
	"net/http"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/identity"
	"courier-dispatch/internal/logx"
)

// TrackingHandler serves courier position endpoints.
type TrackingHandler struct {
	uc     trackingUsecase
	logger logx.Logger
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(logger logx.Logger, uc trackingUsecase) *TrackingHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &TrackingHandler{uc: uc, logger: logger}
}

// UpdatePosition handles POST /tracking/update_position for the authenticated courier.
func (h *TrackingHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
		return
	}
	var req positionRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	switch {
	case req.Latitude == nil:
		writeAppError(h.logger, w, r, apperr.Invalid("latitude", "is required"))
		return
	case req.Longitude == nil:
		writeAppError(h.logger, w, r, apperr.Invalid("longitude", "is required"))
		return
	}

	p, err := h.uc.ReportPosition(r.Context(), caller.CourierID, *req.Latitude, *req.Longitude)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, positionToResponse(p))
}

// Position handles GET /tracking/position/{courier_id}.
func (h *TrackingHandler) Position(w http.ResponseWriter, r *http.Request) {
	courierID, ok := pathID(h.logger, w, r, "courier_id")
	if !ok {
		return
	}
	p, err := h.uc.CourierPosition(r.Context(), courierID)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, positionToResponse(p))
}

// AllPositions handles GET /tracking/all_positions.
func (h *TrackingHandler) AllPositions(w http.ResponseWriter, r *http.Request) {
	views, err := h.uc.FullPositionSnapshot(r.Context())
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	if views == nil {
		views = []domain.CourierPositionView{}
	}
	writeJSON(h.logger, w, r, http.StatusOK, views)
}
