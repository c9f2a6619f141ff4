package handlers

import (
	"net/http"
	"strconv"

	"courier-dispatch/internal/identity"
	"courier-dispatch/internal/logx"
)

// CourierHandler serves HTTP endpoints for courier resources.
type CourierHandler struct {
	uc     courierUsecase
	logger logx.Logger
}

// NewCourierHandler wires a courierUsecase into HTTP handlers.
func NewCourierHandler(logger logx.Logger, uc courierUsecase) *CourierHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &CourierHandler{uc: uc, logger: logger}
}

// GetByID handles GET /couriers/{id}.
func (h *CourierHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}
	c, err := h.uc.GetCourier(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, courierToResponse(*c))
}

// List handles GET /couriers.
func (h *CourierHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		limitPtr, offsetPtr *int
	)
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			writeError(h.logger, w, r, http.StatusBadRequest, codeInvalidInput, "invalid limit")
			return
		}
		limitPtr = &v
	}
	if s := q.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			writeError(h.logger, w, r, http.StatusBadRequest, codeInvalidInput, "invalid offset")
			return
		}
		offsetPtr = &v
	}

	list, err := h.uc.ListCouriers(r.Context(), limitPtr, offsetPtr)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, couriersToResponse(list))
}

// Create handles POST /couriers.
func (h *CourierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCourierRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	id, err := h.uc.CreateCourier(r.Context(), req.toModel())
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/couriers/"+strconv.FormatInt(id, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, map[string]any{"id": id})
}

// Update handles PATCH /couriers/{id} with partial updates from the request body.
func (h *CourierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}
	var req updateCourierRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	if _, err := h.uc.UpdateCourier(r.Context(), req.toModel(id)); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Replace handles PUT /couriers/{id}: name and status are both set.
func (h *CourierHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}
	var req replaceCourierRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	u, err := req.toModel(id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}

	if _, err := h.uc.UpdateCourier(r.Context(), u); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	c, err := h.uc.GetCourier(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, courierToResponse(*c))
}

// Delete handles DELETE /couriers/{id}.
func (h *CourierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}
	if err := h.uc.DeleteCourier(r.Context(), id); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActiveOrder handles GET /couriers/{id}/active-order.
func (h *CourierHandler) ActiveOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}
	o, err := h.uc.ActiveOrder(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}

// Orders handles GET /couriers/{id}/orders.
func (h *CourierHandler) Orders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}
	list, err := h.uc.CourierOrders(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ordersToResponse(list))
}

// Me handles GET /couriers/me for the authenticated courier.
func (h *CourierHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
		return
	}
	c, err := h.uc.GetCourier(r.Context(), caller.CourierID)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, courierToResponse(*c))
}

// SetMyStatus handles PATCH /couriers/me/status for the authenticated courier.
func (h *CourierHandler) SetMyStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
		return
	}
	var req statusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	if err := h.uc.SetCourierStatus(r.Context(), caller.CourierID, req.Status); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, map[string]any{
		"courier_id": caller.CourierID,
		"status":     req.Status,
	})
}
