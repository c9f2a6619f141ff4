package handlers

import (
	"net/http"
	"strconv"

	"courier-dispatch/internal/identity"
	"courier-dispatch/internal/logx"
)

// OrderHandler serves the order lifecycle endpoints.
type OrderHandler struct {
	uc     orderUsecase
	logger logx.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(logger logx.Logger, uc orderUsecase) *OrderHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &OrderHandler{uc: uc, logger: logger}
}

// Create handles POST /orders.
// @Summary Create order
// @Tags orders
// @Accept json
// @Produce json
// @Param request body createOrderRequest true "Order payload"
// @Success 201 {object} orderDTO
// @Failure 400 {object} errResponse "invalid input"
// @Failure 409 {object} errResponse "duplicate external id"
// @Router /orders [post]
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	in, err := req.toModel()
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}

	o, err := h.uc.CreateOrder(r.Context(), in)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/orders/"+strconv.FormatInt(o.ID, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, orderToResponse(*o))
}

// ListAvailable handles GET /orders/available.
func (h *OrderHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	list, err := h.uc.ListPendingOrders(r.Context())
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ordersToResponse(list))
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}
	o, err := h.uc.GetOrder(r.Context(), id)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}

// Delete handles DELETE /orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}
	if err := h.uc.DeleteOrder(r.Context(), id); err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Assign handles POST /orders/{id}/assign/{courier_id}.
// @Summary Assign order to courier
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Param courier_id path int true "Courier ID"
// @Success 200 {object} assignResponse
// @Failure 404 {object} errResponse "order or courier not found"
// @Failure 409 {object} errResponse "courier busy or order not pending"
// @Failure 503 {object} errResponse "store unavailable"
// @Router /orders/{id}/assign/{courier_id} [post]
func (h *OrderHandler) Assign(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}
	courierID, ok := pathID(h.logger, w, r, "courier_id")
	if !ok {
		return
	}

	res, err := h.uc.AssignOrder(r.Context(), orderID, courierID)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, assignResultToResponse(res))
}

// Complete handles POST /orders/{id}/complete. The caller must own the order.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
		return
	}

	res, err := h.uc.CompleteOrder(r.Context(), orderID, caller.CourierID)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, completeResultToResponse(res))
}

// Nearest handles GET /orders/nearest/{courier_id}. An empty object means nothing to offer.
func (h *OrderHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	courierID, ok := pathID(h.logger, w, r, "courier_id")
	if !ok {
		return
	}
	o, err := h.uc.NearestPendingOrder(r.Context(), courierID)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	if o == nil {
		writeJSON(h.logger, w, r, http.StatusOK, struct{}{})
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}
