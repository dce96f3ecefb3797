package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"medcart/internal/gateway"
	"medcart/internal/lifecycle"
	"medcart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order lifecycle HTTP requests.
type OrderHandler struct {
	gateway gateway.SyncGateway
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(gw gateway.SyncGateway, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		gateway: gw,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// TransitionRequest is the payload for requesting a lifecycle action.
type TransitionRequest struct {
	Action string `json:"action"`
}

// OrderResponse wraps an order together with the actions currently
// legal for it, which the views use to enable or disable buttons.
type OrderResponse struct {
	Order   *model.Order        `json:"order"`
	Actions []model.OrderAction `json:"actions"`
}

// List handles GET /api/orders?scope= requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	scope := model.Scope(r.URL.Query().Get("scope"))
	switch scope {
	case model.ScopeAdmin, model.ScopeDelivery, model.ScopeCustomer:
	default:
		writeError(w, http.StatusBadRequest, "scope must be admin, delivery or customer", h.logger)
		return
	}

	orders, err := h.gateway.ListOrders(r.Context(), scope)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, OrderResponse{Order: order, Actions: lifecycle.ActionsFor(order.Status)})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderIDFromPath(w, r.URL.Path)
	if !ok {
		return
	}

	order, err := h.gateway.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, OrderResponse{Order: order, Actions: lifecycle.ActionsFor(order.Status)})
}

// Transition handles POST /api/orders/{id}/transition requests.
func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/transition")
	id, ok := h.orderIDFromPath(w, path)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	action, err := lifecycle.ParseAction(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	order, err := h.gateway.RequestTransition(r.Context(), id, action)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, OrderResponse{Order: order, Actions: lifecycle.ActionsFor(order.Status)})
}

// orderIDFromPath parses the order UUID out of /api/orders/{id}.
func (h *OrderHandler) orderIDFromPath(w http.ResponseWriter, path string) (uuid.UUID, bool) {
	raw := strings.TrimPrefix(path, "/api/orders/")
	raw = strings.TrimSuffix(raw, "/")

	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID", h.logger)
		return uuid.Nil, false
	}
	return id, true
}
