package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"medcart/internal/cart"
	"medcart/internal/gateway"
	"medcart/internal/model"
	"medcart/internal/stock"

	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	store   cart.Store
	gateway gateway.SyncGateway
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(store cart.Store, gw gateway.SyncGateway, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		store:   store,
		gateway: gw,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// AddItemRequest is the payload for adding a line to the cart.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest is the payload for setting an absolute quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse is the payload returned after cart reads and mutations.
// Grant is set after an add so the storefront can tell the customer when
// the quantity was clamped to the purchase limit.
type CartResponse struct {
	Cart  *model.Cart  `json:"cart"`
	Grant *stock.Grant `json:"grant,omitempty"`
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing X-Cart-ID header", h.logger)
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required", h.logger)
		return
	}

	grant, err := h.store.Add(r.Context(), cartID, req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	current, err := h.store.Get(r.Context(), cartID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, CartResponse{Cart: current, Grant: &grant})
}

// UpdateItem handles PUT /api/cart/items/{productId} requests.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing X-Cart-ID header", h.logger)
		return
	}

	productID := strings.TrimPrefix(r.URL.Path, "/api/cart/items/")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product ID is required", h.logger)
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	if err := h.store.UpdateQuantity(r.Context(), cartID, productID, req.Quantity); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	current, err := h.store.Get(r.Context(), cartID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, CartResponse{Cart: current})
}

// RemoveItem handles DELETE /api/cart/items/{productId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing X-Cart-ID header", h.logger)
		return
	}

	productID := strings.TrimPrefix(r.URL.Path, "/api/cart/items/")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product ID is required", h.logger)
		return
	}

	if err := h.store.Remove(r.Context(), cartID, productID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	current, err := h.store.Get(r.Context(), cartID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, CartResponse{Cart: current})
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing X-Cart-ID header", h.logger)
		return
	}

	current, err := h.store.Get(r.Context(), cartID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, CartResponse{Cart: current})
}

// Restore handles POST /api/cart/restore requests, reloading the cart
// from durable storage and revalidating it against the formulary.
func (h *CartHandler) Restore(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing X-Cart-ID header", h.logger)
		return
	}

	current, err := h.store.Restore(r.Context(), cartID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, CartResponse{Cart: current})
}

// Checkout handles POST /api/checkout requests.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cartID, ok := cartIDFrom(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing X-Cart-ID header", h.logger)
		return
	}

	customerID := r.Header.Get("X-Customer-ID")
	if customerID == "" {
		customerID = string(cartID)
	}

	order, err := h.gateway.Checkout(r.Context(), cartID, customerID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}
