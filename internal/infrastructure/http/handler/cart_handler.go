package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/storefront-api/internal/app/dto"
	"github.com/mrops-br/storefront-api/internal/app/service"
	"github.com/mrops-br/storefront-api/internal/infrastructure/http/response"
)

// maxBodyBytes bounds cart request bodies
const maxBodyBytes = 1 << 16

// CartHandler handles HTTP requests for cart sessions
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(service *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger,
	}
}

func (h *CartHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

// CreateCart handles POST /carts
func (h *CartHandler) CreateCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.CreateCart(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", "/carts/"+cart.ID)
	response.JSON(w, http.StatusCreated, cart)
}

// GetCart handles GET /carts/{id}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, cart)
}

// DeleteCart handles DELETE /carts/{id}
func (h *CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCart(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.NoContent(w)
}

// AddItem handles POST /carts/{id}/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCartItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	cart, err := h.service.AddItem(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, cart)
}

// SetQuantity handles PUT /carts/{id}/items/{productID}
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req dto.SetQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	cart, err := h.service.SetQuantity(r.Context(),
		chi.URLParam(r, "id"),
		chi.URLParam(r, "productID"),
		&req,
	)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /carts/{id}/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.RemoveItem(r.Context(),
		chi.URLParam(r, "id"),
		chi.URLParam(r, "productID"),
	)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, cart)
}

// ClearCart handles DELETE /carts/{id}/items
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.ClearCart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, cart)
}
