package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/storefront-api/internal/app/dto"
	"github.com/mrops-br/storefront-api/internal/app/service"
	"github.com/mrops-br/storefront-api/internal/infrastructure/http/response"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r.URL.Query())
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to parse catalog query",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	products, err := h.service.ListProducts(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, products)
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// Facets handles GET /products/facets
func (h *ProductHandler) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.service.Facets(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, facets)
}

// parseListQuery reads catalog filters. Set parameters may repeat or hold
// comma-separated values: ?category=Home&category=Tech or ?category=Home,Tech.
func parseListQuery(values url.Values) (*dto.ListProductsQuery, error) {
	q := &dto.ListProductsQuery{
		Categories: splitValues(values["category"]),
		Brands:     splitValues(values["brand"]),
		Sort:       values.Get("sort"),
	}

	var err error
	if q.MinPrice, err = parseDecimal(values, "min_price"); err != nil {
		return nil, err
	}
	if q.MaxPrice, err = parseDecimal(values, "max_price"); err != nil {
		return nil, err
	}

	if raw := values.Get("min_rating"); raw != "" {
		if q.MinRating, err = strconv.ParseFloat(raw, 64); err != nil {
			return nil, fmt.Errorf("invalid min_rating %q", raw)
		}
	}

	if raw := values.Get("eco"); raw != "" {
		if q.EcoOnly, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("invalid eco %q", raw)
		}
	}

	return q, nil
}

func parseDecimal(values url.Values, key string) (*decimal.Decimal, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &d, nil
}

func splitValues(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
