package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mrops-br/storefront-api/internal/app/service"
	"github.com/mrops-br/storefront-api/internal/infrastructure/http/response"
)

var errInternal = errors.New("internal server error")

// writeServiceError maps a service error to its HTTP status. Internal
// failures are logged and reported without their details.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case service.IsInvalidInput(err):
		response.Error(w, http.StatusBadRequest, err)
	case service.IsNotFound(err):
		response.Error(w, http.StatusNotFound, err)
	default:
		logger.ErrorContext(r.Context(), "Request failed",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusInternalServerError, errInternal)
	}
}
