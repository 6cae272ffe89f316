package http

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "divcli/internal/errors"
	"divcli/internal/services"
)

// PortfolioHandler serves holdings summaries
type PortfolioHandler struct {
	service      PortfolioServiceInterface
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewPortfolioHandler creates a portfolio handler
func NewPortfolioHandler(service PortfolioServiceInterface, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		service:      service,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "portfolio")),
	}
}

// RegisterRoutes adds the portfolio route to r
func (h *PortfolioHandler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolio", h.Reports)
}

// Reports handles GET /api/v1/portfolio?owner=
func (h *PortfolioHandler) Reports(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	reports, err := h.service.Reports(r.Context(), owner)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoHoldings):
			err = apierrors.NotFoundError("portfolio " + owner)
		case errors.Is(err, fs.ErrNotExist):
			err = apierrors.NotFoundError("holdings file")
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"portfolios": reports})
}
