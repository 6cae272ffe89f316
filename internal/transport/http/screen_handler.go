package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "divcli/internal/errors"
	"divcli/internal/exporter"
	"divcli/internal/middleware"
	"divcli/internal/services"
)

// ScreenResponse is a screening result with the shortlist laid out as rows.
type ScreenResponse struct {
	*services.ScreenResult
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	Truncated bool       `json:"truncated,omitempty"`
}

// ScreenHandler serves spreadsheet categories and screening runs
type ScreenHandler struct {
	service      ScreeningServiceInterface
	defaults     services.ScreenCriteria
	validator    *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewScreenHandler creates a screen handler. Fields missing from a request
// body keep the values of defaults.
func NewScreenHandler(service ScreeningServiceInterface, defaults services.ScreenCriteria,
	validator *middleware.ValidationMiddleware, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ScreenHandler {
	return &ScreenHandler{
		service:      service,
		defaults:     defaults,
		validator:    validator,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "screen")),
	}
}

// RegisterRoutes adds the screening routes to r
func (h *ScreenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.Categories)
	r.With(h.validator.ValidateRequest).Post("/screen", h.Screen)
}

// Categories handles GET /api/v1/categories
func (h *ScreenHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.Categories(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"categories": cats})
}

// Screen handles POST /api/v1/screen?limit=N
func (h *ScreenHandler) Screen(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 0, 10000, 0)
	if !ok {
		return
	}

	criteria := h.defaults
	criteria.Stages = nil
	if r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &criteria); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}
	if err := h.validator.ValidateStruct(criteria); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Screen(r.Context(), criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp := ScreenResponse{ScreenResult: res, Rows: [][]string{}}
	if res.Table != nil {
		resp.Columns = res.Table.Headers()
		resp.Rows = exporter.TableRecords(res.Table)
	}
	if limit > 0 && len(resp.Rows) > limit {
		resp.Rows = resp.Rows[:limit]
		resp.Truncated = true
	}

	h.logger.InfoContext(r.Context(), "Screen served",
		slog.String("run_id", res.RunID),
		slog.Int("rows", len(resp.Rows)))
	render.JSON(w, r, resp)
}
