package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "divcli/internal/errors"
	"divcli/internal/forecast"
	"divcli/internal/middleware"
	chart "divcli/internal/render"
	"divcli/internal/services"
	"divcli/pkg/contracts/domain"
)

// Response formats accepted by ?format=.
const (
	FormatJSON = "json"
	FormatPNG  = "png"
)

// BaselinesResponse is the body of GET /api/v1/baselines.
type BaselinesResponse struct {
	Capital float64         `json:"capital"`
	Days    int             `json:"days"`
	Series  []domain.Series `json:"series"`
}

// ForecastHandler serves dividend forecasts, low-risk baselines and quotes
type ForecastHandler struct {
	service      ForecastServiceInterface
	renderer     chart.Renderer
	defaults     services.ForecastRequest
	validator    *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewForecastHandler creates a forecast handler. Fields missing from a
// request body keep the values of defaults.
func NewForecastHandler(service ForecastServiceInterface, renderer chart.Renderer, defaults services.ForecastRequest,
	validator *middleware.ValidationMiddleware, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ForecastHandler {
	return &ForecastHandler{
		service:      service,
		renderer:     renderer,
		defaults:     defaults,
		validator:    validator,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "forecast")),
	}
}

// RegisterRoutes adds the forecast, baseline and quote routes to r
func (h *ForecastHandler) RegisterRoutes(r chi.Router) {
	r.With(h.validator.ValidateRequest).Post("/forecast", h.Forecast)
	r.Get("/baselines", h.Baselines)
	r.With(h.SymbolCtx).Get("/quotes/{symbol}", h.Quote)
}

func symbolParam(r *http.Request) string {
	return strings.ToUpper(chi.URLParam(r, "symbol"))
}

// SymbolCtx validates the symbol URL parameter. Lower-case symbols are
// accepted.
func (h *ForecastHandler) SymbolCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := struct {
			Symbol string `json:"symbol" validate:"required,ticker"`
		}{symbolParam(r)}
		if err := h.validator.ValidateStruct(req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Forecast handles POST /api/v1/forecast?format=json|png
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", []string{FormatJSON, FormatPNG}, FormatJSON)
	if !ok {
		return
	}

	req := h.defaults
	req.Targets = nil
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Forecast(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if format == FormatPNG {
		h.writePNG(w, r, res.Chart())
		return
	}
	render.JSON(w, r, res)
}

// Baselines handles GET /api/v1/baselines?capital=&years=&format=
func (h *ForecastHandler) Baselines(w http.ResponseWriter, r *http.Request) {
	capital, ok := h.query.ValidateFloat(w, r, "capital", h.defaults.Capital)
	if !ok {
		return
	}
	years, ok := h.query.ValidateInt(w, r, "years", 1, 100, 1)
	if !ok {
		return
	}
	format, ok := h.query.ValidateEnum(w, r, "format", []string{FormatJSON, FormatPNG}, FormatJSON)
	if !ok {
		return
	}

	days := years * forecast.DaysPerYear
	series, err := h.service.Baselines(r.Context(), capital, days)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if format == FormatPNG {
		h.writePNG(w, r, chart.Chart{
			Title:  "Low-risk investment gains",
			XLabel: "Days",
			YLabel: "Cumulative gain",
			Series: series,
		})
		return
	}
	render.JSON(w, r, BaselinesResponse{Capital: capital, Days: days, Series: series})
}

// Quote handles GET /api/v1/quotes/{symbol}
func (h *ForecastHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Quote(r.Context(), symbolParam(r))
	if err != nil {
		if errors.Is(err, services.ErrProviderDisabled) {
			err = apierrors.ErrProviderDisabled
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, q)
}

// writePNG renders into a buffer first so a rendering failure can still
// produce a problem response.
func (h *ForecastHandler) writePNG(w http.ResponseWriter, r *http.Request, c chart.Chart) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, c); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render chart", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
