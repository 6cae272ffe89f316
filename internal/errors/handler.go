package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"divcli/internal/dataprocessing"
	"divcli/internal/forecast"
	"divcli/internal/marketdata"
	"divcli/internal/screening"
)

// Common error types following RFC 7807
const (
	TypeValidation      = "/errors/validation"
	TypeNotFound        = "/errors/not-found"
	TypeRateLimit       = "/errors/rate-limit"
	TypeInternal        = "/errors/internal"
	TypeServiceDown     = "/errors/service-unavailable"
	TypeTimeout         = "/errors/timeout"
	TypePayloadTooLarge = "/errors/payload-too-large"
)

// Domain-specific error types
const (
	TypeCategoryNotFound    = "/errors/data/category-not-found"
	TypeSymbolNotFound      = "/errors/data/symbol-not-found"
	TypeMissingColumn       = "/errors/data/missing-column"
	TypeDataCorrupted       = "/errors/data/corrupted"
	TypeInvalidForecast     = "/errors/forecast/invalid-parameters"
	TypeProviderUnavailable = "/errors/provider/unavailable"
	TypeProviderContract    = "/errors/provider/contract-violation"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)

	// Add stack trace in development
	if h.includeStack {
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	path := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Validation Failed",
			"One or more fields are invalid",
			path,
		).WithExtension("errors", validationDetails(fieldErrs))
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			TypePayloadTooLarge,
			"Payload Too Large",
			"The request body exceeds the maximum allowed size",
			path,
		).WithExtension("limit", tooLarge.Limit)
	}

	var assembly *dataprocessing.TableAssemblyError
	var missing *screening.MissingColumnError
	var provider *marketdata.ProviderError
	var appErr *AppError

	switch {
	case errors.Is(err, dataprocessing.ErrCategoryNotFound):
		return NewProblemDetails(http.StatusNotFound, TypeCategoryNotFound, "Category Not Found", err.Error(), path)

	case errors.Is(err, screening.ErrSymbolNotFound):
		return NewProblemDetails(http.StatusNotFound, TypeSymbolNotFound, "Symbol Not Found", err.Error(), path)

	case errors.As(err, &missing):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeMissingColumn,
			"Missing Column",
			err.Error(),
			path,
		).WithExtension("column", missing.Column).WithExtension("stage", missing.Stage)

	case errors.As(err, &assembly):
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeDataCorrupted,
			"Data Corrupted",
			"The spreadsheet produced columns of unequal length",
			path,
		).WithExtension("column", assembly.Column)

	case errors.Is(err, forecast.ErrInvalidParams):
		return NewProblemDetails(http.StatusBadRequest, TypeInvalidForecast, "Invalid Forecast Parameters", err.Error(), path)

	case errors.Is(err, marketdata.ErrNotFound):
		return NewProblemDetails(http.StatusNotFound, TypeNotFound, "Resource Not Found", err.Error(), path)

	case errors.Is(err, marketdata.ErrRateLimited):
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeRateLimit,
			"Provider Rate Limited",
			"The market data provider is throttling requests. Please try again later.",
			path,
		).WithExtension("retry_after", 60)

	case errors.Is(err, marketdata.ErrContractViolation):
		return NewProblemDetails(
			http.StatusBadGateway,
			TypeProviderContract,
			"Bad Gateway",
			"The market data provider returned an unexpected response",
			path,
		)

	case errors.As(err, &provider):
		return NewProblemDetails(
			http.StatusBadGateway,
			TypeProviderUnavailable,
			"Provider Error",
			err.Error(),
			path,
		).WithExtension("ticker", provider.Ticker)

	case errors.As(err, &appErr):
		return h.appErrorToProblem(appErr, path)

	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while processing your request",
			path,
		)
	}
}

// appErrorToProblem maps errors raised below the HTTP layer. Only data
// source failures are worth retrying.
func (h *ErrorHandler) appErrorToProblem(err *AppError, path string) *ProblemDetails {
	if err.Type == ErrTypeDataSource {
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeServiceDown,
			"Data Source Unavailable",
			err.Message,
			path,
		)
	}
	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		err.Message,
		path,
	).WithExtension("error_type", string(err.Type))
}

// validationDetails flattens validator errors into field/message pairs.
func validationDetails(errs validator.ValidationErrors) []ValidationError {
	out := make([]ValidationError, 0, len(errs))
	for _, fe := range errs {
		msg := fmt.Sprintf("failed on the '%s' rule", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("failed on the '%s=%s' rule", fe.Tag(), fe.Param())
		}
		out = append(out, ValidationError{Field: fe.Field(), Message: msg})
	}
	return out
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	// Map error codes to problem types
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "VALIDATION_FAILED", "INVALID_REQUEST":
		problemType = TypeValidation
	case "NOT_FOUND":
		problemType = TypeNotFound
	case "RATE_LIMIT_EXCEEDED":
		problemType = TypeRateLimit
	case "PROVIDER_DISABLED":
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	// Add details if present
	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	// Log the panic
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	// Create problem details
	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	// Add panic details in development
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeInternal,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
