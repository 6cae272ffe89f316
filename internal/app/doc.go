// Package app wires the divcli services and runs the HTTP API server.
//
// NewServices builds the screening, forecast, portfolio and health services
// from a loaded configuration; the CLI commands use it directly. NewApplication
// adds metrics, the chi router and the http.Server on top of it.
//
// # Middleware
//
//	RequestID → RealIP → Metrics → StructuredLogger → Recoverer → SecurityHeaders → RateLimiter
//
// /metrics is served outside the middleware group.
//
// # Shutdown
//
// Run serves until SIGINT, SIGTERM or cancellation of its context, then
// drains in-flight requests for at most Server.ShutdownTimeout. Errors are
// returned to the caller; the package never calls os.Exit.
package app
