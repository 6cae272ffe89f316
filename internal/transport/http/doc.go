// Package http implements the HTTP handlers of the divcli API server. Handlers
// stay thin: they decode and validate requests, call a service and render the
// result, leaving all screening and forecasting logic to internal/services.
//
// # Routes
//
//	GET  /api/v1/categories          sheet names of the workbook
//	POST /api/v1/screen              run yield, payout and growth screens
//	POST /api/v1/forecast            dividend forecast (?format=png for a chart)
//	GET  /api/v1/baselines           low-risk instrument forecasts
//	GET  /api/v1/quotes/{symbol}     dividend profile from the market-data provider
//	GET  /api/v1/portfolio           holdings summaries
//	GET  /api/v1/health[/ready|/live|/detailed]
//	GET  /api/v1/version
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// Every failure is passed to errors.ErrorHandler, which renders RFC 7807
// problem details:
//
//	{
//	    "type": "/errors/data/category-not-found",
//	    "title": "Category Not Found",
//	    "status": 404,
//	    "detail": "category not found: \"Challengers\"",
//	    "instance": "/api/v1/screen",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers are tested with httptest and testify mocks of the service
// interfaces declared in service_interfaces.go.
package http
