// Package services implements the business logic shared by the CLI and the
// HTTP API.
//
// # Services
//
//	- ScreeningService: builds category tables from a WorkbookSource and runs
//	  yield, payout and growth screens over them
//	- ForecastService: resolves targets against a category table or a
//	  market-data provider and runs dividend and low-risk forecasts
//	- PortfolioService: evaluates holdings files per currency
//	- HealthService: liveness, readiness and version reporting
//
// Services take their collaborators through constructors and never read
// configuration on their own; CriteriaFromConfig, ForecastDefaults and
// InstrumentsFromConfig translate config sections into requests.
//
// # Error Handling
//
// Errors from lower layers are returned wrapped with %w so handlers can map
// them with errors.Is and errors.As:
//
//	- dataprocessing.ErrCategoryNotFound for unknown sheets
//	- screening.ErrSymbolNotFound when no forecast target resolves
//	- forecast.ErrInvalidParams for rejected requests
//	- marketdata.ErrContractViolation when a provider batch aborts
//	- errors.AppError of type DATA_SOURCE when the workbook cannot be opened
//
// # Testing
//
// Providers and observers are replaced with testify mocks:
//
//	prov := &mockProvider{}
//	prov.On("Quote", mock.Anything, "KO").Return(quote, nil)
//	svc := NewForecastService(nil, prov, nil, nil, 1, logger)
package services
