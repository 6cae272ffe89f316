package http

import (
	"context"

	"divcli/internal/services"
	"divcli/pkg/contracts/domain"
)

// ScreeningServiceInterface defines the screening operations served over HTTP
type ScreeningServiceInterface interface {
	Categories(ctx context.Context) ([]string, error)
	Screen(ctx context.Context, criteria services.ScreenCriteria) (*services.ScreenResult, error)
}

// ForecastServiceInterface defines the forecast operations served over HTTP
type ForecastServiceInterface interface {
	Forecast(ctx context.Context, req services.ForecastRequest) (*services.ForecastResult, error)
	Baselines(ctx context.Context, capital float64, days int) ([]domain.Series, error)
	Quote(ctx context.Context, ticker string) (domain.DividendQuote, error)
}

// PortfolioServiceInterface defines the portfolio operations served over HTTP
type PortfolioServiceInterface interface {
	Reports(ctx context.Context, owner string) ([]services.PortfolioReport, error)
}

var (
	_ ScreeningServiceInterface = (*services.ScreeningService)(nil)
	_ ForecastServiceInterface  = (*services.ForecastService)(nil)
	_ PortfolioServiceInterface = (*services.PortfolioService)(nil)
)
