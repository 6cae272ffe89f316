package services

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"divcli/internal/config"
	"divcli/internal/forecast"
	"divcli/internal/marketdata"
	"divcli/internal/screening"
	"divcli/internal/shared/testutil"
	"divcli/pkg/contracts/domain"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Quote(ctx context.Context, ticker string) (domain.DividendQuote, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(domain.DividendQuote), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) IncForecast(kind string) { m.Called(kind) }

func scenarioRequest(targets ...domain.Target) ForecastRequest {
	return ForecastRequest{
		Targets:              targets,
		Category:             "All",
		Capital:              1000,
		Years:                1,
		TaxRate:              15,
		SharePriceGrowthRate: 10,
		Capitalizations:      1,
	}
}

func TestForecastService_ManualTarget(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	rec := &mockRecorder{}
	rec.On("IncForecast", KindDividend).Once()

	svc := NewForecastService(nil, nil, nil, rec, 1, logger)
	res, err := svc.Forecast(context.Background(), scenarioRequest(domain.ManualTarget("Test", 0.5, 0.10, 100)))
	require.NoError(t, err)

	require.Len(t, res.Summaries, 1)
	s := res.Summaries[0]
	assert.InDelta(t, 1100.0, s.EndingStockValue, 1e-9)
	assert.InDelta(t, 425.0, s.LastPayout, 1e-9)
	assert.InDelta(t, 425.0, s.TotalDividends, 1e-9)
	assert.Len(t, s.Series.Points, 365)
	assert.Equal(t, "Test", s.Series.Name)
	assert.Empty(t, res.Skipped)

	rec.AssertExpectations(t)
	testutil.AssertLogged(t, logs, slog.LevelInfo, "Forecast completed")
}

func TestForecastService_QuarterlyPayout(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := NewForecastService(nil, nil, nil, nil, 1, logger)

	req := scenarioRequest(domain.ManualTarget("Test", 0.5, 0.10, 100))
	req.Capitalizations = 4
	res, err := svc.Forecast(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, 106.25, res.Summaries[0].LastPayout, 1e-9)
}

func TestForecastService_ResolvesSymbols(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	tables := NewScreeningService(championsSource(t), nil, logger)

	prov := &mockProvider{}
	prov.On("Quote", mock.Anything, "KO").Return(domain.DividendQuote{
		Ticker:              "KO",
		SharePrice:          60,
		DividendYieldPct:    3,
		DividendGrowth5YPct: 4,
	}, nil).Once()
	prov.On("Quote", mock.Anything, "ZZZ").Return(domain.DividendQuote{},
		&marketdata.ProviderError{Ticker: "ZZZ", Op: "dividends", StatusCode: 404, Err: marketdata.ErrNotFound}).Once()

	svc := NewForecastService(tables, prov, nil, nil, 2, logger)
	res, err := svc.Forecast(context.Background(), scenarioRequest(
		domain.SymbolTarget("CAT"),
		domain.SymbolTarget("KO"),
		domain.ManualTarget("Custom", 0.04, 0.05, 50),
		domain.SymbolTarget("ZZZ"),
	))
	require.NoError(t, err)

	require.Len(t, res.Summaries, 3)
	assert.Equal(t, "CAT", res.Summaries[0].Target.Name)
	assert.InDelta(t, 0.04, res.Summaries[0].Target.DividendYield, 1e-12)
	assert.InDelta(t, 0.07, res.Summaries[0].Target.DividendGrowthRate5Y, 1e-12)
	assert.Equal(t, 310.0, res.Summaries[0].Target.SharePrice)
	assert.Equal(t, "KO", res.Summaries[1].Target.Name)
	assert.InDelta(t, 0.03, res.Summaries[1].Target.DividendYield, 1e-12)
	assert.Equal(t, "Custom", res.Summaries[2].Target.Name)

	require.Contains(t, res.Skipped, "ZZZ")
	assert.Contains(t, res.Skipped["ZZZ"], "not found")

	prov.AssertExpectations(t)
	prov.AssertNotCalled(t, "Quote", mock.Anything, "CAT")
	testutil.AssertLogged(t, logs, slog.LevelWarn, "Skipping ticker")
}

func TestForecastService_Unresolvable(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	tables := NewScreeningService(championsSource(t), nil, logger)
	svc := NewForecastService(tables, nil, nil, nil, 1, logger)

	_, err := svc.Forecast(context.Background(), scenarioRequest(domain.SymbolTarget("KO")))
	assert.ErrorIs(t, err, screening.ErrSymbolNotFound)
}

func TestForecastService_ContractViolationAborts(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	prov := &mockProvider{}
	prov.On("Quote", mock.Anything, "KO").Return(domain.DividendQuote{},
		&marketdata.ProviderError{Ticker: "KO", Op: "previous_close", Err: fmt.Errorf("%w: bad payload", marketdata.ErrContractViolation)})

	svc := NewForecastService(nil, prov, nil, nil, 1, logger)
	_, err := svc.Forecast(context.Background(), scenarioRequest(domain.SymbolTarget("KO")))
	assert.ErrorIs(t, err, marketdata.ErrContractViolation)
}

func TestForecastService_InvalidRequest(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := NewForecastService(nil, nil, nil, nil, 1, logger)
	target := domain.ManualTarget("Test", 0.5, 0.10, 100)

	tests := []struct {
		name   string
		mutate func(*ForecastRequest)
	}{
		{"no targets", func(r *ForecastRequest) { r.Targets = nil }},
		{"zero capital", func(r *ForecastRequest) { r.Capital = 0 }},
		{"zero years", func(r *ForecastRequest) { r.Years = 0 }},
		{"tax over 100", func(r *ForecastRequest) { r.TaxRate = 120 }},
		{"too many capitalizations", func(r *ForecastRequest) { r.Capitalizations = 366 }},
		{"bad target kind", func(r *ForecastRequest) { r.Targets = []domain.Target{{Kind: "fund"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := scenarioRequest(target)
			tt.mutate(&req)
			_, err := svc.Forecast(context.Background(), req)
			assert.ErrorIs(t, err, forecast.ErrInvalidParams)
		})
	}
}

func TestForecastService_Baselines(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	rec := &mockRecorder{}
	rec.On("IncForecast", KindDividend).Once()
	rec.On("IncForecast", KindBaseline).Times(4)

	instruments := InstrumentsFromConfig(config.Default().Baselines)
	svc := NewForecastService(nil, nil, instruments, rec, 1, logger)

	req := scenarioRequest(domain.ManualTarget("Test", 0.5, 0.10, 100))
	req.Years = 2
	req.IncludeBaselines = true
	res, err := svc.Forecast(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, res.Baselines, 4)
	for _, b := range res.Baselines {
		assert.Len(t, b.Points, 2*forecast.DaysPerYear)
	}
	assert.Equal(t, "Savings account", res.Baselines[0].Name)

	series := res.Series()
	require.Len(t, series, 5)
	assert.Equal(t, "Test", series[0].Name)

	chart := res.Chart()
	assert.Equal(t, series, chart.Series)
	assert.NotEmpty(t, chart.Title)

	rec.AssertExpectations(t)
}

func TestForecastService_BaselinesInvalid(t *testing.T) {
	svc := NewForecastService(nil, nil, InstrumentsFromConfig(config.Default().Baselines), nil, 1, nil)

	_, err := svc.Baselines(context.Background(), 1000, 0)
	assert.ErrorIs(t, err, forecast.ErrInvalidParams)
	_, err = svc.Baselines(context.Background(), -5, 365)
	assert.ErrorIs(t, err, forecast.ErrInvalidParams)
}

func TestForecastService_Quote(t *testing.T) {
	svc := NewForecastService(nil, nil, nil, nil, 1, nil)
	_, err := svc.Quote(context.Background(), "KO")
	assert.ErrorIs(t, err, ErrProviderDisabled)

	prov := &mockProvider{}
	prov.On("Quote", mock.Anything, "KO").Return(domain.DividendQuote{Ticker: "KO", SharePrice: 60}, nil)
	svc = NewForecastService(nil, prov, nil, nil, 1, nil)
	q, err := svc.Quote(context.Background(), "KO")
	require.NoError(t, err)
	assert.Equal(t, 60.0, q.SharePrice)
}

func TestInstrumentsFromConfig(t *testing.T) {
	got := InstrumentsFromConfig([]config.InstrumentConfig{{Name: "Bonds", Rate: 7.5, Scheme: "daily"}})
	assert.Equal(t, []forecast.Instrument{{Name: "Bonds", Rate: 0.075, Scheme: forecast.SchemeDaily}}, got)
}

func TestForecastDefaults(t *testing.T) {
	req := ForecastDefaults(config.Default().Forecast, "All")
	assert.Equal(t, 10000.0, req.Capital)
	assert.Equal(t, 4, req.Years)
	assert.Equal(t, 15.0, req.TaxRate)
	assert.Equal(t, 4, req.Capitalizations)
	assert.Equal(t, "All", req.Category)
	assert.Empty(t, req.Targets)
}
