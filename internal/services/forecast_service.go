package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"divcli/internal/config"
	"divcli/internal/dataprocessing"
	"divcli/internal/forecast"
	"divcli/internal/marketdata"
	"divcli/internal/render"
	"divcli/internal/screening"
	"divcli/pkg/contracts/domain"
)

// Forecast kinds reported to the recorder.
const (
	KindDividend = "dividend"
	KindBaseline = "baseline"
)

// TableLoader builds the table of one spreadsheet category.
type TableLoader interface {
	LoadTable(ctx context.Context, category string) (*dataprocessing.Table, error)
}

// ForecastRecorder counts computed forecasts.
type ForecastRecorder interface {
	IncForecast(kind string)
}

// ForecastRequest describes a dividend forecast. Rates are percentages.
type ForecastRequest struct {
	Targets              []domain.Target `json:"targets" validate:"required,min=1,dive"`
	Category             string          `json:"category"`
	Capital              float64         `json:"capital" validate:"gt=0"`
	Years                int             `json:"years" validate:"gte=1,lte=100"`
	TaxRate              float64         `json:"tax_rate" validate:"gte=0,lte=100"`
	SharePriceGrowthRate float64         `json:"share_price_growth_rate" validate:"gt=-100"`
	Capitalizations      int             `json:"capitalizations" validate:"gte=1,lte=365"`
	IncludeBaselines     bool            `json:"include_baselines"`
}

// ForecastDefaults fills a request from the configured defaults. Targets are
// left empty.
func ForecastDefaults(cfg config.ForecastConfig, category string) ForecastRequest {
	return ForecastRequest{
		Category:             category,
		Capital:              cfg.Capital,
		Years:                cfg.Years,
		TaxRate:              cfg.TaxRate,
		SharePriceGrowthRate: cfg.SharePriceGrowthRate,
		Capitalizations:      cfg.Capitalizations,
	}
}

// InstrumentsFromConfig converts configured baselines, whose rates are
// percentages, into forecast instruments.
func InstrumentsFromConfig(cfgs []config.InstrumentConfig) []forecast.Instrument {
	out := make([]forecast.Instrument, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, forecast.Instrument{
			Name:   c.Name,
			Rate:   c.Rate / 100,
			Scheme: forecast.Scheme(c.Scheme),
		})
	}
	return out
}

// ForecastResult holds one summary per resolved target and, when requested,
// the low-risk baselines over the same horizon.
type ForecastResult struct {
	RunID     string                   `json:"run_id"`
	Summaries []domain.ForecastSummary `json:"summaries"`
	Baselines []domain.Series          `json:"baselines,omitempty"`
	Skipped   map[string]string        `json:"skipped,omitempty"`
}

// Series returns the dividend series followed by the baselines.
func (r *ForecastResult) Series() []domain.Series {
	out := make([]domain.Series, 0, len(r.Summaries)+len(r.Baselines))
	for _, s := range r.Summaries {
		out = append(out, s.Series)
	}
	return append(out, r.Baselines...)
}

// Chart lays the result out for a renderer.
func (r *ForecastResult) Chart() render.Chart {
	return render.Chart{
		Title:  "Dividend investment gains",
		XLabel: "Days",
		YLabel: "Cumulative gain",
		Series: r.Series(),
	}
}

// ForecastService resolves targets and runs dividend and low-risk forecasts.
type ForecastService struct {
	tables      TableLoader
	provider    marketdata.Provider
	instruments []forecast.Instrument
	recorder    ForecastRecorder
	concurrency int
	logger      *slog.Logger
}

// NewForecastService creates a forecast service. tables, provider and
// recorder may be nil; symbols that nothing can resolve are skipped.
func NewForecastService(tables TableLoader, provider marketdata.Provider, instruments []forecast.Instrument,
	recorder ForecastRecorder, concurrency int, logger *slog.Logger) *ForecastService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastService{
		tables:      tables,
		provider:    provider,
		instruments: instruments,
		recorder:    recorder,
		concurrency: concurrency,
		logger:      logger.With(slog.String("service", "forecast")),
	}
}

// Instruments returns the configured low-risk instruments.
func (s *ForecastService) Instruments() []forecast.Instrument { return s.instruments }

// Forecast resolves every target and simulates it. Unresolvable symbols are
// reported in Skipped; the call fails only when no target resolves.
func (s *ForecastService) Forecast(ctx context.Context, req ForecastRequest) (*ForecastResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", forecast.ErrInvalidParams, err)
	}

	runID := uuid.NewString()
	logger := s.logger.With(slog.String("run_id", runID))
	start := time.Now()

	targets, skipped, err := s.resolve(ctx, logger, req)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: none of %d targets could be resolved", screening.ErrSymbolNotFound, len(req.Targets))
	}

	res := &ForecastResult{RunID: runID, Skipped: skipped}
	for _, t := range targets {
		params, err := forecast.ParamsFor(t, req.Capital, req.SharePriceGrowthRate/100, req.TaxRate/100, req.Years, req.Capitalizations)
		if err != nil {
			return nil, err
		}
		sim, err := forecast.Simulate(params)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", t.Label(), err)
		}
		res.Summaries = append(res.Summaries, forecast.Summarize(t, sim))
		s.count(KindDividend)
	}

	if req.IncludeBaselines {
		res.Baselines, err = s.Baselines(ctx, req.Capital, req.Years*forecast.DaysPerYear)
		if err != nil {
			return nil, err
		}
	}

	logger.InfoContext(ctx, "Forecast completed",
		slog.Int("targets", len(req.Targets)),
		slog.Int("forecasts", len(res.Summaries)),
		slog.Int("skipped", len(skipped)),
		slog.Int("baselines", len(res.Baselines)),
		slog.Duration("duration", time.Since(start)))

	return res, nil
}

// Baselines runs the configured instruments over days 1..days.
func (s *ForecastService) Baselines(ctx context.Context, capital float64, days int) ([]domain.Series, error) {
	if capital <= 0 || days <= 0 {
		return nil, fmt.Errorf("%w: capital %.2f over %d days", forecast.ErrInvalidParams, capital, days)
	}
	series, err := forecast.Baselines(capital, s.instruments, forecast.Timeline(days))
	if err != nil {
		return nil, err
	}
	for range series {
		s.count(KindBaseline)
	}
	s.logger.DebugContext(ctx, "Baselines computed",
		slog.Int("instruments", len(series)),
		slog.Int("days", days))
	return series, nil
}

// Quote fetches the dividend profile of one ticker from the provider.
func (s *ForecastService) Quote(ctx context.Context, ticker string) (domain.DividendQuote, error) {
	if s.provider == nil {
		return domain.DividendQuote{}, ErrProviderDisabled
	}
	return s.provider.Quote(ctx, ticker)
}

func (s *ForecastService) count(kind string) {
	if s.recorder != nil {
		s.recorder.IncForecast(kind)
	}
}

// resolve turns every target into a manual one, keeping request order.
// Symbols are looked up in the category table first and fetched from the
// provider otherwise.
func (s *ForecastService) resolve(ctx context.Context, logger *slog.Logger, req ForecastRequest) ([]domain.Target, map[string]string, error) {
	resolved := make([]*domain.Target, len(req.Targets))
	skipped := make(map[string]string)
	pending := make(map[string][]int)
	var pendingOrder []string

	var table *dataprocessing.Table
	if s.tables != nil && req.Category != "" && hasSymbols(req.Targets) {
		var err error
		table, err = s.tables.LoadTable(ctx, req.Category)
		if err != nil {
			return nil, nil, err
		}
	}

	for i, t := range req.Targets {
		if t.IsManual() {
			resolved[i] = &req.Targets[i]
			continue
		}
		if table != nil {
			found, err := screening.LookupTarget(table, t.Symbol)
			switch {
			case err == nil:
				resolved[i] = &found
				continue
			case errors.Is(err, screening.ErrMissingColumn):
				return nil, nil, err
			case !errors.Is(err, screening.ErrSymbolNotFound):
				logger.WarnContext(ctx, "Skipping target", slog.String("symbol", t.Symbol), slog.String("error", err.Error()))
				skipped[t.Symbol] = err.Error()
				continue
			}
		}
		if _, ok := pending[t.Symbol]; !ok {
			pendingOrder = append(pendingOrder, t.Symbol)
		}
		pending[t.Symbol] = append(pending[t.Symbol], i)
	}

	if len(pendingOrder) > 0 {
		if err := s.fetch(ctx, logger, pendingOrder, pending, resolved, skipped); err != nil {
			return nil, nil, err
		}
	}

	out := make([]domain.Target, 0, len(resolved))
	for _, t := range resolved {
		if t != nil {
			out = append(out, *t)
		}
	}
	return out, skipped, nil
}

func (s *ForecastService) fetch(ctx context.Context, logger *slog.Logger, symbols []string, pending map[string][]int,
	resolved []*domain.Target, skipped map[string]string) error {
	if s.provider == nil {
		for _, sym := range symbols {
			logger.WarnContext(ctx, "Skipping target", slog.String("symbol", sym), slog.String("error", "not in table and no provider configured"))
			skipped[sym] = screening.ErrSymbolNotFound.Error()
		}
		return nil
	}

	batch, err := marketdata.FetchQuotes(ctx, s.provider, symbols, s.concurrency, logger)
	if err != nil {
		return err
	}
	for _, q := range batch.Quotes {
		t := q.Target()
		for _, i := range pending[q.Ticker] {
			resolved[i] = &t
		}
	}
	for sym, ferr := range batch.Failed {
		skipped[sym] = ferr.Error()
	}
	return nil
}

func hasSymbols(targets []domain.Target) bool {
	for _, t := range targets {
		if !t.IsManual() {
			return true
		}
	}
	return false
}
