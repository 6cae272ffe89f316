package marketdata

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"divcli/internal/analytics"
	"divcli/pkg/contracts/domain"
)

// historyYears is how far back dividend history is considered for a quote.
const historyYears = 5

// Provider fetches the dividend profile of a ticker.
type Provider interface {
	Quote(ctx context.Context, ticker string) (domain.DividendQuote, error)
}

var _ Provider = (*PolygonClient)(nil)

// Quote assembles a dividend profile from the dividend history, the last
// close price and the latest financial reports.
func (c *PolygonClient) Quote(ctx context.Context, ticker string) (domain.DividendQuote, error) {
	year := c.now().Year()

	all, err := c.Dividends(ctx, ticker)
	if err != nil {
		return domain.DividendQuote{}, err
	}
	history, err := analytics.Recent(all, year, historyYears)
	if err != nil {
		return domain.DividendQuote{}, c.contractErr(ticker, "dividends", err)
	}
	if len(history) == 0 {
		return domain.DividendQuote{}, &ProviderError{Ticker: ticker, Op: "dividends", Err: fmt.Errorf("%w: %w", ErrNoData, analytics.ErrNoDividends)}
	}

	dgr, err := analytics.AverageGrowthRate(history, year)
	if err != nil {
		return domain.DividendQuote{}, c.analyticsErr(ticker, err)
	}

	price, err := c.PreviousClose(ctx, ticker)
	if err != nil {
		return domain.DividendQuote{}, err
	}
	if price <= 0 {
		return domain.DividendQuote{}, c.contractErr(ticker, "previous_close", fmt.Errorf("non-positive close %v", price))
	}

	yield, err := analytics.DividendYield(history, price, year)
	if err != nil {
		return domain.DividendQuote{}, c.analyticsErr(ticker, err)
	}
	growthYears, err := analytics.ConsecutiveGrowthYears(history, year)
	if err != nil {
		return domain.DividendQuote{}, c.analyticsErr(ticker, err)
	}

	quote := domain.DividendQuote{
		Ticker:                 ticker,
		SharePrice:             price,
		CurrentDividend:        history[len(history)-1].CashAmount,
		DividendYieldPct:       yield,
		DividendGrowth5YPct:    dgr,
		PaymentsPerYear:        all[0].Frequency,
		ConsecutiveGrowthYears: growthYears,
	}

	reports, err := c.Financials(ctx, ticker)
	switch {
	case err != nil && IsFatal(err):
		return domain.DividendQuote{}, err
	case err != nil:
		c.logger.WarnContext(ctx, "Financials unavailable", "ticker", ticker, "error", err)
	default:
		quote.PayoutRatioPct = payoutRatio(reports, history)
		if quote.PayoutRatioPct == nil {
			c.logger.WarnContext(ctx, "Payout ratio unavailable", "ticker", ticker)
		}
	}

	c.logger.InfoContext(ctx, "Quote assembled",
		"ticker", ticker,
		"price", price,
		"current_dividend", quote.CurrentDividend,
		"yield_pct", yield,
		"dgr_pct", dgr,
		"growth_years", growthYears)

	return quote, nil
}

func (c *PolygonClient) contractErr(ticker, op string, err error) error {
	return &ProviderError{Ticker: ticker, Op: op, Err: fmt.Errorf("%w: %w", ErrContractViolation, err)}
}

func (c *PolygonClient) analyticsErr(ticker string, err error) error {
	if errors.Is(err, analytics.ErrNoDividends) {
		return &ProviderError{Ticker: ticker, Op: "dividends", Err: fmt.Errorf("%w: %w", ErrNoData, err)}
	}
	return c.contractErr(ticker, "dividends", err)
}

// payoutRatio prefers the latest quarterly report and falls back to the
// latest annual one. It returns nil when neither has the needed figures.
func payoutRatio(reports []financialReport, history []domain.DividendPayment) *float64 {
	if r, ok := quarterlyPayout(reports, history); ok {
		return &r
	}
	if r, ok := annualPayout(reports, history); ok {
		return &r
	}
	return nil
}

func latest(reports []financialReport, timeframe string) (financialReport, bool) {
	var candidates []financialReport
	for _, r := range reports {
		if r.Timeframe == timeframe && r.EndDate != "" {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return financialReport{}, false
	}
	// ISO dates sort lexically.
	return slices.MaxFunc(candidates, func(a, b financialReport) int {
		switch {
		case a.EndDate < b.EndDate:
			return -1
		case a.EndDate > b.EndDate:
			return 1
		}
		return 0
	}), true
}

func reportFigures(r financialReport) (netCashFlow, shares float64, ok bool) {
	ncf, ok1 := r.Financials.CashFlowStatement["net_cash_flow_from_operating_activities"]
	bas, ok2 := r.Financials.IncomeStatement["basic_average_shares"]
	if !ok1 || !ok2 || ncf.Value == nil || bas.Value == nil || *ncf.Value == 0 {
		return 0, 0, false
	}
	return *ncf.Value, *bas.Value, true
}

func quarterlyPayout(reports []financialReport, history []domain.DividendPayment) (float64, bool) {
	r, ok := latest(reports, "quarterly")
	if !ok {
		return 0, false
	}
	start, err1 := time.Parse(time.DateOnly, r.StartDate)
	end, err2 := time.Parse(time.DateOnly, r.EndDate)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	net, shares, ok := reportFigures(r)
	if !ok {
		return 0, false
	}
	for _, p := range history {
		d, err := p.PaidOn()
		if err == nil && d.After(start) && d.Before(end) {
			return analytics.PayoutRatio(p.CashAmount, shares, net), true
		}
	}
	return 0, false
}

func annualPayout(reports []financialReport, history []domain.DividendPayment) (float64, bool) {
	r, ok := latest(reports, "annual")
	if !ok {
		return 0, false
	}
	year, err := strconv.Atoi(r.FiscalYear)
	if err != nil {
		return 0, false
	}
	net, shares, ok := reportFigures(r)
	if !ok {
		return 0, false
	}
	div, err := analytics.AnnualizedDividend(history, year)
	if err != nil {
		return 0, false
	}
	return analytics.PayoutRatio(div, shares, net), true
}
