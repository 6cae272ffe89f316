package forecast

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"divcli/pkg/contracts/domain"
)

// DaysPerYear is the length of a simulated year.
const DaysPerYear = 365

// ErrInvalidParams wraps every parameter validation failure.
var ErrInvalidParams = errors.New("invalid forecast parameters")

var validate = validator.New()

// DividendParams describes one dividend stock investment. Rates are fractions.
type DividendParams struct {
	BaseCapital            float64 `json:"base_capital" validate:"gt=0"`
	DividendYield          float64 `json:"dividend_yield" validate:"gte=0"`
	DividendGrowthRate5Y   float64 `json:"dividend_growth_rate_5y" validate:"gt=-1"`
	SharePrice             float64 `json:"share_price" validate:"gt=0"`
	SharePriceGrowthRate   float64 `json:"share_price_growth_rate" validate:"gt=-1"`
	TaxRate                float64 `json:"tax_rate" validate:"gte=0,lte=1"`
	HorizonDays            int     `json:"horizon_days" validate:"gt=0"`
	CapitalizationsPerYear int     `json:"capitalizations_per_year" validate:"gte=1,lte=365"`
}

// Validate checks the parameters against their constraints.
func (p DividendParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

// DividendResult is the outcome of Simulate.
type DividendResult struct {
	EndingStockValue float64                `json:"ending_stock_value"`
	LastPayout       float64                `json:"last_payout"`
	Series           []domain.ForecastPoint `json:"series"`
}

// TotalDividends is the cumulative after-tax dividend income.
func (r DividendResult) TotalDividends() float64 {
	if len(r.Series) == 0 {
		return 0
	}
	return r.Series[len(r.Series)-1].CumulativeGain
}

// Simulate runs the daily dividend model for p.HorizonDays days.
//
// The number of shares is fixed at purchase. A payout happens on every day
// divisible by 365/CapitalizationsPerYear (integer division, so counts that
// do not divide 365 drift slightly), and on every day divisible by 365 the
// share price and annual dividend grow. Payouts are taxed and never
// reinvested.
func Simulate(p DividendParams) (DividendResult, error) {
	if err := p.Validate(); err != nil {
		return DividendResult{}, err
	}

	numShares := p.BaseCapital / p.SharePrice
	price := p.SharePrice
	annualDividend := p.DividendYield * p.SharePrice
	period := DaysPerYear / p.CapitalizationsPerYear
	caps := float64(p.CapitalizationsPerYear)

	var gain, lastPayout float64
	series := make([]domain.ForecastPoint, 0, p.HorizonDays)

	for day := 1; day <= p.HorizonDays; day++ {
		if day%period == 0 {
			lastPayout = numShares * annualDividend / caps * (1 - p.TaxRate)
			gain += lastPayout
		}
		if day%DaysPerYear == 0 {
			price *= 1 + p.SharePriceGrowthRate
			annualDividend *= 1 + p.DividendGrowthRate5Y
		}
		series = append(series, domain.ForecastPoint{Day: day, CumulativeGain: gain})
	}

	return DividendResult{
		EndingStockValue: numShares * price,
		LastPayout:       lastPayout,
		Series:           series,
	}, nil
}

// ParamsFor builds simulation parameters for a manual target.
func ParamsFor(t domain.Target, capital, sharePriceGrowth, taxRate float64, years, capsPerYear int) (DividendParams, error) {
	if !t.IsManual() {
		return DividendParams{}, fmt.Errorf("%w: target %s is not resolved", ErrInvalidParams, t.Symbol)
	}
	return DividendParams{
		BaseCapital:            capital,
		DividendYield:          t.DividendYield,
		DividendGrowthRate5Y:   t.DividendGrowthRate5Y,
		SharePrice:             t.SharePrice,
		SharePriceGrowthRate:   sharePriceGrowth,
		TaxRate:                taxRate,
		HorizonDays:            years * DaysPerYear,
		CapitalizationsPerYear: capsPerYear,
	}, nil
}

// Summarize turns a simulation result into a captioned series.
func Summarize(t domain.Target, r DividendResult) domain.ForecastSummary {
	total := r.TotalDividends()
	return domain.ForecastSummary{
		Target:           t,
		EndingStockValue: r.EndingStockValue,
		LastPayout:       r.LastPayout,
		TotalDividends:   total,
		Series: domain.Series{
			Name: t.Label(),
			Caption: fmt.Sprintf("%s (yield %.2f%%, DGR %.2f%%, price %.2f): stock value %.2f, last payout %.2f, dividends %.2f",
				t.Label(), t.DividendYield*100, t.DividendGrowthRate5Y*100, t.SharePrice,
				r.EndingStockValue, r.LastPayout, total),
			Points: r.Series,
		},
	}
}
