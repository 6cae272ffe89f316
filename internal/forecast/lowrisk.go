package forecast

import (
	"fmt"

	"divcli/pkg/contracts/domain"
)

// LowRiskTaxRate is the capital gains tax applied to savings instruments.
const LowRiskTaxRate = 0.19

// Scheme is how often a savings instrument capitalizes interest.
type Scheme string

const (
	SchemeDaily   Scheme = "daily"
	SchemeMonthly Scheme = "monthly"
	SchemeAnnual  Scheme = "annual"
)

// Instrument is a named savings product.
type Instrument struct {
	Name   string  `json:"name" yaml:"name" validate:"required"`
	Rate   float64 `json:"rate" yaml:"rate" validate:"gt=0"`
	Scheme Scheme  `json:"scheme" yaml:"scheme" validate:"required,oneof=daily monthly annual"`
}

// LowRiskResult is the outcome of a savings forecast.
type LowRiskResult struct {
	EndingCapital float64                `json:"ending_capital"`
	Series        []domain.ForecastPoint `json:"series"`
}

// Timeline returns the simulated days 1..days.
func Timeline(days int) []int {
	t := make([]int, days)
	for i := range t {
		t[i] = i + 1
	}
	return t
}

// CompoundGain credits one period of interest at an annual rate split into
// periodsPerYear periods, net of tax. It returns the new capital and the gain.
func CompoundGain(capital, rate float64, periodsPerYear int, tax float64) (float64, float64) {
	g := capital * rate / float64(periodsPerYear) * (1 - tax)
	return capital + g, g
}

// DailyCompounding credits interest every day and taxes the result once at
// the end. It panics on an empty timeline.
func DailyCompounding(capital, rate float64, timeline []int) LowRiskResult {
	mustHaveDays(timeline)
	return compound(capital, timeline, func(day int, cur float64) (float64, float64, bool) {
		next, g := CompoundGain(cur, rate, DaysPerYear, 0)
		return next, g, true
	}, true)
}

// MonthlyCompounding credits taxed interest every 30 days. It panics on an
// empty timeline.
func MonthlyCompounding(capital, rate float64, timeline []int) LowRiskResult {
	mustHaveDays(timeline)
	return compound(capital, timeline, func(day int, cur float64) (float64, float64, bool) {
		if day%30 != 0 {
			return cur, 0, false
		}
		next, g := CompoundGain(cur, rate, 12, LowRiskTaxRate)
		return next, g, true
	}, false)
}

// AnnualCompounding credits interest on every 365th day and taxes the
// result once at the end. It panics on an empty timeline.
func AnnualCompounding(capital, rate float64, timeline []int) LowRiskResult {
	mustHaveDays(timeline)
	return compound(capital, timeline, func(day int, cur float64) (float64, float64, bool) {
		if day%DaysPerYear != 0 {
			return cur, 0, false
		}
		next, g := CompoundGain(cur, rate, 1, 0)
		return next, g, true
	}, true)
}

type stepFunc func(day int, capital float64) (next, gain float64, credited bool)

func compound(capital float64, timeline []int, step stepFunc, taxAtEnd bool) LowRiskResult {
	cur := capital
	total := 0.0
	series := make([]domain.ForecastPoint, 0, len(timeline))
	for _, day := range timeline {
		next, g, credited := step(day, cur)
		if credited {
			cur = next
			total += g
		}
		series = append(series, domain.ForecastPoint{Day: day, CumulativeGain: total})
	}

	if taxAtEnd {
		series[len(series)-1].CumulativeGain *= 1 - LowRiskTaxRate
		cur = capital + (cur-capital)*(1-LowRiskTaxRate)
	}
	return LowRiskResult{EndingCapital: cur, Series: series}
}

func mustHaveDays(timeline []int) {
	if len(timeline) == 0 {
		panic("forecast: empty timeline")
	}
}

// Run forecasts capital invested in the instrument.
func (i Instrument) Run(capital float64, timeline []int) (LowRiskResult, error) {
	switch i.Scheme {
	case SchemeDaily:
		return DailyCompounding(capital, i.Rate, timeline), nil
	case SchemeMonthly:
		return MonthlyCompounding(capital, i.Rate, timeline), nil
	case SchemeAnnual:
		return AnnualCompounding(capital, i.Rate, timeline), nil
	default:
		return LowRiskResult{}, fmt.Errorf("%w: unknown scheme %q", ErrInvalidParams, i.Scheme)
	}
}

// Baselines runs every instrument over the same timeline and returns
// captioned series for comparison with dividend forecasts.
func Baselines(capital float64, instruments []Instrument, timeline []int) ([]domain.Series, error) {
	out := make([]domain.Series, 0, len(instruments))
	for _, inst := range instruments {
		if err := validate.Struct(inst); err != nil {
			return nil, fmt.Errorf("%w: instrument %q: %w", ErrInvalidParams, inst.Name, err)
		}
		res, err := inst.Run(capital, timeline)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Series{
			Name: inst.Name,
			Caption: fmt.Sprintf("%s %.2f%% (%s): capital %.2f, interest %.2f",
				inst.Name, inst.Rate*100, inst.Scheme, res.EndingCapital, res.Series[len(res.Series)-1].CumulativeGain),
			Points: res.Series,
		})
	}
	return out, nil
}
