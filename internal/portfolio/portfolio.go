// Package portfolio summarizes dividend portfolios held in several currencies.
package portfolio

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"divcli/internal/dataprocessing"
	"divcli/pkg/contracts/domain"
)

// ErrNoInvestment is returned for holdings with a non-positive invested amount.
var ErrNoInvestment = errors.New("invested amount must be positive")

var hundred = decimal.NewFromInt(100)

// currencyOrder is the order summaries are reported in.
var currencyOrder = []domain.Currency{domain.CurrencyUSD, domain.CurrencyEUR, domain.CurrencyPLN}

// Position is a holding with its derived dividend figures.
type Position struct {
	domain.Holding
	YieldOnInvestment decimal.Decimal `json:"yield_on_investment"`
	AnnualDividend    decimal.Decimal `json:"annual_dividend"`
}

// Summary aggregates the positions held in one currency.
type Summary struct {
	Currency       domain.Currency `json:"currency"`
	Invested       decimal.Decimal `json:"invested"`
	Value          decimal.Decimal `json:"value"`
	AnnualDividend decimal.Decimal `json:"annual_dividend"`
	// YieldPct is the annual dividend relative to the invested amount, in percent.
	YieldPct decimal.Decimal `json:"yield_pct"`
}

// Portfolio is a named set of holdings.
type Portfolio struct {
	Owner    string           `json:"owner" yaml:"owner"`
	Holdings []domain.Holding `json:"holdings" yaml:"holdings"`
}

// YieldOnInvestment is current*yield/invested: the dividend yield measured
// against the purchase cost instead of the current value.
func YieldOnInvestment(invested, current, yield decimal.Decimal) (decimal.Decimal, error) {
	if !invested.IsPositive() {
		return decimal.Zero, ErrNoInvestment
	}
	return current.Mul(yield).Div(invested), nil
}

// Evaluate derives the dividend figures of one holding.
func Evaluate(h domain.Holding) (Position, error) {
	yoi, err := YieldOnInvestment(h.Invested, h.CurrentValue, h.DividendYield)
	if err != nil {
		return Position{}, fmt.Errorf("holding %s: %w", h.Symbol, err)
	}
	return Position{
		Holding:           h,
		YieldOnInvestment: yoi,
		AnnualDividend:    h.DividendYield.Mul(h.CurrentValue),
	}, nil
}

// Positions evaluates every holding of p.
func (p Portfolio) Positions() ([]Position, error) {
	out := make([]Position, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		pos, err := Evaluate(h)
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, nil
}

// Summarize totals positions per currency. Currencies without any
// investment are omitted; amounts in different currencies are never mixed.
func Summarize(positions []Position) []Summary {
	byCurrency := make(map[domain.Currency]*Summary)
	for _, p := range positions {
		s, ok := byCurrency[p.Currency]
		if !ok {
			s = &Summary{Currency: p.Currency}
			byCurrency[p.Currency] = s
		}
		s.Invested = s.Invested.Add(p.Invested)
		s.Value = s.Value.Add(p.CurrentValue)
		s.AnnualDividend = s.AnnualDividend.Add(p.AnnualDividend)
	}

	var out []Summary
	for _, c := range currencyOrder {
		s, ok := byCurrency[c]
		if !ok || !s.Invested.IsPositive() {
			continue
		}
		s.YieldPct = s.AnnualDividend.Div(s.Invested).Mul(hundred)
		out = append(out, *s)
	}
	return out
}

// Money renders an amount with two decimals and its currency.
func Money(amount decimal.Decimal, c domain.Currency) string {
	return amount.StringFixed(2) + " " + string(c)
}

// Table lays positions out as a text table sorted by symbol.
func Table(positions []Position) (*dataprocessing.Table, error) {
	sorted := append([]Position(nil), positions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })

	n := len(sorted)
	company := make([]*string, n)
	invested := make([]*string, n)
	value := make([]*string, n)
	yield := make([]*float64, n)
	yoi := make([]*float64, n)
	annual := make([]*string, n)
	for i, p := range sorted {
		company[i] = ptr(p.Symbol)
		invested[i] = ptr(Money(p.Invested, p.Currency))
		value[i] = ptr(Money(p.CurrentValue, p.Currency))
		yield[i] = ptr(p.DividendYield.Mul(hundred).Round(2).InexactFloat64())
		yoi[i] = ptr(p.YieldOnInvestment.Mul(hundred).Round(2).InexactFloat64())
		annual[i] = ptr(Money(p.AnnualDividend, p.Currency))
	}

	return dataprocessing.NewTable(
		dataprocessing.NewTextColumn("Company", company),
		dataprocessing.NewTextColumn("Investment", invested),
		dataprocessing.NewTextColumn("Current Value", value),
		dataprocessing.NewFloatColumn("Yield[%]", yield),
		dataprocessing.NewFloatColumn("Yield on investment[%]", yoi),
		dataprocessing.NewTextColumn("Annual dividend", annual),
	)
}

func ptr[T any](v T) *T { return &v }
