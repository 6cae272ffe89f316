// Package domain holds the types shared by the CLI, the services and the
// HTTP API.
package domain

import "fmt"

// TargetKind distinguishes manually described investments from symbols that
// must be resolved against a spreadsheet or a market-data provider.
type TargetKind string

const (
	TargetKindManual TargetKind = "manual"
	TargetKindSymbol TargetKind = "symbol"
)

// Target is an investment to forecast. Exactly one of the variants is set,
// as reported by Kind. Rates are fractions (0.05 means 5%).
type Target struct {
	Kind TargetKind `json:"kind" validate:"required,oneof=manual symbol"`

	// Manual variant.
	Name                 string  `json:"name,omitempty"`
	DividendYield        float64 `json:"dividend_yield,omitempty" validate:"gte=0"`
	DividendGrowthRate5Y float64 `json:"dividend_growth_rate_5y,omitempty"`
	SharePrice           float64 `json:"share_price,omitempty" validate:"gte=0"`

	// Symbol variant.
	Symbol string `json:"symbol,omitempty"`
}

// ManualTarget builds a fully specified target.
func ManualTarget(name string, dividendYield, dividendGrowth5Y, sharePrice float64) Target {
	return Target{
		Kind:                 TargetKindManual,
		Name:                 name,
		DividendYield:        dividendYield,
		DividendGrowthRate5Y: dividendGrowth5Y,
		SharePrice:           sharePrice,
	}
}

// SymbolTarget builds a target that still needs its parameters resolved.
func SymbolTarget(symbol string) Target {
	return Target{Kind: TargetKindSymbol, Symbol: symbol}
}

// IsManual reports whether the target carries its own parameters.
func (t Target) IsManual() bool { return t.Kind == TargetKindManual }

// Label is the display name of the target.
func (t Target) Label() string {
	if t.IsManual() {
		return t.Name
	}
	return t.Symbol
}

func (t Target) String() string {
	if t.IsManual() {
		return fmt.Sprintf("%s (yield %.2f%%, growth %.2f%%, price %.2f)",
			t.Name, t.DividendYield*100, t.DividendGrowthRate5Y*100, t.SharePrice)
	}
	return t.Symbol
}
