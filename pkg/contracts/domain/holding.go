package domain

import "github.com/shopspring/decimal"

// Currency of a portfolio holding.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyPLN Currency = "PLN"
)

// Holding is a position in a dividend portfolio.
type Holding struct {
	Symbol        string          `json:"symbol" yaml:"symbol" validate:"required"`
	Currency      Currency        `json:"currency" yaml:"currency" validate:"required,oneof=USD EUR PLN"`
	Invested      decimal.Decimal `json:"invested" yaml:"invested"`
	CurrentValue  decimal.Decimal `json:"current_value" yaml:"current_value"`
	DividendYield decimal.Decimal `json:"dividend_yield" yaml:"dividend_yield"`
}
