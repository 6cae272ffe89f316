package portfolio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divcli/pkg/contracts/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func holding(sym string, c domain.Currency, invested, current, yield string) domain.Holding {
	return domain.Holding{Symbol: sym, Currency: c, Invested: dec(invested), CurrentValue: dec(current), DividendYield: dec(yield)}
}

func TestYieldOnInvestment(t *testing.T) {
	got, err := YieldOnInvestment(dec("1000"), dec("1200"), dec("0.05"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("0.06")), "got %s", got)

	_, err = YieldOnInvestment(decimal.Zero, dec("1"), dec("0.1"))
	assert.ErrorIs(t, err, ErrNoInvestment)
}

func TestEvaluate(t *testing.T) {
	pos, err := Evaluate(holding("CAG", domain.CurrencyUSD, "481.99", "918.33", "0.0826"))
	require.NoError(t, err)
	assert.Equal(t, "75.854058", pos.AnnualDividend.String())
	assert.Equal(t, "0.1574", pos.YieldOnInvestment.Round(4).String())

	_, err = Evaluate(holding("BAD", domain.CurrencyUSD, "-1", "1", "0.1"))
	assert.ErrorIs(t, err, ErrNoInvestment)
	assert.Contains(t, err.Error(), "BAD")
}

func TestSummarize(t *testing.T) {
	p := Portfolio{Owner: "jacek", Holdings: []domain.Holding{
		holding("UPS", domain.CurrencyUSD, "100", "150", "0.06"),
		holding("TW10", domain.CurrencyEUR, "10", "20", "0.05"),
		holding("XRAY", domain.CurrencyUSD, "50", "50", "0.04"),
	}}
	positions, err := p.Positions()
	require.NoError(t, err)

	summaries := Summarize(positions)
	require.Len(t, summaries, 2)

	usd := summaries[0]
	assert.Equal(t, domain.CurrencyUSD, usd.Currency)
	assert.True(t, usd.Invested.Equal(dec("150")))
	assert.True(t, usd.Value.Equal(dec("200")))
	assert.True(t, usd.AnnualDividend.Equal(dec("11")))
	assert.Equal(t, "7.33", usd.YieldPct.StringFixed(2))

	eur := summaries[1]
	assert.Equal(t, domain.CurrencyEUR, eur.Currency)
	assert.True(t, eur.AnnualDividend.Equal(dec("1")))
	assert.Equal(t, "10.00", eur.YieldPct.StringFixed(2))
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "4.95 USD", Money(dec("4.95"), domain.CurrencyUSD))
	assert.Equal(t, "22.50 EUR", Money(dec("22.5"), domain.CurrencyEUR))
}

func TestTable(t *testing.T) {
	positions, err := Portfolio{Holdings: []domain.Holding{
		holding("VZ", domain.CurrencyUSD, "19.85", "20.08", "0.0673"),
		holding("ABEV", domain.CurrencyUSD, "3.11", "4.95", "0.0609"),
	}}.Positions()
	require.NoError(t, err)

	table, err := Table(positions)
	require.NoError(t, err)
	assert.Equal(t, []string{"Company", "Investment", "Current Value", "Yield[%]", "Yield on investment[%]", "Annual dividend"}, table.Headers())
	require.Equal(t, 2, table.NumRows())

	company, _ := table.Column("Company")
	first, _ := company.Text(0)
	assert.Equal(t, "ABEV", first)

	yield, _ := table.Column("Yield[%]")
	v, ok := yield.Float(0)
	require.True(t, ok)
	assert.InDelta(t, 6.09, v, 1e-9)

	invested, _ := table.Column("Investment")
	s, _ := invested.Text(0)
	assert.Equal(t, "3.11 USD", s)
}

const holdingsYAML = `
portfolios:
  - owner: ania
    holdings:
      - {symbol: ABEV, currency: USD, invested: 3.11, current_value: 4.95, dividend_yield: 0.0609}
      - {symbol: KO, currency: USD, invested: 74.86, current_value: 69.69, dividend_yield: 0.02893}
  - owner: jacek
    holdings:
      - {symbol: UEI, currency: EUR, invested: 21.29, current_value: 86.45, dividend_yield: 0.0423}
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holdings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(holdingsYAML), 0o600))

	portfolios, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, portfolios, 2)

	assert.Equal(t, "ania", portfolios[0].Owner)
	require.Len(t, portfolios[0].Holdings, 2)
	ko := portfolios[0].Holdings[1]
	assert.Equal(t, "KO", ko.Symbol)
	assert.Equal(t, domain.CurrencyUSD, ko.Currency)
	assert.True(t, ko.DividendYield.Equal(dec("0.02893")))

	assert.Equal(t, domain.CurrencyEUR, portfolios[1].Holdings[0].Currency)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "portfolios: ["},
		{"no portfolios", "portfolios: []"},
		{"unknown currency", "portfolios:\n  - owner: a\n    holdings:\n      - {symbol: X, currency: GBP, invested: 1, current_value: 1, dividend_yield: 0.1}\n"},
		{"non numeric amount", "portfolios:\n  - owner: a\n    holdings:\n      - {symbol: X, currency: USD, invested: lots, current_value: 1, dividend_yield: 0.1}\n"},
		{"missing owner", "portfolios:\n  - holdings: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
