package portfolio

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"divcli/pkg/contracts/domain"
)

var validate = validator.New()

type fileRecord struct {
	Portfolios []portfolioRecord `yaml:"portfolios" validate:"required,min=1,dive"`
}

type portfolioRecord struct {
	Owner    string          `yaml:"owner" validate:"required"`
	Holdings []holdingRecord `yaml:"holdings" validate:"dive"`
}

// Amounts are kept as text so they reach decimal.Decimal without a float
// round trip.
type holdingRecord struct {
	Symbol        string `yaml:"symbol" validate:"required"`
	Currency      string `yaml:"currency" validate:"required,oneof=USD EUR PLN"`
	Invested      string `yaml:"invested" validate:"required,numeric"`
	CurrentValue  string `yaml:"current_value" validate:"required,numeric"`
	DividendYield string `yaml:"dividend_yield" validate:"required,numeric"`
}

// LoadFile reads portfolios from a YAML file of the form
//
//	portfolios:
//	  - owner: alice
//	    holdings:
//	      - {symbol: KO, currency: USD, invested: 74.86, current_value: 69.69, dividend_yield: 0.02893}
func LoadFile(path string) ([]Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates portfolio YAML.
func Parse(data []byte) ([]Portfolio, error) {
	var rec fileRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse holdings: %w", err)
	}
	if err := validate.Struct(rec); err != nil {
		return nil, fmt.Errorf("invalid holdings: %w", err)
	}

	out := make([]Portfolio, 0, len(rec.Portfolios))
	for _, pr := range rec.Portfolios {
		p := Portfolio{Owner: pr.Owner, Holdings: make([]domain.Holding, 0, len(pr.Holdings))}
		for _, hr := range pr.Holdings {
			h, err := hr.holding()
			if err != nil {
				return nil, fmt.Errorf("portfolio %s: %w", pr.Owner, err)
			}
			p.Holdings = append(p.Holdings, h)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r holdingRecord) holding() (domain.Holding, error) {
	var amounts [3]decimal.Decimal
	for i, raw := range []string{r.Invested, r.CurrentValue, r.DividendYield} {
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return domain.Holding{}, fmt.Errorf("holding %s: %w", r.Symbol, err)
		}
		amounts[i] = d
	}
	return domain.Holding{
		Symbol:        r.Symbol,
		Currency:      domain.Currency(r.Currency),
		Invested:      amounts[0],
		CurrentValue:  amounts[1],
		DividendYield: amounts[2],
	}, nil
}
