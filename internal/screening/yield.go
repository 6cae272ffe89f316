package screening

import "divcli/internal/dataprocessing"

// YieldScreen keeps companies whose dividend yield beats the better of the
// S&P 500 yield times 1.5, inflation and a floor, without exceeding a cap.
// All values are percentages.
type YieldScreen struct {
	SPComparisonYield float64 `json:"sp_comparison_yield" validate:"gte=0"`
	InflationRate     float64 `json:"inflation_rate"`
	MinYield          float64 `json:"min_yield" validate:"gte=0"`
	MaxYield          float64 `json:"max_yield" validate:"gtfield=MinYield"`
}

func (s YieldScreen) Name() string { return "yield" }

// Threshold is the exclusive lower bound a yield has to beat.
func (s YieldScreen) Threshold() float64 {
	return max(s.SPComparisonYield*1.5, s.InflationRate, s.MinYield)
}

func (s YieldScreen) Apply(table *dataprocessing.Table) (*dataprocessing.Table, error) {
	cols, err := floatColumns(s.Name(), table, ColumnDivYield)
	if err != nil {
		return nil, err
	}
	yield := cols[0]
	threshold := s.Threshold()

	kept := table.Filter(func(i int) bool {
		v, ok := yield.Float(i)
		return ok && v > threshold && v <= s.MaxYield
	})
	return kept.SortDesc(ColumnDivYield)
}
