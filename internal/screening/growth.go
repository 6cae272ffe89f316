package screening

import "divcli/internal/dataprocessing"

// GrowthScreen keeps companies whose dividend growth is accelerating (5-year
// rate at least the 10-year rate) and whose last-year growth reaches a floor.
type GrowthScreen struct {
	MinGrowthRate1Y float64 `json:"min_growth_rate_1y"`
}

func (s GrowthScreen) Name() string { return "growth" }

func (s GrowthScreen) Apply(table *dataprocessing.Table) (*dataprocessing.Table, error) {
	// DGR 3Y is required for a well-formed sheet but not compared.
	cols, err := floatColumns(s.Name(), table, ColumnDGR1Y, ColumnDGR3Y, ColumnDGR5Y, ColumnDGR10Y)
	if err != nil {
		return nil, err
	}
	dgr1, dgr5, dgr10 := cols[0], cols[2], cols[3]

	// A zero 10-year rate with a positive 5-year rate divides to +Inf and passes.
	kept := table.Filter(func(i int) bool {
		g1, ok1 := dgr1.Float(i)
		g5, ok5 := dgr5.Float(i)
		g10, ok10 := dgr10.Float(i)
		return ok1 && ok5 && ok10 && g5/g10 >= 1.0 && g1 >= s.MinGrowthRate1Y
	})
	return kept.SortDesc(ColumnDGR1Y)
}
