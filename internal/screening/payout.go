package screening

import "divcli/internal/dataprocessing"

// PayoutScreen keeps companies paying out less than MaxPayoutRatio of their
// cash flow per share. The ratio is a fraction (0.75 means 75%).
type PayoutScreen struct {
	MaxPayoutRatio float64 `json:"max_payout_ratio" validate:"gt=0"`
}

func (s PayoutScreen) Name() string { return "payout" }

func (s PayoutScreen) Apply(table *dataprocessing.Table) (*dataprocessing.Table, error) {
	cols, err := floatColumns(s.Name(), table, ColumnCurrentDiv, ColumnCFShare, ColumnDivYield)
	if err != nil {
		return nil, err
	}
	div, cf := cols[0], cols[1]

	// NaN from 0/0 fails the comparison.
	kept := table.Filter(func(i int) bool {
		d, ok1 := div.Float(i)
		c, ok2 := cf.Float(i)
		return ok1 && ok2 && d/c < s.MaxPayoutRatio
	})
	return kept.SortDesc(ColumnDivYield)
}
