package screening

import (
	"fmt"

	"divcli/internal/dataprocessing"
	"divcli/pkg/contracts/domain"
)

// LookupTarget resolves a symbol against a category table. Percentage
// columns are converted to fractions.
func LookupTarget(table *dataprocessing.Table, symbol string) (domain.Target, error) {
	sym, ok := table.Column(ColumnSymbol)
	if !ok {
		return domain.Target{}, &MissingColumnError{Stage: "lookup", Column: ColumnSymbol}
	}
	cols, err := floatColumns("lookup", table, ColumnPrice, ColumnDivYield, ColumnDGR5Y)
	if err != nil {
		return domain.Target{}, err
	}
	price, yield, dgr5 := cols[0], cols[1], cols[2]

	for i := 0; i < table.NumRows(); i++ {
		if sym.Format(i) != symbol {
			continue
		}
		p, okP := price.Float(i)
		y, okY := yield.Float(i)
		g, okG := dgr5.Float(i)
		if !okP || !okY || !okG {
			return domain.Target{}, fmt.Errorf("symbol %s has incomplete dividend data", symbol)
		}
		return domain.ManualTarget(symbol, y/100, g/100, p), nil
	}
	return domain.Target{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
}

// Symbols returns the symbol column values in row order.
func Symbols(table *dataprocessing.Table) []string {
	sym, ok := table.Column(ColumnSymbol)
	if !ok {
		return nil
	}
	out := make([]string, 0, table.NumRows())
	for i := 0; i < table.NumRows(); i++ {
		if !sym.IsMissing(i) {
			out = append(out, sym.Format(i))
		}
	}
	return out
}
