package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// WriteWorkbook saves an xlsx file with one sheet per entry of sheets, in
// the order given by names, and returns its path. Nil values leave the
// cell unset.
func WriteWorkbook(t *testing.T, names []string, sheets map[string][][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range names {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			for c, v := range row {
				if v == nil {
					continue
				}
				axis, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, axis, v))
			}
		}
	}

	path := filepath.Join(t.TempDir(), "dividends.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// ChampionsSheet returns a small "All" category grid: two title rows, the
// header row and three companies.
func ChampionsSheet() [][]any {
	return [][]any{
		{"U.S. Dividend Champions"},
		{"Updated weekly"},
		{"Company", "Symbol", "Price", "Div Yield", "Current Div", "CF/Share", "DGR 1Y", "DGR 3Y", "DGR 5Y", "DGR 10Y"},
		{"ABM Industries", "ABM", 45.5, 5.54, 0.22, 4.1, 5.0, 4.8, 4.5, 4.0},
		{"Intel", "INTC", 30.2, 1.32, 0.5, 0.62, 2.0, 3.0, 5.0, 6.0},
		{"Caterpillar", "CAT", 310.0, 4.0, 1.3, 185.0, 8.0, 7.5, 7.0, 6.5},
	}
}
