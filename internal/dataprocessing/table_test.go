package dataprocessing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func sampleTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(
		NewTextColumn("Symbol", []*string{s("ABM"), s("INTC"), s("CAT"), s("MMM"), s("KO")}),
		NewFloatColumn("Div Yield", []*float64{f(5.54), f(1.32), f(4.0), nil, f(math.NaN())}),
	)
	require.NoError(t, err)
	return table
}

func TestNewTable_LengthMismatch(t *testing.T) {
	_, err := NewTable(
		NewTextColumn("Symbol", []*string{s("ABM")}),
		NewFloatColumn("Price", []*float64{f(1), f(2)}),
	)

	var assembly *TableAssemblyError
	require.True(t, errors.As(err, &assembly))
	assert.Equal(t, "Price", assembly.Column)
	assert.Equal(t, 1, assembly.Expected)
	assert.Equal(t, 2, assembly.Actual)
}

func TestTable_FilterDoesNotMutate(t *testing.T) {
	table := sampleTable(t)

	filtered := table.Filter(func(i int) bool {
		v, ok := table.ColumnAt(1).Float(i)
		return ok && v > 2
	})

	assert.Equal(t, 2, filtered.NumRows())
	assert.Equal(t, 5, table.NumRows())
	sym, _ := filtered.Column("Symbol")
	assert.Equal(t, "ABM", sym.Format(0))
	assert.Equal(t, "CAT", sym.Format(1))
}

func TestTable_SortDesc(t *testing.T) {
	table := sampleTable(t)

	sorted, err := table.SortDesc("Div Yield")
	require.NoError(t, err)

	sym, _ := sorted.Column("Symbol")
	var got []string
	for i := 0; i < sorted.NumRows(); i++ {
		got = append(got, sym.Format(i))
	}
	assert.Equal(t, []string{"ABM", "CAT", "INTC", "MMM", "KO"}, got)

	_, err = table.SortDesc("Symbol")
	assert.Error(t, err)
	_, err = table.SortDesc("Price")
	assert.Error(t, err)
}

func TestTable_SortDescIsStable(t *testing.T) {
	table, err := NewTable(
		NewTextColumn("Symbol", []*string{s("A"), s("B"), s("C")}),
		NewFloatColumn("DGR 1Y", []*float64{f(5), f(7), f(5)}),
	)
	require.NoError(t, err)

	sorted, err := table.SortDesc("DGR 1Y")
	require.NoError(t, err)

	sym, _ := sorted.Column("Symbol")
	assert.Equal(t, "B", sym.Format(0))
	assert.Equal(t, "A", sym.Format(1))
	assert.Equal(t, "C", sym.Format(2))
}

func TestColumn_Format(t *testing.T) {
	c := NewFloatColumn("Price", []*float64{f(45.5), nil, f(310)})
	assert.Equal(t, "45.5", c.Format(0))
	assert.Equal(t, "", c.Format(1))
	assert.Equal(t, "310", c.Format(2))
}
