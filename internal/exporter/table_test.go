package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divcli/internal/dataprocessing"
	"divcli/internal/shared/testutil"
	"divcli/pkg/contracts/domain"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func sampleTable(t *testing.T) *dataprocessing.Table {
	t.Helper()
	table, err := dataprocessing.NewTable(
		dataprocessing.NewTextColumn("Symbol", []*string{s("ABM"), s("CAT")}),
		dataprocessing.NewFloatColumn("Div Yield", []*float64{f(5.54), nil}),
		dataprocessing.NewFloatColumn("Blended", []*float64{f(1), f(2)}),
		dataprocessing.NewTextColumn("Blended", []*string{nil, s("x")}),
	)
	require.NoError(t, err)
	return table
}

func TestTableExporter_ExportTable(t *testing.T) {
	writer, dir := setupTestEnv(t)
	logger, capture := testutil.NewTestLogger(t)
	exp := NewTableExporter(writer, logger)

	require.NoError(t, exp.ExportTable("screen.csv", sampleTable(t)))

	records := readCSV(t, filepath.Join(dir, "screen.csv"))
	assert.Equal(t, [][]string{
		{"Symbol", "Div Yield", "Blended", "Blended"},
		{"ABM", "5.54", "1", ""},
		{"CAT", "", "2", "x"},
	}, records)

	rec, ok := capture.Find("Exported table")
	require.True(t, ok)
	assert.EqualValues(t, 2, rec.Attrs["rows"])
}

func TestTableExporter_EmptyTable(t *testing.T) {
	writer, dir := setupTestEnv(t)
	exp := NewTableExporter(writer, nil)

	require.NoError(t, exp.ExportTable("empty.csv", dataprocessing.EmptyTable()))
	assert.Empty(t, readCSV(t, filepath.Join(dir, "empty.csv")))
}

func TestTableExporter_ExportIssues(t *testing.T) {
	writer, dir := setupTestEnv(t)
	exp := NewTableExporter(writer, nil)

	issues := []dataprocessing.DataQualityIssue{
		{Row: 5, Columns: []string{"Price", "DGR 1Y"}, Reason: "missing values"},
	}
	require.NoError(t, exp.ExportIssues("issues.csv", issues))

	assert.Equal(t, [][]string{
		{"row", "columns", "reason"},
		{"5", "Price;DGR 1Y", "missing values"},
	}, readCSV(t, filepath.Join(dir, "issues.csv")))
}

func TestSeriesExporter_ExportSeries(t *testing.T) {
	writer, dir := setupTestEnv(t)
	exp := NewSeriesExporter(writer)

	series := []domain.Series{
		{Name: "ABM", Points: []domain.ForecastPoint{{Day: 1, CumulativeGain: 0}, {Day: 2, CumulativeGain: 106.25}, {Day: 3, CumulativeGain: 106.25}}},
		{Name: "Savings", Points: []domain.ForecastPoint{{Day: 1, CumulativeGain: 0.9}, {Day: 2, CumulativeGain: 1.8}}},
	}
	require.NoError(t, exp.ExportSeries("series.csv", series))

	assert.Equal(t, [][]string{
		{"day", "ABM", "Savings"},
		{"1", "0.00", "0.90"},
		{"2", "106.25", "1.80"},
		{"3", "106.25", ""},
	}, readCSV(t, filepath.Join(dir, "series.csv")))
}

func TestSeriesExporter_NoSeries(t *testing.T) {
	writer, dir := setupTestEnv(t)

	require.NoError(t, NewSeriesExporter(writer).ExportSeries("none.csv", nil))
	assert.Equal(t, [][]string{{"day"}}, readCSV(t, filepath.Join(dir, "none.csv")))
}
