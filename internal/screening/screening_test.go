package screening

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"divcli/internal/dataprocessing"
	"divcli/internal/shared/testutil"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

// championsTable mirrors the ABM/INTC/CAT sample used throughout the screens.
func championsTable(t *testing.T) *dataprocessing.Table {
	t.Helper()
	table, err := dataprocessing.NewTable(
		dataprocessing.NewTextColumn(ColumnSymbol, []*string{s("ABM"), s("INTC"), s("CAT")}),
		dataprocessing.NewFloatColumn(ColumnPrice, []*float64{f(45.5), f(30.2), f(310)}),
		dataprocessing.NewFloatColumn(ColumnDivYield, []*float64{f(5.54), f(1.32), f(4.0)}),
		dataprocessing.NewFloatColumn(ColumnCurrentDiv, []*float64{f(0.22), f(0.5), f(1.3)}),
		dataprocessing.NewFloatColumn(ColumnCFShare, []*float64{f(4.1), f(0.62), f(185)}),
		dataprocessing.NewFloatColumn(ColumnDGR1Y, []*float64{f(5), f(2), f(8)}),
		dataprocessing.NewFloatColumn(ColumnDGR3Y, []*float64{f(4.8), f(3), f(7.5)}),
		dataprocessing.NewFloatColumn(ColumnDGR5Y, []*float64{f(4.5), f(5), f(7)}),
		dataprocessing.NewFloatColumn(ColumnDGR10Y, []*float64{f(4), f(6), f(6.5)}),
	)
	require.NoError(t, err)
	return table
}

func symbols(t *testing.T, table *dataprocessing.Table) []string {
	t.Helper()
	out := Symbols(table)
	if out == nil {
		return []string{}
	}
	return out
}

func TestYieldScreen(t *testing.T) {
	screen := YieldScreen{SPComparisonYield: 1.61, InflationRate: 3.4, MinYield: 3.9, MaxYield: 10}
	assert.InDelta(t, 3.9, screen.Threshold(), 1e-9)

	table := championsTable(t)
	out, err := screen.Apply(table)
	require.NoError(t, err)

	assert.Equal(t, []string{"ABM", "CAT"}, symbols(t, out))
	assert.Equal(t, 3, table.NumRows(), "input must not change")
}

func TestYieldScreen_Bounds(t *testing.T) {
	table, err := dataprocessing.NewTable(
		dataprocessing.NewTextColumn(ColumnSymbol, []*string{s("AT"), s("MAX"), s("OVER"), s("NONE"), s("NAN")}),
		dataprocessing.NewFloatColumn(ColumnDivYield, []*float64{f(4), f(10), f(10.01), nil, f(math.NaN())}),
	)
	require.NoError(t, err)

	out, err := YieldScreen{SPComparisonYield: 1, InflationRate: 2, MinYield: 4, MaxYield: 10}.Apply(table)
	require.NoError(t, err)

	// Lower bound is exclusive, upper bound inclusive.
	assert.Equal(t, []string{"MAX"}, symbols(t, out))
}

func TestYieldScreen_MissingColumn(t *testing.T) {
	table, err := dataprocessing.NewTable(
		dataprocessing.NewTextColumn(ColumnSymbol, []*string{s("ABM")}),
	)
	require.NoError(t, err)

	_, err = YieldScreen{MaxYield: 10}.Apply(table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))

	var mc *MissingColumnError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, ColumnDivYield, mc.Column)
}

func TestYieldScreen_TextColumnIsRejected(t *testing.T) {
	table, err := dataprocessing.NewTable(
		dataprocessing.NewTextColumn(ColumnDivYield, []*string{s("high")}),
	)
	require.NoError(t, err)

	_, err = YieldScreen{MaxYield: 10}.Apply(table)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

// payoutTable holds only the columns PayoutScreen reads.
func payoutTable(t *testing.T, currentDiv, cfShare []*float64) *dataprocessing.Table {
	t.Helper()
	table, err := dataprocessing.NewTable(
		dataprocessing.NewTextColumn(ColumnSymbol, []*string{s("ABM"), s("INTC"), s("CAT")}),
		dataprocessing.NewFloatColumn(ColumnDivYield, []*float64{f(5.54), f(1.32), f(4.0)}),
		dataprocessing.NewFloatColumn(ColumnCurrentDiv, currentDiv),
		dataprocessing.NewFloatColumn(ColumnCFShare, cfShare),
	)
	require.NoError(t, err)
	return table
}

func TestPayoutScreen(t *testing.T) {
	tests := []struct {
		name  string
		table *dataprocessing.Table
		want  []string
	}{
		{
			name:  "champions sample",
			table: championsTable(t),
			want:  []string{"ABM", "CAT"},
		},
		{
			// 0.054, 0.81 and 0.007
			name:  "reference ratios",
			table: payoutTable(t, []*float64{f(0.54), f(1.62), f(0.14)}, []*float64{f(10.0), f(2.0), f(20.0)}),
			want:  []string{"ABM", "CAT"},
		},
		{
			name:  "ratio equal to the ceiling fails",
			table: payoutTable(t, []*float64{f(0.75), f(0.5), f(0.1)}, []*float64{f(1), f(1), f(1)}),
			want:  []string{"CAT", "INTC"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := PayoutScreen{MaxPayoutRatio: 0.75}.Apply(tt.table)
			require.NoError(t, err)
			assert.Equal(t, tt.want, symbols(t, out))
		})
	}
}

func TestPayoutScreen_ZeroCashFlow(t *testing.T) {
	table, err := dataprocessing.NewTable(
		dataprocessing.NewTextColumn(ColumnSymbol, []*string{s("ZERO"), s("BOTH"), s("OK")}),
		dataprocessing.NewFloatColumn(ColumnCurrentDiv, []*float64{f(1), f(0), f(1)}),
		dataprocessing.NewFloatColumn(ColumnCFShare, []*float64{f(0), f(0), f(4)}),
		dataprocessing.NewFloatColumn(ColumnDivYield, []*float64{f(3), f(2), f(1)}),
	)
	require.NoError(t, err)

	out, err := PayoutScreen{MaxPayoutRatio: 0.75}.Apply(table)
	require.NoError(t, err)
	assert.Equal(t, []string{"OK"}, symbols(t, out))
}

func TestPayoutScreen_MissingColumns(t *testing.T) {
	for _, missing := range []string{ColumnCurrentDiv, ColumnCFShare, ColumnDivYield} {
		t.Run(missing, func(t *testing.T) {
			var cols []*dataprocessing.Column
			for _, name := range []string{ColumnCurrentDiv, ColumnCFShare, ColumnDivYield} {
				if name != missing {
					cols = append(cols, dataprocessing.NewFloatColumn(name, []*float64{f(1)}))
				}
			}
			table, err := dataprocessing.NewTable(cols...)
			require.NoError(t, err)

			_, err = PayoutScreen{MaxPayoutRatio: 0.75}.Apply(table)
			var mc *MissingColumnError
			require.ErrorAs(t, err, &mc)
			assert.Equal(t, missing, mc.Column)
		})
	}
}

func TestGrowthScreen(t *testing.T) {
	out, err := GrowthScreen{MinGrowthRate1Y: 3}.Apply(championsTable(t))
	require.NoError(t, err)

	// INTC fails on 5Y < 10Y; survivors are sorted by DGR 1Y.
	assert.Equal(t, []string{"CAT", "ABM"}, symbols(t, out))
}

func TestGrowthScreen_ZeroTenYearRate(t *testing.T) {
	table, err := dataprocessing.NewTable(
		dataprocessing.NewTextColumn(ColumnSymbol, []*string{s("NEW"), s("FLAT")}),
		dataprocessing.NewFloatColumn(ColumnDGR1Y, []*float64{f(5), f(5)}),
		dataprocessing.NewFloatColumn(ColumnDGR3Y, []*float64{f(5), f(5)}),
		dataprocessing.NewFloatColumn(ColumnDGR5Y, []*float64{f(5), f(0)}),
		dataprocessing.NewFloatColumn(ColumnDGR10Y, []*float64{f(0), f(0)}),
	)
	require.NoError(t, err)

	out, err := GrowthScreen{MinGrowthRate1Y: 0}.Apply(table)
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW"}, symbols(t, out))
}

func TestGrowthScreen_RequiresDGR3Y(t *testing.T) {
	table, err := dataprocessing.NewTable(
		dataprocessing.NewFloatColumn(ColumnDGR1Y, []*float64{f(5)}),
		dataprocessing.NewFloatColumn(ColumnDGR5Y, []*float64{f(5)}),
		dataprocessing.NewFloatColumn(ColumnDGR10Y, []*float64{f(5)}),
	)
	require.NoError(t, err)

	_, err = GrowthScreen{}.Apply(table)
	var mc *MissingColumnError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, ColumnDGR3Y, mc.Column)
}

type recordingObserver struct {
	stages []string
}

func (r *recordingObserver) ObserveStage(stage string, _, _ int, _ time.Duration) {
	r.stages = append(r.stages, stage)
}

func TestPipeline_Run(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	obs := &recordingObserver{}

	pipeline := NewPipeline(logger,
		YieldScreen{SPComparisonYield: 1.61, InflationRate: 3.4, MinYield: 3.9, MaxYield: 10},
		PayoutScreen{MaxPayoutRatio: 0.75},
		GrowthScreen{MinGrowthRate1Y: 0},
	).WithObserver(obs)

	out, results, err := pipeline.Run(context.Background(), championsTable(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"CAT", "ABM"}, symbols(t, out))
	require.Len(t, results, 3)
	assert.Equal(t, 3, results[0].RowsIn)
	assert.Equal(t, 2, results[0].RowsOut)
	assert.Equal(t, 2, results[2].RowsOut)
	assert.Equal(t, []string{"yield", "payout", "growth"}, obs.stages)
	assert.Len(t, logs.ByLevel(slog.LevelInfo), 3)
}

func TestPipeline_StopsOnFirstError(t *testing.T) {
	table, err := dataprocessing.NewTable(
		dataprocessing.NewTextColumn(ColumnSymbol, []*string{s("ABM")}),
		dataprocessing.NewFloatColumn(ColumnDivYield, []*float64{f(5)}),
	)
	require.NoError(t, err)

	logger, logs := testutil.NewTestLogger(t)
	pipeline := NewPipeline(logger, YieldScreen{MaxYield: 10}, PayoutScreen{MaxPayoutRatio: 0.75}, GrowthScreen{})

	_, results, err := pipeline.Run(context.Background(), table)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "payout stage failed")
	assert.Len(t, results, 1)
	testutil.AssertLogged(t, logs, slog.LevelError, "Screen stage failed")
}

func TestPipeline_StageSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	ctx, parent := tp.Tracer("test").Start(context.Background(), "screen")
	pipeline := NewPipeline(nil,
		YieldScreen{SPComparisonYield: 1.61, InflationRate: 3.4, MinYield: 3.9, MaxYield: 10},
		PayoutScreen{MaxPayoutRatio: 0.75},
		GrowthScreen{MinGrowthRate1Y: 0},
	).WithTracer(tp.Tracer("test"))

	_, _, err := pipeline.Run(ctx, championsTable(t))
	require.NoError(t, err)
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 4)
	for i, want := range []string{"yield", "payout", "growth"} {
		span := spans[i]
		assert.Equal(t, "screen.stage "+want, span.Name)
		assert.Equal(t, parent.SpanContext().SpanID(), span.Parent.SpanID())
		assert.Contains(t, span.Attributes, attribute.String("screen.stage", want))
	}
	assert.Contains(t, spans[0].Attributes, attribute.Int("screen.rows_in", 3))
	assert.Contains(t, spans[0].Attributes, attribute.Int("screen.rows_out", 2))
}

func TestPipeline_FailedStageSpan(t *testing.T) {
	table, err := dataprocessing.NewTable(
		dataprocessing.NewTextColumn(ColumnSymbol, []*string{s("ABM")}),
		dataprocessing.NewFloatColumn(ColumnDivYield, []*float64{f(5)}),
	)
	require.NoError(t, err)

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	pipeline := NewPipeline(nil, YieldScreen{MaxYield: 10}, PayoutScreen{MaxPayoutRatio: 0.75}).
		WithTracer(tp.Tracer("test"))
	_, _, err = pipeline.Run(context.Background(), table)
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Equal(t, "screen.stage payout", spans[1].Name)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}

func TestPipeline_Empty(t *testing.T) {
	table := championsTable(t)
	out, results, err := NewPipeline(nil).Run(context.Background(), table)
	require.NoError(t, err)
	assert.Same(t, table, out)
	assert.Empty(t, results)
	assert.Empty(t, NewPipeline(nil).Stages())
}

func TestLookupTarget(t *testing.T) {
	target, err := LookupTarget(championsTable(t), "CAT")
	require.NoError(t, err)

	assert.True(t, target.IsManual())
	assert.Equal(t, "CAT", target.Name)
	assert.InDelta(t, 0.04, target.DividendYield, 1e-12)
	assert.InDelta(t, 0.07, target.DividendGrowthRate5Y, 1e-12)
	assert.Equal(t, 310.0, target.SharePrice)

	_, err = LookupTarget(championsTable(t), "XYZ")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
}
