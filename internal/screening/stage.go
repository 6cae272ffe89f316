package screening

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"divcli/internal/dataprocessing"
)

// Column names used by the screens.
const (
	ColumnSymbol     = "Symbol"
	ColumnPrice      = "Price"
	ColumnDivYield   = "Div Yield"
	ColumnCurrentDiv = "Current Div"
	ColumnCFShare    = "CF/Share"
	ColumnDGR1Y      = "DGR 1Y"
	ColumnDGR3Y      = "DGR 3Y"
	ColumnDGR5Y      = "DGR 5Y"
	ColumnDGR10Y     = "DGR 10Y"
)

// Stage is one filter-and-sort step of a screen.
type Stage interface {
	// Name identifies the stage in logs and errors.
	Name() string

	// Apply returns the rows that pass the stage. The input is not modified.
	Apply(table *dataprocessing.Table) (*dataprocessing.Table, error)
}

// Observer receives per-stage pass-through counts.
type Observer interface {
	ObserveStage(stage string, rowsIn, rowsOut int, elapsed time.Duration)
}

// StageResult summarizes one stage of a pipeline run.
type StageResult struct {
	Stage    string        `json:"stage"`
	RowsIn   int           `json:"rows_in"`
	RowsOut  int           `json:"rows_out"`
	Duration time.Duration `json:"duration"`
}

// Pipeline runs stages in order, feeding each the previous output.
type Pipeline struct {
	stages   []Stage
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
}

// NewPipeline creates a pipeline. A nil logger falls back to slog.Default.
func NewPipeline(logger *slog.Logger, stages ...Stage) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		stages: stages,
		logger: logger.With("component", "screen_pipeline"),
		tracer: noop.NewTracerProvider().Tracer(""),
	}
}

// WithObserver attaches an observer notified after every stage.
func (p *Pipeline) WithObserver(o Observer) *Pipeline {
	p.observer = o
	return p
}

// WithTracer records one span per stage.
func (p *Pipeline) WithTracer(t trace.Tracer) *Pipeline {
	if t != nil {
		p.tracer = t
	}
	return p
}

// Stages returns the configured stage names in order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run applies every stage. The first failing stage aborts the run.
func (p *Pipeline) Run(ctx context.Context, table *dataprocessing.Table) (*dataprocessing.Table, []StageResult, error) {
	results := make([]StageResult, 0, len(p.stages))
	current := table

	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, results, err
		}

		_, span := p.tracer.Start(ctx, "screen.stage "+stage.Name(), trace.WithAttributes(
			attribute.String("screen.stage", stage.Name()),
			attribute.Int("screen.rows_in", current.NumRows()),
		))

		start := time.Now()
		out, err := stage.Apply(current)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			p.logger.ErrorContext(ctx, "Screen stage failed",
				"stage", stage.Name(),
				"error", err)
			return nil, results, fmt.Errorf("%s stage failed: %w", stage.Name(), err)
		}

		res := StageResult{
			Stage:    stage.Name(),
			RowsIn:   current.NumRows(),
			RowsOut:  out.NumRows(),
			Duration: time.Since(start),
		}
		span.SetAttributes(attribute.Int("screen.rows_out", res.RowsOut))
		span.End()

		results = append(results, res)
		if p.observer != nil {
			p.observer.ObserveStage(res.Stage, res.RowsIn, res.RowsOut, res.Duration)
		}

		p.logger.InfoContext(ctx, "Screen stage applied",
			"stage", res.Stage,
			"rows_in", res.RowsIn,
			"rows_out", res.RowsOut)

		current = out
	}

	return current, results, nil
}
