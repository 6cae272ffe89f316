package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"divcli/internal/config"
	"divcli/internal/dataprocessing"
	apperrors "divcli/internal/errors"
	"divcli/internal/infrastructure"
	"divcli/internal/screening"
)

// Stage names accepted in ScreenCriteria.Stages.
const (
	StageYield  = "yield"
	StagePayout = "payout"
	StageGrowth = "growth"
)

// DefaultStages is the reference stage order.
var DefaultStages = []string{StageYield, StagePayout, StageGrowth}

var validate = validator.New()

// ScreenCriteria selects a category and the thresholds of each stage.
// Yields are percentages, MaxPayoutRatio is a fraction.
type ScreenCriteria struct {
	Category          string   `json:"category" validate:"required"`
	SPComparisonYield float64  `json:"sp_comparison_yield" validate:"gte=0"`
	InflationRate     float64  `json:"inflation_rate"`
	MinYield          float64  `json:"min_yield" validate:"gte=0"`
	MaxYield          float64  `json:"max_yield" validate:"gtefield=MinYield"`
	MaxPayoutRatio    float64  `json:"max_payout_ratio" validate:"gt=0"`
	MinGrowthRate     float64  `json:"min_growth_rate"`
	Stages            []string `json:"stages,omitempty" validate:"omitempty,dive,oneof=yield payout growth"`
}

// CriteriaFromConfig returns the configured default criteria.
func CriteriaFromConfig(cfg config.ScreeningConfig) ScreenCriteria {
	return ScreenCriteria{
		Category:          cfg.Category,
		SPComparisonYield: cfg.SPComparisonYield,
		InflationRate:     cfg.InflationRate,
		MinYield:          cfg.MinYield,
		MaxYield:          cfg.MaxYield,
		MaxPayoutRatio:    cfg.MaxPayoutRatio,
		MinGrowthRate:     cfg.MinGrowthRate,
		Stages:            slices.Clone(DefaultStages),
	}
}

// BuildStages builds the screening stages in the requested order.
func (c ScreenCriteria) BuildStages() ([]screening.Stage, error) {
	names := c.Stages
	if len(names) == 0 {
		names = DefaultStages
	}

	stages := make([]screening.Stage, 0, len(names))
	for _, name := range names {
		switch name {
		case StageYield:
			stages = append(stages, screening.YieldScreen{
				SPComparisonYield: c.SPComparisonYield,
				InflationRate:     c.InflationRate,
				MinYield:          c.MinYield,
				MaxYield:          c.MaxYield,
			})
		case StagePayout:
			stages = append(stages, screening.PayoutScreen{MaxPayoutRatio: c.MaxPayoutRatio})
		case StageGrowth:
			stages = append(stages, screening.GrowthScreen{MinGrowthRate1Y: c.MinGrowthRate})
		default:
			return nil, fmt.Errorf("unknown screen stage %q", name)
		}
	}
	return stages, nil
}

// ScreenResult is the shortlist produced by a screening run.
type ScreenResult struct {
	RunID    string                            `json:"run_id"`
	Category string                            `json:"category"`
	Source   string                            `json:"source"`
	RowsIn   int                               `json:"rows_in"`
	Table    *dataprocessing.Table             `json:"-"`
	Stages   []screening.StageResult           `json:"stages"`
	Issues   []dataprocessing.DataQualityIssue `json:"issues,omitempty"`
	Duration time.Duration                     `json:"duration"`
}

// ScreeningService loads category tables and runs screen pipelines over them.
type ScreeningService struct {
	source   WorkbookSource
	builder  *dataprocessing.Builder
	observer screening.Observer
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewScreeningService creates a screening service. The observer may be nil.
func NewScreeningService(source WorkbookSource, observer screening.Observer, logger *slog.Logger) *ScreeningService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScreeningService{
		source:   source,
		builder:  dataprocessing.NewBuilder(logger),
		observer: observer,
		tracer:   noop.NewTracerProvider().Tracer(""),
		logger:   logger.With(slog.String("service", "screening")),
	}
}

// WithTracer records a span per screen run with one child per stage.
func (s *ScreeningService) WithTracer(t trace.Tracer) *ScreeningService {
	if t != nil {
		s.tracer = t
	}
	return s
}

func (s *ScreeningService) open(ctx context.Context) (dataprocessing.Workbook, func(), error) {
	wb, err := s.source.Open(ctx)
	if err != nil {
		return nil, nil, apperrors.NewDataSourceError("failed to open "+s.source.Describe(), err)
	}
	release := func() {
		if c, ok := wb.(io.Closer); ok {
			if err := c.Close(); err != nil {
				s.logger.WarnContext(ctx, "Failed to close workbook", slog.String("error", err.Error()))
			}
		}
	}
	return wb, release, nil
}

// Categories lists the sheet names of the source workbook.
func (s *ScreeningService) Categories(ctx context.Context) ([]string, error) {
	wb, release, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return wb.SheetNames(), nil
}

// LoadTable builds the table for one category.
func (s *ScreeningService) LoadTable(ctx context.Context, category string) (*dataprocessing.Table, error) {
	wb, release, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.builder.Build(ctx, wb, category)
}

// Screen runs the criteria against the configured source.
func (s *ScreeningService) Screen(ctx context.Context, criteria ScreenCriteria) (*ScreenResult, error) {
	wb, release, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := s.ScreenWorkbook(ctx, wb, criteria)
	if err != nil {
		return nil, err
	}
	res.Source = s.source.Describe()
	return res, nil
}

// ScreenWorkbook runs the criteria against wb.
func (s *ScreeningService) ScreenWorkbook(ctx context.Context, wb dataprocessing.Workbook, criteria ScreenCriteria) (*ScreenResult, error) {
	if err := validate.Struct(criteria); err != nil {
		return nil, fmt.Errorf("invalid screen criteria: %w", err)
	}
	stages, err := criteria.BuildStages()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	start := time.Now()
	logger := s.logger.With(slog.String("run_id", runID), slog.String("category", criteria.Category))

	ctx, span := infrastructure.StartSpan(ctx, s.tracer, "screen",
		attribute.String("screen.run_id", runID),
		attribute.String("screen.category", criteria.Category))
	defer span.End()

	table, err := s.builder.Build(ctx, wb, criteria.Category)
	if err != nil {
		infrastructure.RecordError(span, err)
		logger.ErrorContext(ctx, "Failed to build table", slog.String("error", err.Error()))
		return nil, err
	}

	pipeline := screening.NewPipeline(logger, stages...).WithTracer(s.tracer)
	if s.observer != nil {
		pipeline.WithObserver(s.observer)
	}
	shortlist, results, err := pipeline.Run(ctx, table)
	if err != nil {
		infrastructure.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("screen.rows_out", shortlist.NumRows()))

	res := &ScreenResult{
		RunID:    runID,
		Category: criteria.Category,
		Source:   "memory",
		RowsIn:   table.NumRows(),
		Table:    shortlist,
		Stages:   results,
		Issues:   table.Issues(),
		Duration: time.Since(start),
	}

	logger.InfoContext(ctx, "Screen completed",
		slog.Int("rows_in", res.RowsIn),
		slog.Int("rows_out", shortlist.NumRows()),
		slog.Int("issues", len(res.Issues)),
		slog.Duration("duration", res.Duration))

	return res, nil
}
