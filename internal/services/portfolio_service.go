package services

import (
	"context"
	"fmt"
	"log/slog"

	"divcli/internal/dataprocessing"
	"divcli/internal/portfolio"
)

// PortfolioReport is the evaluated view of one owner's holdings.
type PortfolioReport struct {
	Owner     string                `json:"owner"`
	Positions []portfolio.Position  `json:"positions"`
	Summaries []portfolio.Summary   `json:"summaries"`
	Table     *dataprocessing.Table `json:"-"`
}

// PortfolioService evaluates holdings files.
type PortfolioService struct {
	path   string
	logger *slog.Logger
}

// NewPortfolioService creates a service reading holdings from path.
func NewPortfolioService(path string, logger *slog.Logger) *PortfolioService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortfolioService{path: path, logger: logger.With(slog.String("service", "portfolio"))}
}

// Reports evaluates every portfolio in the holdings file. A non-empty owner
// keeps only that portfolio.
func (s *PortfolioService) Reports(ctx context.Context, owner string) ([]PortfolioReport, error) {
	portfolios, err := portfolio.LoadFile(s.path)
	if err != nil {
		return nil, err
	}

	var out []PortfolioReport
	for _, p := range portfolios {
		if owner != "" && p.Owner != owner {
			continue
		}
		r, err := Evaluate(p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w in %s (owner %q)", ErrNoHoldings, s.path, owner)
	}

	s.logger.InfoContext(ctx, "Portfolios evaluated",
		slog.String("path", s.path),
		slog.Int("portfolios", len(out)))
	return out, nil
}

// Evaluate builds the report of a single portfolio.
func Evaluate(p portfolio.Portfolio) (PortfolioReport, error) {
	positions, err := p.Positions()
	if err != nil {
		return PortfolioReport{}, fmt.Errorf("portfolio %s: %w", p.Owner, err)
	}
	table, err := portfolio.Table(positions)
	if err != nil {
		return PortfolioReport{}, fmt.Errorf("portfolio %s: %w", p.Owner, err)
	}
	return PortfolioReport{
		Owner:     p.Owner,
		Positions: positions,
		Summaries: portfolio.Summarize(positions),
		Table:     table,
	}, nil
}
