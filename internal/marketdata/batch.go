package marketdata

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"divcli/pkg/contracts/domain"
)

// BatchResult holds the quotes that were fetched and the per-ticker failures
// that were skipped.
type BatchResult struct {
	Quotes []domain.DividendQuote `json:"quotes"`
	Failed map[string]error       `json:"-"`
}

// FetchQuotes fetches tickers concurrently. A ProviderError for one ticker
// is logged and skipped; a contract violation cancels the whole batch.
// Quotes keep the order of tickers.
func FetchQuotes(ctx context.Context, p Provider, tickers []string, concurrency int, logger *slog.Logger) (BatchResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}

	quotes := make([]*domain.DividendQuote, len(tickers))
	var (
		mu     sync.Mutex
		failed = make(map[string]error)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, ticker := range tickers {
		g.Go(func() error {
			q, err := p.Quote(gctx, ticker)
			if err != nil {
				if IsFatal(err) || gctx.Err() != nil {
					return err
				}
				logger.WarnContext(gctx, "Skipping ticker", "ticker", ticker, "error", err)
				mu.Lock()
				failed[ticker] = err
				mu.Unlock()
				return nil
			}
			quotes[i] = &q
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "Quote batch aborted", "error", err)
		return BatchResult{}, err
	}

	res := BatchResult{Failed: failed, Quotes: make([]domain.DividendQuote, 0, len(tickers))}
	for _, q := range quotes {
		if q != nil {
			res.Quotes = append(res.Quotes, *q)
		}
	}

	logger.InfoContext(ctx, "Quote batch completed",
		"requested", len(tickers),
		"succeeded", len(res.Quotes),
		"failed", len(failed))

	return res, nil
}
