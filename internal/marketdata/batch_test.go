package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divcli/internal/shared/testutil"
	"divcli/pkg/contracts/domain"
)

type fakeProvider map[string]error

func (f fakeProvider) Quote(ctx context.Context, ticker string) (domain.DividendQuote, error) {
	if err, ok := f[ticker]; ok && err != nil {
		return domain.DividendQuote{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.DividendQuote{}, err
	}
	return domain.DividendQuote{Ticker: ticker, SharePrice: 10}, nil
}

func TestFetchQuotes_IsolatesItemFailures(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	provider := fakeProvider{
		"BAD": &ProviderError{Ticker: "BAD", Op: "dividends", Err: ErrNotFound},
	}

	res, err := FetchQuotes(context.Background(), provider, []string{"ABM", "BAD", "CAT", "KO"}, 2, logger)
	require.NoError(t, err)

	var got []string
	for _, q := range res.Quotes {
		got = append(got, q.Ticker)
	}
	assert.Equal(t, []string{"ABM", "CAT", "KO"}, got)
	require.Contains(t, res.Failed, "BAD")
	assert.ErrorIs(t, res.Failed["BAD"], ErrNotFound)

	testutil.AssertLogged(t, logs, slog.LevelWarn, "Skipping ticker")
	rec, ok := logs.Find("Quote batch completed")
	require.True(t, ok)
	assert.EqualValues(t, 3, rec.Attrs["succeeded"])
	assert.EqualValues(t, 1, rec.Attrs["failed"])
}

func TestFetchQuotes_ContractViolationAborts(t *testing.T) {
	provider := fakeProvider{
		"BAD": &ProviderError{Ticker: "BAD", Op: "dividends", Err: fmt.Errorf("%w: bad payload", ErrContractViolation)},
	}

	_, err := FetchQuotes(context.Background(), provider, []string{"ABM", "BAD", "CAT"}, 1, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContractViolation)
}

func TestFetchQuotes_Empty(t *testing.T) {
	res, err := FetchQuotes(context.Background(), fakeProvider{}, nil, 4, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Quotes)
	assert.Empty(t, res.Failed)
}
