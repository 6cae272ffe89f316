package marketdata

import (
	"errors"
	"fmt"
)

var (
	// ErrContractViolation marks responses that break the provider's API
	// contract (unexpected status, malformed payload). It aborts batches.
	ErrContractViolation = errors.New("provider contract violation")

	// ErrRateLimited is returned when retries on HTTP 429 are exhausted.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound is returned for unknown tickers.
	ErrNotFound = errors.New("not found")

	// ErrNoData is returned when a ticker lacks the data a quote needs.
	ErrNoData = errors.New("no data")
)

// ProviderError is a failure fetching one ticker.
type ProviderError struct {
	Ticker     string
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Op, e.Ticker)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsFatal reports whether err must abort a batch rather than skip one item.
func IsFatal(err error) bool {
	return errors.Is(err, ErrContractViolation)
}
