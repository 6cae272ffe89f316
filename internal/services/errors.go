package services

import "errors"

var (
	// ErrProviderDisabled is returned by quote lookups when no market-data
	// provider is configured.
	ErrProviderDisabled = errors.New("market data provider not configured")

	// ErrNoHoldings is returned when a holdings file has no portfolio for
	// the requested owner.
	ErrNoHoldings = errors.New("no holdings found")
)
