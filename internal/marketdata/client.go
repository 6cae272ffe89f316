package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"divcli/pkg/contracts/domain"
)

const (
	DefaultBaseURL = "https://api.polygon.io"
	defaultTimeout = 30 * time.Second
	pageLimit      = 1000
)

// Recorder receives request telemetry.
type Recorder interface {
	ObserveProviderRequest(op string, status int, elapsed time.Duration)
	IncProviderRetry(op string)
}

// ClientConfig configures a PolygonClient.
type ClientConfig struct {
	BaseURL           string
	APIKey            string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	Retry             RetryPolicy
}

// PolygonClient is a rate-limited client for the Polygon REST API.
type PolygonClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryPolicy
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// Option customizes a PolygonClient.
type Option func(*PolygonClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option { return func(p *PolygonClient) { p.httpClient = c } }

// WithRecorder attaches request telemetry.
func WithRecorder(r Recorder) Option { return func(p *PolygonClient) { p.recorder = r } }

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option { return func(p *PolygonClient) { p.logger = l } }

// WithClock overrides the time source used to decide the current year.
func WithClock(now func() time.Time) Option { return func(p *PolygonClient) { p.now = now } }

// NewPolygonClient creates a client. A zero rate disables limiting.
func NewPolygonClient(cfg ClientConfig, opts ...Option) *PolygonClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	c := &PolygonClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		retry:      cfg.Retry,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "polygon_client")
	return c
}

// endpoint builds an absolute URL for path with query parameters.
func (c *PolygonClient) endpoint(path string, params url.Values) string {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// withKey adds the API key to a URL, including provider-issued next_url links.
func (c *PolygonClient) withKey(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid url %q", ErrContractViolation, raw)
	}
	if c.apiKey != "" {
		q := u.Query()
		q.Set("apiKey", c.apiKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// getJSON fetches rawURL into out, retrying throttled and transient failures.
func (c *PolygonClient) getJSON(ctx context.Context, op, ticker, rawURL string, out any) error {
	target, err := c.withKey(rawURL)
	if err != nil {
		return &ProviderError{Ticker: ticker, Op: op, Err: err}
	}

	var lastErr error
	var lastStatus int
	attempts := c.retry.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := c.retry.Delay(attempt - 1)
			c.logger.WarnContext(ctx, "Retrying provider request",
				"op", op,
				"ticker", ticker,
				"attempt", attempt,
				"delay", delay,
				"error", lastErr)
			if c.recorder != nil {
				c.recorder.IncProviderRetry(op)
			}
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		status, retryable, err := c.do(ctx, op, target, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr, lastStatus = err, status
		if !retryable {
			break
		}
	}

	return &ProviderError{Ticker: ticker, Op: op, StatusCode: lastStatus, Err: lastErr}
}

// do performs a single request. retryable reports whether another attempt may succeed.
func (c *PolygonClient) do(ctx context.Context, op, target string, out any) (status int, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if c.recorder != nil {
		c.recorder.ObserveProviderRequest(op, resp.StatusCode, time.Since(start))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return resp.StatusCode, true, ErrRateLimited
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, false, ErrNotFound
	case resp.StatusCode >= 500:
		return resp.StatusCode, true, fmt.Errorf("server error: %s", resp.Status)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, false, fmt.Errorf("%w: unexpected status %d: %s",
			ErrContractViolation, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, false, fmt.Errorf("%w: failed to decode response: %w", ErrContractViolation, err)
	}
	return resp.StatusCode, false, nil
}

// Dividends returns the full cash dividend history of ticker, following
// next_url pagination.
func (c *PolygonClient) Dividends(ctx context.Context, ticker string) ([]domain.DividendPayment, error) {
	next := c.endpoint("/v3/reference/dividends", url.Values{
		"ticker": {ticker},
		"limit":  {strconv.Itoa(pageLimit)},
	})

	var all []domain.DividendPayment
	for next != "" {
		var page dividendsResponse
		if err := c.getJSON(ctx, "dividends", ticker, next, &page); err != nil {
			return nil, err
		}
		for _, r := range page.Results {
			all = append(all, domain.DividendPayment{
				CashAmount:      r.CashAmount,
				ExDividendDate:  r.ExDividendDate,
				PayDate:         r.PayDate,
				Frequency:       r.Frequency,
				DeclarationDate: r.DeclarationDate,
			})
		}
		next = page.NextURL
	}

	c.logger.DebugContext(ctx, "Fetched dividends", "ticker", ticker, "count", len(all))
	return all, nil
}

// PreviousClose returns the last adjusted close price of ticker.
func (c *PolygonClient) PreviousClose(ctx context.Context, ticker string) (float64, error) {
	var resp previousCloseResponse
	u := c.endpoint("/v2/aggs/ticker/"+url.PathEscape(ticker)+"/prev", url.Values{"adjusted": {"true"}})
	if err := c.getJSON(ctx, "previous_close", ticker, u, &resp); err != nil {
		return 0, err
	}
	if len(resp.Results) == 0 {
		return 0, &ProviderError{Ticker: ticker, Op: "previous_close", Err: fmt.Errorf("%w: no previous close", ErrNoData)}
	}
	return resp.Results[0].Close, nil
}

// Financials returns the most recent financial reports of ticker.
func (c *PolygonClient) Financials(ctx context.Context, ticker string) ([]financialReport, error) {
	var resp financialsResponse
	u := c.endpoint("/vX/reference/financials", url.Values{
		"ticker": {ticker},
		"limit":  {"20"},
	})
	if err := c.getJSON(ctx, "financials", ticker, u, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// ListTickers returns every active ticker.
func (c *PolygonClient) ListTickers(ctx context.Context) ([]Company, error) {
	next := c.endpoint("/v3/reference/tickers", url.Values{
		"active": {"true"},
		"limit":  {strconv.Itoa(pageLimit)},
	})

	var out []Company
	pages := 0
	for next != "" {
		var page tickersResponse
		if err := c.getJSON(ctx, "tickers", "", next, &page); err != nil {
			return nil, err
		}
		for _, r := range page.Results {
			out = append(out, Company{Ticker: r.Ticker, Name: r.Name, Market: r.Market})
		}
		next = page.NextURL
		pages++
	}

	c.logger.InfoContext(ctx, "Listed tickers", "count", len(out), "pages", pages)
	return out, nil
}

// IsNotFound reports whether err means the ticker is unknown.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
