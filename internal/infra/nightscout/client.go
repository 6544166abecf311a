// Package nightscout reads profiles, treatments and CGM entries from the
// Nightscout v3 API.
package nightscout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/observability/logging"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/observability/metrics"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/observability/tracing"
)

const (
	profileEndpoint    = "/api/v3/profile"
	treatmentsEndpoint = "/api/v3/treatments"
	entriesEndpoint    = "/api/v3/entries"
	authEndpoint       = "/api/v2/authorization/request/"

	defaultTimeout       = 30 * time.Second
	defaultRetryAttempts = 5
	defaultPageLimit     = 1000
)

var (
	_ domain.NightscoutRepository = (*Client)(nil)
	_ domain.NightscoutScanner    = (*Client)(nil)
)

type Config struct {
	URL           string
	Token         string
	Timeout       time.Duration
	RetryAttempts int
	PageLimit     int
}

type Option func(*Client)

func WithMetrics(m *metrics.DoseMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRetryDelay overrides the initial backoff delay between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

type Client struct {
	baseURL    string
	token      string
	pageLimit  int
	attempts   uint
	retryDelay time.Duration
	httpClient *http.Client
	metrics    *metrics.DoseMetrics
	now        func() time.Time

	mu        sync.Mutex
	jwt       string
	jwtExpiry time.Time
}

func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	pageLimit := cfg.PageLimit
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		pageLimit:  pageLimit,
		attempts:   uint(attempts),
		retryDelay: time.Second,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type resultEnvelope[T any] struct {
	Status int `json:"status"`
	Result []T `json:"result"`
}

// GetProfiles returns the most recent profile document.
func (c *Client) GetProfiles(ctx context.Context) ([]domain.Profile, error) {
	q := url.Values{}
	q.Set("sort$desc", "date")
	q.Set("limit", "1")

	body, err := c.get(ctx, profileEndpoint, q)
	if err != nil {
		return nil, err
	}

	var env resultEnvelope[domain.Profile]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: failed to decode profiles: %v", domain.ErrUpstream, err)
	}

	slog.DebugContext(ctx, "fetched profiles from nightscout",
		slog.Int("count", len(env.Result)),
	)

	return env.Result, nil
}

// GetTreatments returns the treatments with from <= date < to in ascending
// date order, following pages until a short page is returned.
func (c *Client) GetTreatments(ctx context.Context, from, to time.Time) ([]domain.Treatment, error) {
	var all []domain.Treatment
	err := c.ScanTreatments(ctx, from, to, func(page []domain.Treatment) error {
		all = append(all, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// ScanTreatments streams the treatments with from <= date < to to fn one page
// at a time. An error from fn stops the scan and is returned as is.
func (c *Client) ScanTreatments(ctx context.Context, from, to time.Time, fn func([]domain.Treatment) error) error {
	return scan(ctx, c, treatmentCollection, from, to, fn)
}

// GetEntries returns the CGM entries with from <= date < to in ascending date
// order.
func (c *Client) GetEntries(ctx context.Context, from, to time.Time) ([]domain.Entry, error) {
	var all []domain.Entry
	err := c.ScanEntries(ctx, from, to, func(page []domain.Entry) error {
		all = append(all, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Client) ScanEntries(ctx context.Context, from, to time.Time, fn func([]domain.Entry) error) error {
	return scan(ctx, c, entryCollection, from, to, fn)
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.RawQuery = q.Encode()

	ctx, span := tracing.StartExternalAPISpan(ctx, "nightscout"+strings.ReplaceAll(endpoint, "/", "."), u.Redacted())
	defer span.End()

	var body []byte
	err = retry.Do(
		func() error {
			var err error
			body, err = c.doOnce(ctx, endpoint, u.String())
			return err
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(2*time.Minute),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.OnRetry(func(n uint, err error) {
			slog.InfoContext(ctx, "retrying nightscout request",
				slog.String("endpoint", endpoint),
				slog.Int("attempt", int(n)+1),
				slog.String("error", err.Error()),
			)
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	tracing.RecordError(span, err)
	if err != nil {
		slog.ErrorContext(ctx, "nightscout request failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	return body, nil
}

func (c *Client) doOnce(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(logging.RequestIDHeader, logging.ValidateAndExtractRequestID(logging.RequestIDFromContext(ctx)))
	tracing.InjectToHTTPRequest(ctx, req)

	if c.token != "" {
		jwt, err := c.authorize(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+jwt)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	c.recordRequest(ctx, endpoint, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized && c.token != "":
		// Expired or revoked JWT; the next attempt requests a new one.
		c.resetJWT()
		return nil, fmt.Errorf("unauthorized: %d", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	default:
		return nil, retry.Unrecoverable(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}
}

func (c *Client) recordRequest(ctx context.Context, endpoint string, status int) {
	if c.metrics != nil {
		c.metrics.RecordNightscoutRequest(ctx, endpoint, status)
	}
}
