// Package liquipedia provides the HTTP client for the Liquipedia API v3.
//
// The API uses offset-based pagination, Apikey header auth, and a strict
// per-client rate limit. Transient failures (throttling, 5xx, network) are
// retried with backoff; anything else aborts the fetch.
package liquipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/projectares/aresdata/internal/config"
)

const defaultBaseURL = "https://api.liquipedia.net/api/v3/"

// maxPageLimit is the hard per-page cap imposed by the API.
const (
	maxPageLimit          = 1000
	defaultRequestsPerMin = 60
)

// Client is the HTTP client for all Liquipedia v3 endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	limiter    *rate.Limiter
	pageLimit  int
	maxRetries int
	logger     *slog.Logger
}

// NewClient creates a Liquipedia HTTP client with rate limiting.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	pageLimit := cfg.APIPageLimit
	if pageLimit <= 0 || pageLimit > maxPageLimit {
		pageLimit = maxPageLimit
	}
	perMin := cfg.APIRequestsPerMin
	if perMin <= 0 {
		perMin = defaultRequestsPerMin
	}
	rps := float64(perMin) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     cfg.LiquipediaAPIKey,
		userAgent:  cfg.UserAgent(),
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		pageLimit:  pageLimit,
		maxRetries: cfg.APIMaxRetries,
		logger:     logger,
	}
}

// Params describes one entity query. Wiki is mandatory for every v3 call.
type Params struct {
	Wiki       string
	Query      string // comma-separated field list
	Conditions string // e.g. "[[status::active]]"
	Order      string // e.g. "name ASC"
}

// apiResponse is the common v3 response wrapper.
type apiResponse struct {
	Result  []json.RawMessage `json:"result"`
	Error   string            `json:"error"`
	Warning string            `json:"warning"`
}

// FatalError marks a non-retryable API failure (bad auth, malformed query).
type FatalError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("liquipedia %s returned %d: %s", e.Endpoint, e.Status, e.Message)
}

// FetchAll fetches every page for an endpoint and invokes fn once per page,
// in order. The next page downloads while fn processes the current one. If
// any page cannot be fetched the whole call fails; no page is silently
// dropped.
func (c *Client) FetchAll(ctx context.Context, endpoint string, p Params, fn func(page []json.RawMessage) error) error {
	if p.Wiki == "" {
		return fmt.Errorf("liquipedia %s: wiki parameter is mandatory", endpoint)
	}

	pages := make(chan []json.RawMessage, 1)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(pages)
		offset := 0
		for {
			batch, err := c.getPage(ctx, endpoint, p, offset)
			if err != nil {
				return err
			}
			if len(batch) == 0 {
				return nil
			}
			select {
			case pages <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
			if len(batch) < c.pageLimit {
				// Short page means end of data.
				return nil
			}
			offset += len(batch)
			c.logger.Debug("Fetched page", "endpoint", endpoint, "next_offset", offset)
		}
	})

	g.Go(func() error {
		for page := range pages {
			if err := fn(page); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}

// getPage performs one paginated GET with bounded retry on transient errors.
func (c *Client) getPage(ctx context.Context, endpoint string, p Params, offset int) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("wiki", p.Wiki)
	params.Set("limit", strconv.Itoa(c.pageLimit))
	params.Set("offset", strconv.Itoa(offset))
	if p.Query != "" {
		params.Set("query", p.Query)
	}
	if p.Conditions != "" {
		params.Set("conditions", p.Conditions)
	}
	if p.Order != "" {
		params.Set("order", p.Order)
	}

	var lastErr error
	backoff := 2 * time.Second
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying page fetch",
				"endpoint", endpoint, "offset", offset,
				"attempt", attempt, "error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		batch, err := c.get(ctx, endpoint, params)
		if err == nil {
			return batch, nil
		}
		if !isTransient(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("liquipedia %s offset %d: retries exhausted: %w", endpoint, offset, lastErr)
}

// transientError marks a failure worth retrying (throttling, 5xx, network).
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// get performs a single rate-limited GET request.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Apikey "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &transientError{fmt.Errorf("http request %s: %w", endpoint, err)}
		}
		return nil, fmt.Errorf("http request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transientError{fmt.Errorf("read response body: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decoding
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &transientError{fmt.Errorf("liquipedia %s returned %d: %s",
			endpoint, resp.StatusCode, truncate(body, 200))}
	default:
		return nil, &FatalError{Endpoint: endpoint, Status: resp.StatusCode, Message: truncate(body, 200)}
	}

	var result apiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.Error != "" {
		return nil, &FatalError{Endpoint: endpoint, Status: resp.StatusCode, Message: result.Error}
	}
	if result.Warning != "" {
		c.logger.Warn("Liquipedia API warning", "endpoint", endpoint, "warning", result.Warning)
	}
	return result.Result, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
