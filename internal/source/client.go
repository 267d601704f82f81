package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"refit/internal/config"
	"refit/internal/logging"
	"refit/internal/services"
)

// Lister enumerates the raw products of one category.
type Lister interface {
	ListCategory(ctx context.Context, category string) ([]RawProduct, error)
}

// Client fetches category listings over HTTP. One Client is shared by all
// pipeline workers; its rate limiter enforces the minimum delay between
// requests globally rather than per worker.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	categories  map[string]string
	maxAttempts int
}

// NewClient builds a Client from configuration. A zero request delay disables
// the gate, which tests rely on.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	limit := rate.Inf
	if cfg.Source.RequestDelayMS > 0 {
		limit = rate.Every(time.Duration(cfg.Source.RequestDelayMS) * time.Millisecond)
	}
	attempts := cfg.Source.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Source.FetchTimeout) * time.Second,
		},
		rateLimiter: rate.NewLimiter(limit, 1),
		logger:      logging.NewComponentLogger(logger, "source"),
		categories:  cfg.Source.Categories,
		maxAttempts: attempts,
	}
}

// ListCategory fetches the rendered listing for a category and decodes it.
// Transient failures are retried with linear backoff; the category must be
// present in the configured category map.
func (c *Client) ListCategory(ctx context.Context, category string) ([]RawProduct, error) {
	url, ok := c.categories[category]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "source", "list", fmt.Sprintf("unknown category %q", category), nil)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, services.Wrap(services.ErrFetch, "source", "rate-wait", category, err)
		}

		products, err := c.fetch(ctx, url, category)
		if err == nil {
			c.logger.Debug("listed category",
				logging.String(logging.FieldCategory, category),
				logging.Int("products", len(products)),
				logging.Int("attempt", attempt))
			return products, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < c.maxAttempts {
			c.logger.Warn("fetch attempt failed, retrying",
				logging.String(logging.FieldCategory, category),
				logging.Int("attempt", attempt),
				logging.Error(err))
			select {
			case <-ctx.Done():
				return nil, services.Wrap(services.ErrFetch, "source", "list", category, ctx.Err())
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
	}
	return nil, lastErr
}

func (c *Client) fetch(ctx context.Context, url, category string) ([]RawProduct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "source", "request", category, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		marker := services.ErrFetch
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			marker = services.ErrTimeout
		}
		return nil, services.Wrap(marker, "source", "get", category, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		marker := services.ErrFetch
		if resp.StatusCode == http.StatusNotFound {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "source", "get", fmt.Sprintf("%s: http %d", category, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "source", "read", category, err)
	}

	var products []RawProduct
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, services.Wrap(services.ErrFetch, "source", "decode", category, err)
	}
	for i := range products {
		if products[i].Category == "" {
			products[i].Category = category
		}
	}
	return products, nil
}
