package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RatesClient fetches reference exchange rates from a frankfurter-style
// API with retry on 429.
type RatesClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewRatesClient creates a new rates API client.
func NewRatesClient(baseURL string, maxRetries int, baseDelay time.Duration) *RatesClient {
	return &RatesClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// FetchRates fetches the latest rates quoted against the pivot currency.
// Returns a map of currency code -> units per 1 pivot unit.
func (c *RatesClient) FetchRates(ctx context.Context, pivot string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/latest?base=%s", c.baseURL, pivot)

	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}

	// Parse: {"base":"USD","date":"2026-08-31","rates":{"EUR":0.92,...}}
	var raw struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing rates response: %w", err)
	}
	if raw.Base != pivot {
		return nil, fmt.Errorf("rates API returned base %q, requested %q", raw.Base, pivot)
	}

	rates := raw.Rates
	if rates == nil {
		rates = map[string]float64{}
	}
	rates[pivot] = 1

	return rates, nil
}

// fetchWithRetry performs a GET with exponential backoff on 429.
func (c *RatesClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("HTTP 429 at %s (attempt %d/%d)", url, attempt+1, c.maxRetries+1)
			if attempt < c.maxRetries {
				delay := c.baseDelay * time.Duration(1<<uint(attempt))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, lastErr
		}

		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(body))
	}

	return nil, lastErr
}
