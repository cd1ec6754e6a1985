package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ProviderQuote is one quote as returned by the external quotes API.
type ProviderQuote struct {
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// QuotesClient fetches market prices from an external quotes API
// with retry on 429.
type QuotesClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewQuotesClient creates a new quotes API client.
func NewQuotesClient(baseURL string, maxRetries int, baseDelay time.Duration) *QuotesClient {
	return &QuotesClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// FetchQuotes fetches the latest prices for the given symbols.
// Symbols the provider does not know are simply absent from the result.
func (c *QuotesClient) FetchQuotes(ctx context.Context, symbols []string) ([]ProviderQuote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/quotes?symbols=%s", c.baseURL, url.QueryEscape(strings.Join(symbols, ",")))

	body, err := c.fetchWithRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	// Parse: {"quotes":[{"symbol":"AAPL","price":187.4,"currency":"USD"},...]}
	var raw struct {
		Quotes []ProviderQuote `json:"quotes"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing quotes response: %w", err)
	}

	return raw.Quotes, nil
}

func (c *QuotesClient) fetchWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
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
			lastErr = fmt.Errorf("HTTP 429 at %s (attempt %d/%d)", reqURL, attempt+1, c.maxRetries+1)
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

		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, reqURL, string(body))
	}

	return nil, lastErr
}
