package worker

import (
	"context"
	"log/slog"
	"time"
)

// QuoteFetcher defines the interface for refreshing stored market prices.
type QuoteFetcher interface {
	FetchAndStoreQuotes(ctx context.Context) error
}

// QuoteWorker periodically refreshes market prices for all held symbols.
type QuoteWorker struct {
	fetcher  QuoteFetcher
	interval time.Duration
}

// NewQuoteWorker creates a new QuoteWorker.
func NewQuoteWorker(fetcher QuoteFetcher, interval time.Duration) *QuoteWorker {
	return &QuoteWorker{
		fetcher:  fetcher,
		interval: interval,
	}
}

// Run starts the quote worker loop. It blocks until the context is cancelled.
func (w *QuoteWorker) Run(ctx context.Context) {
	slog.Info("QuoteWorker: starting")

	if err := w.fetcher.FetchAndStoreQuotes(ctx); err != nil {
		slog.Error("QuoteWorker: initial refresh failed", "error", err)
	} else {
		slog.Info("QuoteWorker: initial refresh completed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("QuoteWorker: shutting down")
			return
		case <-ticker.C:
			if err := w.fetcher.FetchAndStoreQuotes(ctx); err != nil {
				slog.Error("QuoteWorker: refresh failed", "error", err)
			} else {
				slog.Info("QuoteWorker: refresh completed")
			}
		}
	}
}
