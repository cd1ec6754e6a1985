package worker

import (
	"context"
	"log/slog"
	"time"
)

// RateFetcher defines the interface for refreshing stored exchange rates.
type RateFetcher interface {
	FetchAndStoreRates(ctx context.Context) error
}

// RateWorker periodically refreshes exchange rates.
type RateWorker struct {
	fetcher  RateFetcher
	interval time.Duration
}

// NewRateWorker creates a new RateWorker.
func NewRateWorker(fetcher RateFetcher, interval time.Duration) *RateWorker {
	return &RateWorker{
		fetcher:  fetcher,
		interval: interval,
	}
}

// Run starts the rate worker loop. It blocks until the context is cancelled.
func (w *RateWorker) Run(ctx context.Context) {
	slog.Info("RateWorker: starting")

	// Refresh immediately on startup
	if err := w.fetcher.FetchAndStoreRates(ctx); err != nil {
		slog.Error("RateWorker: initial refresh failed", "error", err)
	} else {
		slog.Info("RateWorker: initial refresh completed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("RateWorker: shutting down")
			return
		case <-ticker.C:
			if err := w.fetcher.FetchAndStoreRates(ctx); err != nil {
				slog.Error("RateWorker: refresh failed", "error", err)
			} else {
				slog.Info("RateWorker: refresh completed")
			}
		}
	}
}
