package fx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// RateSource fetches reference rates from an external API.
type RateSource interface {
	FetchRates(ctx context.Context, pivot string) (map[string]float64, error)
}

// Service converts monetary amounts between currencies using stored
// rates quoted against a single pivot currency. Conversions that cannot
// be resolved degrade to the unconverted amount; rule evaluation must
// never fail on a missing rate.
type Service struct {
	source RateSource
	repo   RateRepository
	pivot  string
	cache  *rateCache
}

// NewService creates a new fx Service. The pivot is the currency all
// stored rates are quoted against, e.g. "USD".
func NewService(source RateSource, repo RateRepository, pivot string) *Service {
	return &Service{
		source: source,
		repo:   repo,
		pivot:  pivot,
		cache:  newRateCache(),
	}
}

// FetchAndStoreRates fetches the latest reference rates and stores them.
func (s *Service) FetchAndStoreRates(ctx context.Context) error {
	rates, err := s.source.FetchRates(ctx, s.pivot)
	if err != nil {
		return fmt.Errorf("fetching reference rates: %w", err)
	}

	for currency, perPivot := range rates {
		if err := s.repo.SaveRate(ctx, currency, decimal.NewFromFloat(perPivot)); err != nil {
			return fmt.Errorf("storing rate for %s: %w", currency, err)
		}
	}

	return nil
}

// ToCurrency converts amount from one currency to another. Identical
// currencies return the amount unchanged. An unresolvable currency also
// returns the amount unchanged, with a warning, so a bad code degrades
// a single figure instead of aborting the evaluation.
func (s *Service) ToCurrency(ctx context.Context, amount decimal.Decimal, from, to string) decimal.Decimal {
	if from == to || amount.IsZero() {
		return amount
	}

	rate, err := s.rate(ctx, from, to)
	if err != nil {
		slog.Warn("fx: conversion unavailable, amount left unconverted", "from", from, "to", to, "error", err)
		return amount
	}

	return amount.Mul(rate)
}

// rate resolves the from->to rate via the pivot, consulting the cache first.
func (s *Service) rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	key := cacheKey(from, to)
	if cached, ok := s.cache.get(key); ok {
		return cached, nil
	}

	fromPerPivot, err := s.perPivot(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	toPerPivot, err := s.perPivot(ctx, to)
	if err != nil {
		return decimal.Zero, err
	}
	if fromPerPivot.IsZero() {
		return decimal.Zero, fmt.Errorf("zero stored rate for %s", from)
	}

	rate := toPerPivot.Div(fromPerPivot)
	s.cache.set(key, rate)
	return rate, nil
}

func (s *Service) perPivot(ctx context.Context, currency string) (decimal.Decimal, error) {
	if currency == s.pivot {
		return decimal.NewFromInt(1), nil
	}
	stored, err := s.repo.GetRate(ctx, currency)
	if err != nil {
		return decimal.Zero, err
	}
	return stored.PerPivot, nil
}
