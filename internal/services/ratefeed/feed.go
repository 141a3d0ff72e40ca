// Package ratefeed keeps the shared exchange rate in sync with a live
// market price source.
package ratefeed

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bitwallet/internal/domain"
	"bitwallet/pkg/retrier"
)

const defaultPollInterval = time.Minute

// Pricer provides the current bitcoin price in USD.
type Pricer interface {
	GetPrice(ctx context.Context) (decimal.Decimal, error)
}

// RateStore is the write side of the rate store.
type RateStore interface {
	Set(price decimal.Decimal) (domain.ExchangeRate, error)
}

// Feed periodically refreshes the rate store from a pricer.
type Feed struct {
	pricer   Pricer
	rates    RateStore
	interval time.Duration
	retrier  *retrier.Retrier
	logger   *zap.Logger
}

// New creates a feed polling the pricer once per interval.
func New(pricer Pricer, rates RateStore, interval time.Duration, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Feed{
		pricer:   pricer,
		rates:    rates,
		interval: interval,
		retrier: retrier.New(
			retrier.WithMaxRetries(3),
			retrier.WithInitialInterval(500*time.Millisecond),
		),
		logger: logger,
	}
}

// Run refreshes the rate until ctx is cancelled. A failed refresh is logged
// and retried on the next tick; the stored rate keeps its last good value.
func (f *Feed) Run(ctx context.Context) error {
	if err := f.refresh(ctx); err != nil {
		f.logger.Warn("initial rate refresh failed", zap.Error(err))
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := f.refresh(ctx); err != nil {
				f.logger.Warn("rate refresh failed", zap.Error(err))
			}
		}
	}
}

func (f *Feed) refresh(ctx context.Context) error {
	price, err := retrier.DoWithData(f.retrier, ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return f.pricer.GetPrice(ctx)
	})
	if err != nil {
		return errors.Wrap(err, "fetch price")
	}

	rate, err := f.rates.Set(price)
	if err != nil {
		return errors.Wrapf(err, "store price %s", price.String())
	}

	f.logger.Info("bitcoin rate refreshed", zap.String("price", rate.Price.String()))
	return nil
}
