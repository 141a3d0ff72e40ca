// Package rates holds the shared bitcoin exchange rate.
package rates

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bitwallet/internal/domain"
)

// maxPrice is the upper sanity bound on the rate.
var maxPrice = decimal.NewFromInt(999999)

// Store guards the single process-wide exchange rate record.
type Store struct {
	mu   sync.RWMutex
	rate *domain.ExchangeRate
}

// NewStore seeds the store with the default price so conversions are
// possible from the very first request.
func NewStore(defaultPrice decimal.Decimal) (*Store, error) {
	if !validPrice(defaultPrice) {
		return nil, domain.ErrInvalidRate
	}
	return &Store{rate: &domain.ExchangeRate{Price: defaultPrice, UpdatedAt: time.Now()}}, nil
}

// Get returns the current rate record.
func (s *Store) Get() (domain.ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rate == nil {
		return domain.ExchangeRate{}, domain.ErrRateNotFound
	}
	return *s.rate, nil
}

// Set atomically replaces the stored price and timestamp.
// Prices outside (0, 999999] are rejected and the stored rate stays unchanged.
func (s *Store) Set(price decimal.Decimal) (domain.ExchangeRate, error) {
	if !validPrice(price) {
		return domain.ExchangeRate{}, domain.ErrInvalidRate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rate = &domain.ExchangeRate{Price: price, UpdatedAt: time.Now()}
	return *s.rate, nil
}

// Reset re-seeds the store with the given price. Intended for test teardown.
func (s *Store) Reset(price decimal.Decimal) error {
	_, err := s.Set(price)
	return err
}

func validPrice(price decimal.Decimal) bool {
	return price.IsPositive() && !price.GreaterThan(maxPrice)
}
