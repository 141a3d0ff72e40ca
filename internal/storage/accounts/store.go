// Package accounts holds the in-memory account store.
package accounts

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bitwallet/internal/domain"
)

// Store keeps every account in memory behind a single mutex.
// Callers always get value copies; the map itself is never handed out.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

// NewStore creates an empty account store.
func NewStore() *Store {
	return &Store{accounts: make(map[string]*domain.Account)}
}

// Create registers a new account with zero balances.
// Username and email must be unique across all accounts.
func (s *Store) Create(username, email, name string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range s.accounts {
		if acc.Username == username || strings.EqualFold(acc.Email, email) {
			return domain.Account{}, domain.ErrAccountExists
		}
	}

	now := time.Now()
	acc := &domain.Account{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		Name:          name,
		UsdBalance:    decimal.Zero,
		BitcoinAmount: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.accounts[acc.ID] = acc

	return *acc, nil
}

// Get returns the account with the given id.
func (s *Store) Get(id string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return *acc, nil
}

// FindByUsername scans for an account with the given username.
func (s *Store) FindByUsername(username string) (domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acc := range s.accounts {
		if acc.Username == username {
			return *acc, true
		}
	}
	return domain.Account{}, false
}

// FindByEmail scans for an account with the given email.
func (s *Store) FindByEmail(email string) (domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acc := range s.accounts {
		if strings.EqualFold(acc.Email, email) {
			return *acc, true
		}
	}
	return domain.Account{}, false
}

// UpdateProfile applies only the fields set in upd and refreshes UpdatedAt.
// A new email must not collide with another account.
func (s *Store) UpdateProfile(id string, upd domain.ProfileUpdate) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	if upd.Email != nil {
		for otherID, other := range s.accounts {
			if otherID != id && strings.EqualFold(other.Email, *upd.Email) {
				return domain.Account{}, domain.ErrAccountExists
			}
		}
		acc.Email = *upd.Email
	}
	if upd.Name != nil {
		acc.Name = *upd.Name
	}
	acc.UpdatedAt = time.Now()

	return *acc, nil
}

// ApplyDelta atomically adds the deltas (possibly negative) to the account's
// balances. The non-negativity check runs inside the critical section, so two
// concurrent withdrawals can never interleave past it and overdraw the account.
func (s *Store) ApplyDelta(id string, usdDelta, bitcoinDelta decimal.Decimal) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	newUsd := acc.UsdBalance.Add(usdDelta)
	newBitcoin := acc.BitcoinAmount.Add(bitcoinDelta)
	if newUsd.IsNegative() || newBitcoin.IsNegative() {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	acc.UsdBalance = newUsd
	acc.BitcoinAmount = newBitcoin
	acc.UpdatedAt = time.Now()

	return *acc, nil
}

// Reset drops every account. Intended for test teardown.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*domain.Account)
}
