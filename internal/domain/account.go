// Package domain defines core data structures used throughout the wallet service.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user's balance record: cash in USD plus bitcoin holdings.
type Account struct {
	ID            string
	Username      string
	Email         string
	Name          string
	UsdBalance    decimal.Decimal
	BitcoinAmount decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProfileUpdate carries the mutable profile fields. A nil field is left untouched.
type ProfileUpdate struct {
	Name  *string
	Email *string
}
