package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the USD price of one bitcoin, a single process-wide value.
type ExchangeRate struct {
	Price     decimal.Decimal
	UpdatedAt time.Time
}
