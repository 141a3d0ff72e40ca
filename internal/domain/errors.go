package domain

import "errors"

var (
	// ErrAccountNotFound no account with the given id.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists username or email collides with an existing account.
	ErrAccountExists = errors.New("account already exists")

	// ErrRateNotFound the exchange rate was never initialized.
	ErrRateNotFound = errors.New("bitcoin rate not found")

	// ErrInvalidAmount amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrLimitExceeded amount is above the configured ceiling.
	ErrLimitExceeded = errors.New("amount exceeds allowed limit")

	// ErrInsufficientFunds the operation would drive a balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidRate rate price is out of the accepted range.
	ErrInvalidRate = errors.New("invalid bitcoin rate")
)
