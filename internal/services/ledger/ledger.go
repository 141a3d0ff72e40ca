// Package ledger implements the transaction rules for the wallet:
// deposits, withdrawals and bitcoin buys/sells against the shared rate.
package ledger

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bitwallet/internal/domain"
)

// Default amount ceilings, overridable via config.
var (
	DefaultUsdLimit     = decimal.NewFromInt(999999)
	DefaultBitcoinLimit = decimal.NewFromInt(100)
)

// AccountStore is the slice of the account store the ledger needs.
type AccountStore interface {
	Get(id string) (domain.Account, error)
	ApplyDelta(id string, usdDelta, bitcoinDelta decimal.Decimal) (domain.Account, error)
}

// RateSource provides the current exchange rate.
type RateSource interface {
	Get() (domain.ExchangeRate, error)
}

// Service orchestrates ledger operations across the account store and the
// rate store. It is the only component that couples the two.
//
// Conversion convention: buy and sell amounts are bitcoin quantities and the
// USD leg is always amount multiplied by the current price (USD = coin x price).
// The rate is read once per operation.
type Service struct {
	accounts     AccountStore
	rates        RateSource
	usdLimit     decimal.Decimal
	bitcoinLimit decimal.Decimal
	logger       *zap.Logger
}

// NewService creates a ledger service. Non-positive limits fall back to defaults.
func NewService(accounts AccountStore, rates RateSource, usdLimit, bitcoinLimit decimal.Decimal, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !usdLimit.IsPositive() {
		usdLimit = DefaultUsdLimit
	}
	if !bitcoinLimit.IsPositive() {
		bitcoinLimit = DefaultBitcoinLimit
	}
	return &Service{
		accounts:     accounts,
		rates:        rates,
		usdLimit:     usdLimit,
		bitcoinLimit: bitcoinLimit,
		logger:       logger,
	}
}

// Deposit credits the account with the given USD amount.
func (s *Service) Deposit(ctx context.Context, id string, amount decimal.Decimal) (domain.Account, error) {
	if err := s.validateCash(amount); err != nil {
		return domain.Account{}, err
	}

	acc, err := s.accounts.ApplyDelta(id, amount, decimal.Zero)
	if err != nil {
		return domain.Account{}, errors.Wrap(err, "deposit")
	}

	s.logger.Info("deposit applied",
		zap.String("account", id),
		zap.String("amount", amount.String()))
	return acc, nil
}

// Withdraw debits the account by the given USD amount.
func (s *Service) Withdraw(ctx context.Context, id string, amount decimal.Decimal) (domain.Account, error) {
	if err := s.validateCash(amount); err != nil {
		return domain.Account{}, err
	}

	acc, err := s.accounts.Get(id)
	if err != nil {
		return domain.Account{}, errors.Wrap(err, "withdraw")
	}
	if amount.GreaterThan(acc.UsdBalance) {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	// ApplyDelta re-checks under the store lock, closing the window between
	// the read above and the mutation.
	acc, err = s.accounts.ApplyDelta(id, amount.Neg(), decimal.Zero)
	if err != nil {
		return domain.Account{}, errors.Wrap(err, "withdraw")
	}

	s.logger.Info("withdrawal applied",
		zap.String("account", id),
		zap.String("amount", amount.String()))
	return acc, nil
}

// Buy converts cash into bitcoin. The amount is a bitcoin quantity; its cost
// in USD is amount multiplied by the current price.
func (s *Service) Buy(ctx context.Context, id string, amount decimal.Decimal) (domain.Account, error) {
	if err := s.validateCoin(amount); err != nil {
		return domain.Account{}, err
	}

	rate, err := s.rates.Get()
	if err != nil {
		return domain.Account{}, errors.Wrap(err, "buy")
	}
	cost := amount.Mul(rate.Price)

	acc, err := s.accounts.Get(id)
	if err != nil {
		return domain.Account{}, errors.Wrap(err, "buy")
	}
	if cost.GreaterThan(acc.UsdBalance) {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	acc, err = s.accounts.ApplyDelta(id, cost.Neg(), amount)
	if err != nil {
		return domain.Account{}, errors.Wrap(err, "buy")
	}

	s.logger.Info("bitcoin bought",
		zap.String("account", id),
		zap.String("amount", amount.String()),
		zap.String("cost", cost.String()),
		zap.String("price", rate.Price.String()))
	return acc, nil
}

// Sell converts bitcoin back into cash at the current price.
func (s *Service) Sell(ctx context.Context, id string, amount decimal.Decimal) (domain.Account, error) {
	if err := s.validateCoin(amount); err != nil {
		return domain.Account{}, err
	}

	rate, err := s.rates.Get()
	if err != nil {
		return domain.Account{}, errors.Wrap(err, "sell")
	}

	acc, err := s.accounts.Get(id)
	if err != nil {
		return domain.Account{}, errors.Wrap(err, "sell")
	}
	if amount.GreaterThan(acc.BitcoinAmount) {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	proceeds := amount.Mul(rate.Price)
	acc, err = s.accounts.ApplyDelta(id, proceeds, amount.Neg())
	if err != nil {
		return domain.Account{}, errors.Wrap(err, "sell")
	}

	s.logger.Info("bitcoin sold",
		zap.String("account", id),
		zap.String("amount", amount.String()),
		zap.String("proceeds", proceeds.String()),
		zap.String("price", rate.Price.String()))
	return acc, nil
}

// TotalBalance returns the account's worth as a single USD value:
// cash plus bitcoin holdings at the current price.
func (s *Service) TotalBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	acc, err := s.accounts.Get(id)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "total balance")
	}

	rate, err := s.rates.Get()
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "total balance")
	}

	return acc.UsdBalance.Add(acc.BitcoinAmount.Mul(rate.Price)), nil
}

// ExecuteCash dispatches a USD-denominated action.
func (s *Service) ExecuteCash(ctx context.Context, id string, action domain.CashAction, amount decimal.Decimal) (domain.Account, error) {
	switch action {
	case domain.CashDeposit:
		return s.Deposit(ctx, id, amount)
	case domain.CashWithdraw:
		return s.Withdraw(ctx, id, amount)
	default:
		return domain.Account{}, errors.Errorf("unknown cash action: %d", action)
	}
}

// ExecuteCoin dispatches a bitcoin-denominated action.
func (s *Service) ExecuteCoin(ctx context.Context, id string, action domain.CoinAction, amount decimal.Decimal) (domain.Account, error) {
	switch action {
	case domain.CoinBuy:
		return s.Buy(ctx, id, amount)
	case domain.CoinSell:
		return s.Sell(ctx, id, amount)
	default:
		return domain.Account{}, errors.Errorf("unknown coin action: %d", action)
	}
}

func (s *Service) validateCash(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if amount.GreaterThan(s.usdLimit) {
		return domain.ErrLimitExceeded
	}
	return nil
}

func (s *Service) validateCoin(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if amount.GreaterThan(s.bitcoinLimit) {
		return domain.ErrLimitExceeded
	}
	return nil
}
