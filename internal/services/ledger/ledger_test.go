package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bitwallet/internal/domain"
	"bitwallet/internal/storage/accounts"
	"bitwallet/internal/storage/rates"
)

func newTestService(t *testing.T, price int64) (*Service, *accounts.Store, string) {
	t.Helper()

	accountStore := accounts.NewStore()
	rateStore, err := rates.NewStore(decimal.NewFromInt(price))
	require.NoError(t, err)

	svc := NewService(accountStore, rateStore, decimal.Decimal{}, decimal.Decimal{}, zap.NewNop())

	acc, err := accountStore.Create("alice", "a@x.com", "Alice")
	require.NoError(t, err)

	return svc, accountStore, acc.ID
}

func TestService_DepositWithdrawRoundTrip(t *testing.T) {
	svc, store, id := newTestService(t, 100)
	ctx := context.Background()

	acc, err := svc.Deposit(ctx, id, decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.True(t, acc.UsdBalance.Equal(decimal.NewFromInt(250)))

	// withdrawing the same amount returns the balance to its prior value
	acc, err = svc.Withdraw(ctx, id, decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.True(t, acc.UsdBalance.Equal(decimal.Zero))

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.True(t, got.UsdBalance.Equal(decimal.Zero))
}

func TestService_Deposit_InvalidAmount(t *testing.T) {
	svc, store, id := newTestService(t, 100)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, id, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Deposit(ctx, id, decimal.NewFromInt(-10))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Deposit(ctx, id, decimal.NewFromInt(1000000))
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.True(t, got.UsdBalance.Equal(decimal.Zero))
}

func TestService_Withdraw_InsufficientFunds(t *testing.T) {
	svc, store, id := newTestService(t, 100)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, id, decimal.NewFromInt(50))
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, id, decimal.NewFromInt(51))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// balances unchanged after the failure
	got, err := store.Get(id)
	require.NoError(t, err)
	assert.True(t, got.UsdBalance.Equal(decimal.NewFromInt(50)))
}

func TestService_Withdraw_UnknownAccount(t *testing.T) {
	svc, _, _ := newTestService(t, 100)

	_, err := svc.Withdraw(context.Background(), "missing", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestService_BuySellCycle(t *testing.T) {
	svc, _, id := newTestService(t, 50000)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, id, decimal.NewFromInt(100000))
	require.NoError(t, err)

	// buy 1 BTC at 50000: usd 100000 -> 50000, btc 0 -> 1
	acc, err := svc.Buy(ctx, id, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.True(t, acc.UsdBalance.Equal(decimal.NewFromInt(50000)))
	assert.True(t, acc.BitcoinAmount.Equal(decimal.NewFromInt(1)))

	// sell 0.5 BTC back: usd 50000 -> 75000, btc 1 -> 0.5
	acc, err = svc.Sell(ctx, id, decimal.NewFromFloat(0.5))
	require.NoError(t, err)
	assert.True(t, acc.UsdBalance.Equal(decimal.NewFromInt(75000)))
	assert.True(t, acc.BitcoinAmount.Equal(decimal.NewFromFloat(0.5)))
}

func TestService_Buy_InsufficientFunds(t *testing.T) {
	svc, store, id := newTestService(t, 50000)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, id, decimal.NewFromInt(100))
	require.NoError(t, err)

	// 1 BTC costs 50000, only 100 available
	_, err = svc.Buy(ctx, id, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.True(t, got.UsdBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, got.BitcoinAmount.Equal(decimal.Zero))
}

func TestService_Sell_WithoutHoldings(t *testing.T) {
	svc, store, id := newTestService(t, 50000)
	ctx := context.Background()

	// deposit-derived USD cannot be sold as bitcoin without buying first
	_, err := svc.Deposit(ctx, id, decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = svc.Sell(ctx, id, decimal.NewFromFloat(0.001))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.True(t, got.UsdBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, got.BitcoinAmount.Equal(decimal.Zero))
}

func TestService_CoinLimits(t *testing.T) {
	svc, _, id := newTestService(t, 100)
	ctx := context.Background()

	_, err := svc.Buy(ctx, id, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	// default bitcoin limit is 100
	_, err = svc.Buy(ctx, id, decimal.NewFromInt(101))
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)

	_, err = svc.Sell(ctx, id, decimal.NewFromInt(101))
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
}

func TestService_TotalBalance(t *testing.T) {
	svc, _, id := newTestService(t, 50000)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, id, decimal.NewFromInt(100000))
	require.NoError(t, err)
	_, err = svc.Buy(ctx, id, decimal.NewFromInt(1))
	require.NoError(t, err)

	// 50000 cash + 1 BTC * 50000
	total, err := svc.TotalBalance(ctx, id)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(100000)))
}

func TestService_TotalBalance_UnknownAccount(t *testing.T) {
	svc, _, _ := newTestService(t, 100)

	_, err := svc.TotalBalance(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestService_ExecuteCash(t *testing.T) {
	svc, _, id := newTestService(t, 100)
	ctx := context.Background()

	acc, err := svc.ExecuteCash(ctx, id, domain.CashDeposit, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, acc.UsdBalance.Equal(decimal.NewFromInt(100)))

	acc, err = svc.ExecuteCash(ctx, id, domain.CashWithdraw, decimal.NewFromInt(40))
	require.NoError(t, err)
	assert.True(t, acc.UsdBalance.Equal(decimal.NewFromInt(60)))

	_, err = svc.ExecuteCash(ctx, id, domain.CashAction(42), decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestService_ExecuteCoin(t *testing.T) {
	svc, _, id := newTestService(t, 100)
	ctx := context.Background()

	_, err := svc.Deposit(ctx, id, decimal.NewFromInt(1000))
	require.NoError(t, err)

	acc, err := svc.ExecuteCoin(ctx, id, domain.CoinBuy, decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.True(t, acc.BitcoinAmount.Equal(decimal.NewFromInt(2)))
	assert.True(t, acc.UsdBalance.Equal(decimal.NewFromInt(800)))

	acc, err = svc.ExecuteCoin(ctx, id, domain.CoinSell, decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.True(t, acc.BitcoinAmount.Equal(decimal.Zero))
	assert.True(t, acc.UsdBalance.Equal(decimal.NewFromInt(1000)))

	_, err = svc.ExecuteCoin(ctx, id, domain.CoinAction(42), decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestService_CustomLimits(t *testing.T) {
	accountStore := accounts.NewStore()
	rateStore, err := rates.NewStore(decimal.NewFromInt(100))
	require.NoError(t, err)

	svc := NewService(accountStore, rateStore, decimal.NewFromInt(500), decimal.NewFromInt(2), zap.NewNop())

	acc, err := accountStore.Create("bob", "b@x.com", "Bob")
	require.NoError(t, err)

	_, err = svc.Deposit(context.Background(), acc.ID, decimal.NewFromInt(501))
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)

	_, err = svc.Buy(context.Background(), acc.ID, decimal.NewFromInt(3))
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
}
