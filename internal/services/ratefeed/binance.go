package ratefeed

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

// BinancePricer fetches the spot price from the Binance public API.
// No authentication is required for ticker reads.
type BinancePricer struct {
	client *binance.Client
	symbol string
}

// NewBinancePricer creates a pricer for the given symbol, e.g. BTCUSDT.
func NewBinancePricer(client *binance.Client, symbol string) *BinancePricer {
	return &BinancePricer{client: client, symbol: symbol}
}

func (p *BinancePricer) GetPrice(ctx context.Context) (decimal.Decimal, error) {
	prices, err := p.client.NewListPricesService().Symbol(p.symbol).Do(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(prices) == 0 {
		return decimal.Decimal{}, fmt.Errorf("binance API returned empty prices for %s", p.symbol)
	}

	return decimal.NewFromString(prices[0].Price)
}
