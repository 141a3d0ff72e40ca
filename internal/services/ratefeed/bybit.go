package ratefeed

import (
	"context"
	"fmt"

	"github.com/hirokisan/bybit/v2"
	"github.com/shopspring/decimal"
)

// BybitPricer fetches the spot price from the Bybit V5 market API.
type BybitPricer struct {
	client *bybit.Client
	symbol string
}

// NewBybitPricer creates a pricer for the given symbol, e.g. BTCUSDT.
func NewBybitPricer(client *bybit.Client, symbol string) *BybitPricer {
	return &BybitPricer{client: client, symbol: symbol}
}

func (p *BybitPricer) GetPrice(ctx context.Context) (decimal.Decimal, error) {
	symbol := bybit.SymbolV5(p.symbol)

	result, err := p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	if len(result.Result.Spot.List) == 0 {
		return decimal.Decimal{}, fmt.Errorf("bybit API returned empty prices for %s", p.symbol)
	}

	return decimal.NewFromString(result.Result.Spot.List[0].LastPrice)
}
