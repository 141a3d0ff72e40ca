// Command bitwallet runs an in-memory bitcoin wallet ledger with a JSON
// HTTP API. Accounts hold USD and bitcoin balances; deposits, withdrawals,
// buys and sells are applied against a single shared exchange rate. The
// rate can be pinned manually over the API or kept fresh from Binance or
// Bybit.
//
// Usage:
//
//	bitwallet --config config.yaml
//	bitwallet setup (interactive config wizard)
//
// State is memory-resident only and resets on restart.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bitwallet/config"
	"bitwallet/internal/services/ledger"
	"bitwallet/internal/services/ratefeed"
	"bitwallet/internal/setup"
	"bitwallet/internal/storage/accounts"
	"bitwallet/internal/storage/rates"
	"bitwallet/internal/web"
)

const rateSymbol = "BTCUSDT"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	rateStore, err := rates.NewStore(cfg.DefaultRate)
	if err != nil {
		logger.Fatal("invalid default rate", zap.String("rate", cfg.DefaultRate.String()), zap.Error(err))
	}
	accountStore := accounts.NewStore()
	ledgerService := ledger.NewService(accountStore, rateStore, cfg.UsdLimit, cfg.BitcoinLimit, logger)
	server := web.NewServer(cfg.Listen, accountStore, rateStore, ledgerService, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx)
	})

	if cfg.Platform != config.PlatformNone {
		pricer, err := pricerForPlatform(cfg.Platform)
		if err != nil {
			logger.Fatal("failed to create pricer", zap.Error(err))
		}
		feed := ratefeed.New(pricer, rateStore, cfg.PollRateInterval, logger)
		g.Go(func() error {
			return feed.Run(ctx)
		})
		logger.Info("rate feed enabled",
			zap.String("platform", cfg.Platform),
			zap.Duration("poll_interval", cfg.PollRateInterval))
	}

	logger.Info("bitwallet started",
		zap.String("listen", cfg.Listen),
		zap.String("default_rate", cfg.DefaultRate.String()))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("service stopped", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// pricerForPlatform creates the price source for the rate feed. Ticker
// endpoints are public, so API keys are optional.
func pricerForPlatform(platform string) (ratefeed.Pricer, error) {
	switch platform {
	case config.PlatformBinance:
		client := binance.NewClient(os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_API_SECRET"))
		return ratefeed.NewBinancePricer(client, rateSymbol), nil
	case config.PlatformBybit:
		client := bybit.NewClient().WithAuth(os.Getenv("BYBIT_API_KEY"), os.Getenv("BYBIT_API_SECRET"))
		return ratefeed.NewBybitPricer(client, rateSymbol), nil
	default:
		return nil, errors.Errorf("unsupported platform: %s", platform)
	}
}
