// Package config loads wallet service settings from a yaml file or CLI flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Supported rate feed platforms.
const (
	PlatformNone    = "none"
	PlatformBinance = "binance"
	PlatformBybit   = "bybit"
)

const (
	defaultListen           = ":8000"
	defaultRate             = "100"
	defaultUsdLimit         = "999999"
	defaultBitcoinLimit     = "100"
	defaultPollRateInterval = time.Minute
)

type Config struct {
	// Listen is the HTTP listen address.
	Listen string
	// DefaultRate seeds the rate store at startup (USD per bitcoin).
	DefaultRate decimal.Decimal
	// UsdLimit caps deposit/withdraw amounts.
	UsdLimit decimal.Decimal
	// BitcoinLimit caps buy/sell amounts.
	BitcoinLimit decimal.Decimal
	// Platform selects the live rate source: none, binance or bybit.
	Platform string
	// PollRateInterval is how often the rate feed refreshes the price.
	PollRateInterval time.Duration
}

// ConfigTmp mirrors the yaml layout. The setup wizard writes it back to disk.
type ConfigTmp struct {
	Listen           string        `yaml:"listen,omitempty"`
	DefaultRate      string        `yaml:"default_rate,omitempty"`
	UsdLimit         string        `yaml:"usd_limit,omitempty"`
	BitcoinLimit     string        `yaml:"bitcoin_limit,omitempty"`
	Platform         string        `yaml:"platform,omitempty"`
	PollRateInterval time.Duration `yaml:"poll_rate_interval,omitempty"`
}

// Get parses CLI flags and, when --config is provided, the yaml file.
// Flag values are used as defaults for fields the yaml file omits.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	listen := flag.String("listen", defaultListen, "http listen address")
	rate := flag.String("defaultrate", defaultRate, "initial bitcoin rate in USD")
	usdLimit := flag.String("usdlimit", defaultUsdLimit, "max deposit/withdraw amount in USD")
	bitcoinLimit := flag.String("bitcoinlimit", defaultBitcoinLimit, "max buy/sell amount in bitcoins")
	platform := flag.String("platform", PlatformNone, "rate feed platform: none, binance or bybit")
	pollInterval := flag.Duration("pollrateinterval", defaultPollRateInterval, "rate feed poll interval")
	flag.Parse()

	tmp := ConfigTmp{
		Listen:           *listen,
		DefaultRate:      *rate,
		UsdLimit:         *usdLimit,
		BitcoinLimit:     *bitcoinLimit,
		Platform:         *platform,
		PollRateInterval: *pollInterval,
	}

	if *configPath != "" {
		if err := mergeYaml(*configPath, &tmp); err != nil {
			return Config{}, err
		}
	}

	return build(tmp)
}

func mergeYaml(path string, tmp *ConfigTmp) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fromFile ConfigTmp
	if err := yaml.Unmarshal(f, &fromFile); err != nil {
		return err
	}

	if fromFile.Listen != "" {
		tmp.Listen = fromFile.Listen
	}
	if fromFile.DefaultRate != "" {
		tmp.DefaultRate = fromFile.DefaultRate
	}
	if fromFile.UsdLimit != "" {
		tmp.UsdLimit = fromFile.UsdLimit
	}
	if fromFile.BitcoinLimit != "" {
		tmp.BitcoinLimit = fromFile.BitcoinLimit
	}
	if fromFile.Platform != "" {
		tmp.Platform = fromFile.Platform
	}
	if fromFile.PollRateInterval != 0 {
		tmp.PollRateInterval = fromFile.PollRateInterval
	}
	return nil
}

func build(tmp ConfigTmp) (Config, error) {
	defaultRateDec, err := decimal.NewFromString(tmp.DefaultRate)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'default_rate' param: %s, error: %w", tmp.DefaultRate, err)
	}
	usdLimitDec, err := decimal.NewFromString(tmp.UsdLimit)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'usd_limit' param: %s, error: %w", tmp.UsdLimit, err)
	}
	bitcoinLimitDec, err := decimal.NewFromString(tmp.BitcoinLimit)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'bitcoin_limit' param: %s, error: %w", tmp.BitcoinLimit, err)
	}

	switch tmp.Platform {
	case PlatformNone, PlatformBinance, PlatformBybit:
	default:
		return Config{}, fmt.Errorf("incorrect 'platform' param: %s (want none, binance or bybit)", tmp.Platform)
	}

	if tmp.PollRateInterval <= 0 {
		tmp.PollRateInterval = defaultPollRateInterval
	}

	return Config{
		Listen:           tmp.Listen,
		DefaultRate:      defaultRateDec,
		UsdLimit:         usdLimitDec,
		BitcoinLimit:     bitcoinLimitDec,
		Platform:         tmp.Platform,
		PollRateInterval: tmp.PollRateInterval,
	}, nil
}
