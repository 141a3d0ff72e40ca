// Package setup provides the interactive configuration wizard.
package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"bitwallet/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard and writes config.gen.yaml.
func RunTUI() error {
	var (
		listen          string
		platform        string
		defaultRateStr  string
		usdLimitStr     string
		bitcoinLimitStr string
		pollIntervalStr string
		confirm         bool
	)

	// defaults
	listen = ":8000"
	defaultRateStr = "100"
	usdLimitStr = "999999"
	bitcoinLimitStr = "100"
	pollIntervalStr = "1m"

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("BITWALLET CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Set up your wallet service in a few steps.\n"))

	// server
	fmt.Println(stepStyle.Render("STEP 1: SERVER"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen Address").
				Description("host:port, e.g. :8000").
				Value(&listen).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("listen address cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// rate source
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("BITWALLET CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: RATE SOURCE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where does the bitcoin rate come from?").
				Options(
					huh.NewOption("Manual (set over the API)", config.PlatformNone),
					huh.NewOption("Binance", config.PlatformBinance),
					huh.NewOption("Bybit", config.PlatformBybit),
				).
				Value(&platform),
		),
	).Run()
	if err != nil {
		return err
	}

	// ledger settings
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("BITWALLET CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: LEDGER LIMITS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Initial Rate (USD per BTC)").
				Value(&defaultRateStr).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("USD Limit").
				Description("Max deposit/withdraw amount").
				Value(&usdLimitStr).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Bitcoin Limit").
				Description("Max buy/sell amount").
				Value(&bitcoinLimitStr).
				Validate(validatePositiveDecimal),
		),
	).Run()
	if err != nil {
		return err
	}

	// timing
	if platform != config.PlatformNone {
		fmt.Print("\033[H\033[2J")
		fmt.Println(headerStyle.Render("BITWALLET CONFIG WIZARD"))
		fmt.Println(stepStyle.Render("STEP 4: TIMING"))
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Rate Poll Interval").
					Description("Duration string (e.g. 30s, 1m, 5m)").
					Value(&pollIntervalStr).
					Validate(func(s string) error {
						_, err := time.ParseDuration(s)
						return err
					}),
			),
		).Run()
		if err != nil {
			return err
		}
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("BITWALLET CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Listen: %s\nRate source: %s\nInitial rate: %s\nUSD limit: %s\nBitcoin limit: %s\nPoll interval: %s\n",
		listen, platform, defaultRateStr, usdLimitStr, bitcoinLimitStr, pollIntervalStr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	pollInterval, _ := time.ParseDuration(pollIntervalStr)

	cfgTmp := config.ConfigTmp{
		Listen:           listen,
		DefaultRate:      defaultRateStr,
		UsdLimit:         usdLimitStr,
		BitcoinLimit:     bitcoinLimitStr,
		Platform:         platform,
		PollRateInterval: pollInterval,
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\nConfiguration saved to %s", filename)))
	return nil
}

func validatePositiveDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if !d.IsPositive() {
		return fmt.Errorf("must be positive")
	}
	return nil
}
