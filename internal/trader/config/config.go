package config

import (
	"fmt"
	"time"

	"golang-crypto-trader/pkg/config"
)

// Strategy selects one strategy variant by name plus its parameter record.
type Strategy struct {
	Name   string             `mapstructure:"name"`
	Params map[string]float64 `mapstructure:"params"`
}

// Asset holds the immutable per-asset trading parameters.
type Asset struct {
	StockCode        string  `mapstructure:"stock_code"`
	Symbol           string  `mapstructure:"symbol"`
	TradedQuantity   float64 `mapstructure:"traded_quantity"`
	TradedPercentage float64 `mapstructure:"traded_percentage"`

	CandleInterval string        `mapstructure:"candle_interval"`
	CycleInterval  time.Duration `mapstructure:"cycle_interval"`
	PostOrderDelay time.Duration `mapstructure:"post_order_delay"`

	AcceptableLossPct    float64   `mapstructure:"acceptable_loss_pct"`
	StopLossPct          float64   `mapstructure:"stop_loss_pct"`
	TakeProfitPcts       []float64 `mapstructure:"take_profit_pcts"`
	TakeProfitAmountPcts []float64 `mapstructure:"take_profit_amount_pcts"`

	FallbackEnabled  bool     `mapstructure:"fallback_enabled"`
	MainStrategy     Strategy `mapstructure:"main_strategy"`
	FallbackStrategy Strategy `mapstructure:"fallback_strategy"`
}

// Trading holds the global trading configuration.
type Trading struct {
	// Serialized makes all asset workers contend for a single lock around
	// exchange-facing I/O, totally ordering their cycles.
	Serialized bool    `mapstructure:"serialized"`
	Assets     []Asset `mapstructure:"assets"`
}

// Binance holds the configuration for the Binance REST API.
type Binance struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	SecretKey           string `mapstructure:"secret_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// BalanceMaintainer holds the reserve-currency top-up configuration.
type BalanceMaintainer struct {
	Enabled           bool          `mapstructure:"enabled"`
	ReserveAsset      string        `mapstructure:"reserve_asset"`
	QuoteAsset        string        `mapstructure:"quote_asset"`
	MinReserveBalance float64       `mapstructure:"min_reserve_balance"`
	QuoteSafetyFloor  float64       `mapstructure:"quote_safety_floor"`
	PurchaseFraction  float64       `mapstructure:"purchase_fraction"`
	Interval          time.Duration `mapstructure:"interval"`
}

// Config holds the full configuration for the trader service.
type Config struct {
	App               config.App        `mapstructure:"app"`
	Logger            config.Logger     `mapstructure:"logger"`
	Database          config.Database   `mapstructure:"database"`
	Redis             config.Redis      `mapstructure:"redis"`
	Telegram          config.Telegram   `mapstructure:"telegram"`
	Binance           Binance           `mapstructure:"binance"`
	Trading           Trading           `mapstructure:"trading"`
	BalanceMaintainer BalanceMaintainer `mapstructure:"balance_maintainer"`
}

// Load loads the trader configuration from the given path and validates it.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the trading configuration. Invalid risk parameters are
// fatal at startup so they are never encountered mid-run.
func (c *Config) Validate() error {
	if len(c.Trading.Assets) == 0 {
		return fmt.Errorf("trading: no assets configured")
	}

	for _, asset := range c.Trading.Assets {
		if err := asset.Validate(); err != nil {
			return fmt.Errorf("asset %q: %w", asset.Symbol, err)
		}
	}

	if c.BalanceMaintainer.Enabled {
		bm := c.BalanceMaintainer
		if bm.ReserveAsset == "" || bm.QuoteAsset == "" {
			return fmt.Errorf("balance_maintainer: reserve_asset and quote_asset are required")
		}
		if bm.PurchaseFraction <= 0 || bm.PurchaseFraction > 1 {
			return fmt.Errorf("balance_maintainer: purchase_fraction must be in (0,1], got %v", bm.PurchaseFraction)
		}
		if bm.Interval <= 0 {
			return fmt.Errorf("balance_maintainer: interval must be positive")
		}
	}

	return nil
}

// Validate checks a single asset configuration.
func (a *Asset) Validate() error {
	if a.StockCode == "" || a.Symbol == "" {
		return fmt.Errorf("stock_code and symbol are required")
	}
	if a.TradedQuantity <= 0 && a.TradedPercentage <= 0 {
		return fmt.Errorf("either traded_quantity or traded_percentage must be positive")
	}
	if a.TradedPercentage < 0 || a.TradedPercentage > 100 {
		return fmt.Errorf("traded_percentage must be in [0,100], got %v", a.TradedPercentage)
	}
	if a.CandleInterval == "" {
		return fmt.Errorf("candle_interval is required")
	}
	if a.CycleInterval <= 0 {
		return fmt.Errorf("cycle_interval must be positive")
	}
	if a.PostOrderDelay <= 0 {
		return fmt.Errorf("post_order_delay must be positive")
	}
	if a.StopLossPct < 0 {
		return fmt.Errorf("stop_loss_pct must not be negative, got %v", a.StopLossPct)
	}
	if a.AcceptableLossPct < 0 {
		return fmt.Errorf("acceptable_loss_pct must not be negative, got %v", a.AcceptableLossPct)
	}

	if len(a.TakeProfitPcts) != len(a.TakeProfitAmountPcts) {
		return fmt.Errorf("take_profit_pcts and take_profit_amount_pcts must have equal length (%d != %d)",
			len(a.TakeProfitPcts), len(a.TakeProfitAmountPcts))
	}
	prev := 0.0
	for i, pct := range a.TakeProfitPcts {
		if pct <= prev {
			return fmt.Errorf("take_profit_pcts must be positive and strictly ascending, tier %d = %v", i, pct)
		}
		prev = pct
	}
	for i, amount := range a.TakeProfitAmountPcts {
		if amount <= 0 || amount > 100 {
			return fmt.Errorf("take_profit_amount_pcts must be in (0,100], tier %d = %v", i, amount)
		}
	}

	if a.MainStrategy.Name == "" {
		return fmt.Errorf("main_strategy.name is required")
	}
	if a.FallbackEnabled && a.FallbackStrategy.Name == "" {
		return fmt.Errorf("fallback_strategy.name is required when fallback is enabled")
	}

	return nil
}
