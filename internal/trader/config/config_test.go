package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAsset() Asset {
	return Asset{
		StockCode:            "XRP",
		Symbol:               "XRPUSDT",
		TradedQuantity:       3,
		CandleInterval:       "5m",
		CycleInterval:        5 * time.Minute,
		PostOrderDelay:       5 * time.Minute,
		StopLossPct:          2.0,
		TakeProfitPcts:       []float64{1, 2, 4},
		TakeProfitAmountPcts: []float64{50, 50, 100},
		FallbackEnabled:      true,
		MainStrategy:         Strategy{Name: "vortex"},
		FallbackStrategy:     Strategy{Name: "moving_average"},
	}
}

func TestAssetValidateAccepts(t *testing.T) {
	asset := validAsset()
	assert.NoError(t, asset.Validate())
}

func TestAssetValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Asset)
		wantErr string
	}{
		{
			name:    "missing symbol",
			mutate:  func(a *Asset) { a.Symbol = "" },
			wantErr: "stock_code and symbol",
		},
		{
			name: "no sizing",
			mutate: func(a *Asset) {
				a.TradedQuantity = 0
				a.TradedPercentage = 0
			},
			wantErr: "traded_quantity or traded_percentage",
		},
		{
			name:    "percentage out of range",
			mutate:  func(a *Asset) { a.TradedPercentage = 120 },
			wantErr: "traded_percentage",
		},
		{
			name:    "zero cycle interval",
			mutate:  func(a *Asset) { a.CycleInterval = 0 },
			wantErr: "cycle_interval",
		},
		{
			name:    "negative stop loss",
			mutate:  func(a *Asset) { a.StopLossPct = -1 },
			wantErr: "stop_loss_pct",
		},
		{
			name:    "mismatched tier lengths",
			mutate:  func(a *Asset) { a.TakeProfitAmountPcts = []float64{50, 50} },
			wantErr: "equal length",
		},
		{
			name:    "tiers not ascending",
			mutate:  func(a *Asset) { a.TakeProfitPcts = []float64{1, 1, 4} },
			wantErr: "strictly ascending",
		},
		{
			name:    "tier amount over 100",
			mutate:  func(a *Asset) { a.TakeProfitAmountPcts = []float64{50, 50, 150} },
			wantErr: "take_profit_amount_pcts",
		},
		{
			name:    "missing main strategy",
			mutate:  func(a *Asset) { a.MainStrategy.Name = "" },
			wantErr: "main_strategy.name",
		},
		{
			name: "fallback enabled without strategy",
			mutate: func(a *Asset) {
				a.FallbackEnabled = true
				a.FallbackStrategy.Name = ""
			},
			wantErr: "fallback_strategy.name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			asset := validAsset()
			tc.mutate(&asset)
			err := asset.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	require.Error(t, cfg.Validate(), "no assets configured")

	cfg.Trading.Assets = []Asset{validAsset()}
	assert.NoError(t, cfg.Validate())

	cfg.BalanceMaintainer = BalanceMaintainer{
		Enabled:          true,
		ReserveAsset:     "BNB",
		QuoteAsset:       "USDT",
		PurchaseFraction: 0.05,
		Interval:         10 * time.Minute,
	}
	assert.NoError(t, cfg.Validate())

	cfg.BalanceMaintainer.PurchaseFraction = 1.5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purchase_fraction")

	cfg.BalanceMaintainer.PurchaseFraction = 0.05
	cfg.BalanceMaintainer.ReserveAsset = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserve_asset")
}
