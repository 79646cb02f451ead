package strategy

import (
	"errors"
	"fmt"

	"golang-crypto-trader/internal/entity"
	"golang-crypto-trader/internal/trader/config"
)

// ErrInsufficientHistory is returned when the candle window is too short for
// the strategy's lookback need. The engine reacts by invoking the fallback
// strategy.
var ErrInsufficientHistory = errors.New("insufficient candle history")

// TradingStrategy evaluates a candle window into a trade decision.
// Implementations are pure functions of the window and their own parameters;
// they hold no mutable state shared between evaluations.
type TradingStrategy interface {
	Name() string
	// Lookback is the minimum number of candles Evaluate needs.
	Lookback() int
	Evaluate(candles []entity.Candle) (entity.Decision, error)
}

// Strategy names selectable from configuration.
const (
	MovingAverage             = "moving_average"
	MovingAverageAntecipation = "moving_average_antecipation"
	RSI                       = "rsi"
	Vortex                    = "vortex"
	MovingAverageRSIVolume    = "ma_rsi_volume"
)

// Build constructs a strategy from its configuration tag and parameter
// record. The set of strategies is closed; unknown names and invalid
// parameters are rejected here so misconfiguration is fatal at startup
// rather than mid-run.
func Build(cfg config.Strategy) (TradingStrategy, error) {
	var s interface {
		TradingStrategy
		validate() error
	}

	switch cfg.Name {
	case MovingAverage:
		s = NewMovingAverageStrategy(cfg.Params)
	case MovingAverageAntecipation:
		s = NewMovingAverageAntecipationStrategy(cfg.Params)
	case RSI:
		s = NewRSIStrategy(cfg.Params)
	case Vortex:
		s = NewVortexStrategy(cfg.Params)
	case MovingAverageRSIVolume:
		s = NewMovingAverageRSIVolumeStrategy(cfg.Params)
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Name)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", cfg.Name, err)
	}
	return s, nil
}

// paramOr reads a named parameter with a default.
func paramOr(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}
