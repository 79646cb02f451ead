package strategy

import (
	"fmt"

	"golang-crypto-trader/internal/entity"
)

// RSIStrategy buys oversold and sells overbought conditions using Wilder's
// relative strength index.
type RSIStrategy struct {
	window     int
	oversold   float64
	overbought float64
}

// NewRSIStrategy creates the strategy. Parameters: window (default 14),
// oversold (default 30), overbought (default 70).
func NewRSIStrategy(params map[string]float64) *RSIStrategy {
	return &RSIStrategy{
		window:     int(paramOr(params, "window", 14)),
		oversold:   paramOr(params, "oversold", 30),
		overbought: paramOr(params, "overbought", 70),
	}
}

func (s *RSIStrategy) validate() error {
	if s.window < 1 {
		return fmt.Errorf("window must be at least 1, got %d", s.window)
	}
	if s.oversold < 0 || s.overbought > 100 || s.oversold >= s.overbought {
		return fmt.Errorf("oversold/overbought must satisfy 0 <= oversold < overbought <= 100, got %v/%v",
			s.oversold, s.overbought)
	}
	return nil
}

func (s *RSIStrategy) Name() string { return RSI }

func (s *RSIStrategy) Lookback() int { return s.window + 1 }

func (s *RSIStrategy) Evaluate(candles []entity.Candle) (entity.Decision, error) {
	if len(candles) < s.Lookback() {
		return entity.Decision{}, fmt.Errorf("%w: need %d candles, got %d", ErrInsufficientHistory, s.Lookback(), len(candles))
	}

	rsi := rsiValue(closes(candles), s.window)

	decision := entity.Decision{
		Strategy: s.Name(),
		Indicators: map[string]float64{
			"rsi": rsi,
		},
	}

	switch {
	case rsi <= s.oversold:
		decision.Signal = entity.SignalBuy
		decision.Reason = fmt.Sprintf("RSI %.2f at or below oversold %.2f", rsi, s.oversold)
	case rsi >= s.overbought:
		decision.Signal = entity.SignalSell
		decision.Reason = fmt.Sprintf("RSI %.2f at or above overbought %.2f", rsi, s.overbought)
	default:
		decision.Signal = entity.SignalHold
		decision.Reason = fmt.Sprintf("RSI %.2f in neutral band", rsi)
	}

	return decision, nil
}
