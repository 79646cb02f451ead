package strategy

import (
	"fmt"

	"golang-crypto-trader/internal/entity"
)

// MovingAverageStrategy trades on the relation between a fast and a slow
// simple moving average of closes.
type MovingAverageStrategy struct {
	fastWindow int
	slowWindow int
}

// NewMovingAverageStrategy creates the strategy. Parameters: fast_window
// (default 7) and slow_window (default 40).
func NewMovingAverageStrategy(params map[string]float64) *MovingAverageStrategy {
	return &MovingAverageStrategy{
		fastWindow: int(paramOr(params, "fast_window", 7)),
		slowWindow: int(paramOr(params, "slow_window", 40)),
	}
}

func (s *MovingAverageStrategy) validate() error {
	if s.fastWindow < 1 || s.slowWindow < 1 {
		return fmt.Errorf("windows must be at least 1, got fast %d slow %d", s.fastWindow, s.slowWindow)
	}
	if s.fastWindow >= s.slowWindow {
		return fmt.Errorf("fast_window %d must be smaller than slow_window %d", s.fastWindow, s.slowWindow)
	}
	return nil
}

func (s *MovingAverageStrategy) Name() string { return MovingAverage }

func (s *MovingAverageStrategy) Lookback() int { return s.slowWindow + 1 }

func (s *MovingAverageStrategy) Evaluate(candles []entity.Candle) (entity.Decision, error) {
	if len(candles) < s.Lookback() {
		return entity.Decision{}, fmt.Errorf("%w: need %d candles, got %d", ErrInsufficientHistory, s.Lookback(), len(candles))
	}

	values := closes(candles)
	fast := sma(values, s.fastWindow)
	slow := sma(values, s.slowWindow)

	decision := entity.Decision{
		Strategy: s.Name(),
		Indicators: map[string]float64{
			"fast_ma": fast,
			"slow_ma": slow,
		},
	}

	switch {
	case fast > slow:
		decision.Signal = entity.SignalBuy
		decision.Reason = fmt.Sprintf("fast MA %.6f above slow MA %.6f", fast, slow)
	case fast < slow:
		decision.Signal = entity.SignalSell
		decision.Reason = fmt.Sprintf("fast MA %.6f below slow MA %.6f", fast, slow)
	default:
		decision.Signal = entity.SignalHold
		decision.Reason = "moving averages are equal"
	}

	return decision, nil
}
