package strategy

import (
	"fmt"

	"golang-crypto-trader/internal/entity"
)

// MovingAverageAntecipationStrategy anticipates a moving-average crossover:
// it signals while the gap between fast and slow MA is still closing,
// provided the gap is inside a volatility band scaled by volatility_factor.
type MovingAverageAntecipationStrategy struct {
	fastWindow       int
	slowWindow       int
	volatilityFactor float64
}

// NewMovingAverageAntecipationStrategy creates the strategy. Parameters:
// fast_window (default 9), slow_window (default 21), volatility_factor
// (default 0.5).
func NewMovingAverageAntecipationStrategy(params map[string]float64) *MovingAverageAntecipationStrategy {
	return &MovingAverageAntecipationStrategy{
		fastWindow:       int(paramOr(params, "fast_window", 9)),
		slowWindow:       int(paramOr(params, "slow_window", 21)),
		volatilityFactor: paramOr(params, "volatility_factor", 0.5),
	}
}

func (s *MovingAverageAntecipationStrategy) validate() error {
	if s.fastWindow < 1 || s.slowWindow < 1 {
		return fmt.Errorf("windows must be at least 1, got fast %d slow %d", s.fastWindow, s.slowWindow)
	}
	if s.fastWindow >= s.slowWindow {
		return fmt.Errorf("fast_window %d must be smaller than slow_window %d", s.fastWindow, s.slowWindow)
	}
	if s.volatilityFactor < 0 {
		return fmt.Errorf("volatility_factor must not be negative, got %v", s.volatilityFactor)
	}
	return nil
}

func (s *MovingAverageAntecipationStrategy) Name() string { return MovingAverageAntecipation }

func (s *MovingAverageAntecipationStrategy) Lookback() int { return s.slowWindow * 2 }

func (s *MovingAverageAntecipationStrategy) Evaluate(candles []entity.Candle) (entity.Decision, error) {
	if len(candles) < s.Lookback() {
		return entity.Decision{}, fmt.Errorf("%w: need %d candles, got %d", ErrInsufficientHistory, s.Lookback(), len(candles))
	}

	values := closes(candles)

	// Gap series between the MAs over the slow window, newest last.
	gaps := make([]float64, 0, s.slowWindow)
	for i := len(values) - s.slowWindow; i <= len(values); i++ {
		window := values[:i]
		if len(window) < s.slowWindow {
			continue
		}
		gaps = append(gaps, sma(window, s.fastWindow)-sma(window, s.slowWindow))
	}

	gap := gaps[len(gaps)-1]
	prevGap := gaps[len(gaps)-2]
	band := stddev(gaps) * s.volatilityFactor

	fast := sma(values, s.fastWindow)
	slow := sma(values, s.slowWindow)

	decision := entity.Decision{
		Strategy: s.Name(),
		Indicators: map[string]float64{
			"fast_ma":         fast,
			"slow_ma":         slow,
			"gap":             gap,
			"volatility_band": band,
		},
	}

	closingUp := gap > prevGap
	closingDown := gap < prevGap

	switch {
	case gap > 0 && gap > band:
		decision.Signal = entity.SignalBuy
		decision.Reason = "fast MA firmly above slow MA"
	case gap < 0 && -gap <= band && closingUp:
		decision.Signal = entity.SignalBuy
		decision.Reason = "gap closing upward inside volatility band, anticipating cross"
	case gap < 0 && -gap > band:
		decision.Signal = entity.SignalSell
		decision.Reason = "fast MA firmly below slow MA"
	case gap > 0 && gap <= band && closingDown:
		decision.Signal = entity.SignalSell
		decision.Reason = "gap closing downward inside volatility band, anticipating cross"
	default:
		decision.Signal = entity.SignalHold
		decision.Reason = "gap inside volatility band without direction"
	}

	return decision, nil
}
