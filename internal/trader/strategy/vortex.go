package strategy

import (
	"fmt"
	"math"

	"golang-crypto-trader/internal/entity"
)

// VortexStrategy trades on the vortex indicator: positive movement VI+
// against negative movement VI- over a fixed period.
type VortexStrategy struct {
	period int
}

// NewVortexStrategy creates the strategy. Parameters: period (default 14).
func NewVortexStrategy(params map[string]float64) *VortexStrategy {
	return &VortexStrategy{
		period: int(paramOr(params, "period", 14)),
	}
}

func (s *VortexStrategy) validate() error {
	if s.period < 1 {
		return fmt.Errorf("period must be at least 1, got %d", s.period)
	}
	return nil
}

func (s *VortexStrategy) Name() string { return Vortex }

func (s *VortexStrategy) Lookback() int { return s.period + 1 }

func (s *VortexStrategy) Evaluate(candles []entity.Candle) (entity.Decision, error) {
	if len(candles) < s.Lookback() {
		return entity.Decision{}, fmt.Errorf("%w: need %d candles, got %d", ErrInsufficientHistory, s.Lookback(), len(candles))
	}

	recent := candles[len(candles)-s.period-1:]

	var vmPlus, vmMinus, trSum float64
	for i := 1; i < len(recent); i++ {
		vmPlus += math.Abs(recent[i].High - recent[i-1].Low)
		vmMinus += math.Abs(recent[i].Low - recent[i-1].High)
		trSum += trueRange(recent[i], recent[i-1])
	}

	if trSum == 0 {
		return entity.Decision{}, fmt.Errorf("vortex: zero true range over period %d", s.period)
	}

	viPlus := vmPlus / trSum
	viMinus := vmMinus / trSum

	decision := entity.Decision{
		Strategy: s.Name(),
		Indicators: map[string]float64{
			"vi_plus":  viPlus,
			"vi_minus": viMinus,
		},
	}

	switch {
	case viPlus > viMinus:
		decision.Signal = entity.SignalBuy
		decision.Reason = fmt.Sprintf("VI+ %.4f above VI- %.4f", viPlus, viMinus)
	case viPlus < viMinus:
		decision.Signal = entity.SignalSell
		decision.Reason = fmt.Sprintf("VI+ %.4f below VI- %.4f", viPlus, viMinus)
	default:
		decision.Signal = entity.SignalHold
		decision.Reason = "VI+ and VI- are equal"
	}

	return decision, nil
}
