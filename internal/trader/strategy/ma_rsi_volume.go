package strategy

import (
	"fmt"

	"golang-crypto-trader/internal/entity"
)

// MovingAverageRSIVolumeStrategy requires confluence of a moving-average
// cross, an RSI band check and a volume spike before signalling.
type MovingAverageRSIVolumeStrategy struct {
	fastWindow       int
	slowWindow       int
	rsiWindow        int
	rsiOverbought    float64
	rsiOversold      float64
	volumeMultiplier float64
}

// NewMovingAverageRSIVolumeStrategy creates the strategy. Parameters:
// fast_window (9), slow_window (21), rsi_window (14), rsi_overbought (70),
// rsi_oversold (30), volume_multiplier (1.5).
func NewMovingAverageRSIVolumeStrategy(params map[string]float64) *MovingAverageRSIVolumeStrategy {
	return &MovingAverageRSIVolumeStrategy{
		fastWindow:       int(paramOr(params, "fast_window", 9)),
		slowWindow:       int(paramOr(params, "slow_window", 21)),
		rsiWindow:        int(paramOr(params, "rsi_window", 14)),
		rsiOverbought:    paramOr(params, "rsi_overbought", 70),
		rsiOversold:      paramOr(params, "rsi_oversold", 30),
		volumeMultiplier: paramOr(params, "volume_multiplier", 1.5),
	}
}

func (s *MovingAverageRSIVolumeStrategy) validate() error {
	if s.fastWindow < 1 || s.slowWindow < 1 {
		return fmt.Errorf("windows must be at least 1, got fast %d slow %d", s.fastWindow, s.slowWindow)
	}
	if s.fastWindow >= s.slowWindow {
		return fmt.Errorf("fast_window %d must be smaller than slow_window %d", s.fastWindow, s.slowWindow)
	}
	if s.rsiWindow < 1 {
		return fmt.Errorf("rsi_window must be at least 1, got %d", s.rsiWindow)
	}
	if s.rsiOversold < 0 || s.rsiOverbought > 100 || s.rsiOversold >= s.rsiOverbought {
		return fmt.Errorf("rsi_oversold/rsi_overbought must satisfy 0 <= oversold < overbought <= 100, got %v/%v",
			s.rsiOversold, s.rsiOverbought)
	}
	if s.volumeMultiplier <= 0 {
		return fmt.Errorf("volume_multiplier must be positive, got %v", s.volumeMultiplier)
	}
	return nil
}

func (s *MovingAverageRSIVolumeStrategy) Name() string { return MovingAverageRSIVolume }

func (s *MovingAverageRSIVolumeStrategy) Lookback() int {
	lookback := s.slowWindow
	if s.rsiWindow+1 > lookback {
		lookback = s.rsiWindow + 1
	}
	return lookback
}

func (s *MovingAverageRSIVolumeStrategy) Evaluate(candles []entity.Candle) (entity.Decision, error) {
	if len(candles) < s.Lookback() {
		return entity.Decision{}, fmt.Errorf("%w: need %d candles, got %d", ErrInsufficientHistory, s.Lookback(), len(candles))
	}

	values := closes(candles)
	fast := sma(values, s.fastWindow)
	slow := sma(values, s.slowWindow)
	rsi := rsiValue(values, s.rsiWindow)

	volumes := make([]float64, len(candles))
	for i, c := range candles {
		volumes[i] = c.Volume
	}
	avgVolume := sma(volumes[:len(volumes)-1], s.slowWindow)
	lastVolume := volumes[len(volumes)-1]
	volumeSpike := avgVolume > 0 && lastVolume >= avgVolume*s.volumeMultiplier

	decision := entity.Decision{
		Strategy: s.Name(),
		Indicators: map[string]float64{
			"fast_ma":    fast,
			"slow_ma":    slow,
			"rsi":        rsi,
			"volume":     lastVolume,
			"avg_volume": avgVolume,
		},
	}

	switch {
	case fast > slow && rsi < s.rsiOverbought && volumeSpike:
		decision.Signal = entity.SignalBuy
		decision.Reason = "MA cross up with RSI headroom and volume confirmation"
	case fast < slow && rsi > s.rsiOversold && volumeSpike:
		decision.Signal = entity.SignalSell
		decision.Reason = "MA cross down with RSI headroom and volume confirmation"
	default:
		decision.Signal = entity.SignalHold
		decision.Reason = "no confluence of MA, RSI and volume"
	}

	return decision, nil
}
