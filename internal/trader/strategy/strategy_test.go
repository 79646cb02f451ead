package strategy

import (
	"testing"
	"time"

	"golang-crypto-trader/internal/entity"
	"golang-crypto-trader/internal/trader/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCandles(closes ...float64) []entity.Candle {
	candles := make([]entity.Candle, len(closes))
	now := time.Now()
	for i, c := range closes {
		candles[i] = entity.Candle{
			OpenTime:  now.Add(time.Duration(i-len(closes)) * time.Minute),
			Open:      c,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    100,
			CloseTime: now.Add(time.Duration(i-len(closes)+1) * time.Minute),
		}
	}
	return candles
}

func TestBuildKnownStrategies(t *testing.T) {
	for _, name := range []string{MovingAverage, MovingAverageAntecipation, RSI, Vortex, MovingAverageRSIVolume} {
		s, err := Build(config.Strategy{Name: name})
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
		assert.Greater(t, s.Lookback(), 0, name)
	}
}

func TestBuildRejectsUnknownStrategy(t *testing.T) {
	_, err := Build(config.Strategy{Name: "bollinger"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestBuildRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Strategy
	}{
		{
			name: "antecipation zero slow window",
			cfg:  config.Strategy{Name: MovingAverageAntecipation, Params: map[string]float64{"slow_window": 0}},
		},
		{
			name: "antecipation negative slow window",
			cfg:  config.Strategy{Name: MovingAverageAntecipation, Params: map[string]float64{"slow_window": -3}},
		},
		{
			name: "moving average fast not below slow",
			cfg:  config.Strategy{Name: MovingAverage, Params: map[string]float64{"fast_window": 40, "slow_window": 7}},
		},
		{
			name: "rsi zero window",
			cfg:  config.Strategy{Name: RSI, Params: map[string]float64{"window": 0}},
		},
		{
			name: "rsi inverted band",
			cfg:  config.Strategy{Name: RSI, Params: map[string]float64{"oversold": 80, "overbought": 20}},
		},
		{
			name: "vortex zero period",
			cfg:  config.Strategy{Name: Vortex, Params: map[string]float64{"period": 0}},
		},
		{
			name: "volume multiplier not positive",
			cfg:  config.Strategy{Name: MovingAverageRSIVolume, Params: map[string]float64{"volume_multiplier": 0}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestBuildRejectsDegenerateAntecipationWindow(t *testing.T) {
	// A zero slow window used to pass construction and blow up during
	// evaluation once the gap series came back with a single entry.
	candles := makeCandles(1, 2, 3, 4, 5)

	_, err := Build(config.Strategy{
		Name:   MovingAverageAntecipation,
		Params: map[string]float64{"fast_window": 1, "slow_window": 0},
	})
	require.Error(t, err)

	s, err := Build(config.Strategy{
		Name:   MovingAverageAntecipation,
		Params: map[string]float64{"fast_window": 1, "slow_window": 2},
	})
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		_, _ = s.Evaluate(candles)
	})
}

func TestMovingAverageSignals(t *testing.T) {
	s := NewMovingAverageStrategy(map[string]float64{"fast_window": 2, "slow_window": 3})

	d, err := s.Evaluate(makeCandles(1, 2, 3, 4, 5))
	require.NoError(t, err)
	assert.Equal(t, entity.SignalBuy, d.Signal)
	assert.Greater(t, d.Indicators["fast_ma"], d.Indicators["slow_ma"])

	d, err = s.Evaluate(makeCandles(5, 4, 3, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, entity.SignalSell, d.Signal)

	d, err = s.Evaluate(makeCandles(5, 5, 5, 5, 5))
	require.NoError(t, err)
	assert.Equal(t, entity.SignalHold, d.Signal)
}

func TestMovingAverageInsufficientHistory(t *testing.T) {
	s := NewMovingAverageStrategy(map[string]float64{"fast_window": 2, "slow_window": 3})

	_, err := s.Evaluate(makeCandles(1, 2, 3))
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestRSISignals(t *testing.T) {
	s := NewRSIStrategy(map[string]float64{"window": 3})

	// Losses only: RSI 0, oversold.
	d, err := s.Evaluate(makeCandles(5, 4, 3, 2))
	require.NoError(t, err)
	assert.Equal(t, entity.SignalBuy, d.Signal)

	// Gains only: RSI 100, overbought.
	d, err = s.Evaluate(makeCandles(2, 3, 4, 5))
	require.NoError(t, err)
	assert.Equal(t, entity.SignalSell, d.Signal)

	// Mixed moves keep the RSI in the neutral band.
	d, err = s.Evaluate(makeCandles(10, 11, 10, 11))
	require.NoError(t, err)
	assert.Equal(t, entity.SignalHold, d.Signal)
}

func TestVortexSignals(t *testing.T) {
	s := NewVortexStrategy(map[string]float64{"period": 3})

	d, err := s.Evaluate(makeCandles(1, 2, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, entity.SignalBuy, d.Signal)
	assert.Greater(t, d.Indicators["vi_plus"], d.Indicators["vi_minus"])

	d, err = s.Evaluate(makeCandles(4, 3, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, entity.SignalSell, d.Signal)
	assert.Less(t, d.Indicators["vi_plus"], d.Indicators["vi_minus"])
}

func TestVortexZeroTrueRange(t *testing.T) {
	s := NewVortexStrategy(map[string]float64{"period": 3})

	// Degenerate candles with no range at all.
	candles := makeCandles(5, 5, 5, 5)
	for i := range candles {
		candles[i].High = 5
		candles[i].Low = 5
	}

	_, err := s.Evaluate(candles)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero true range")
}

func TestMovingAverageAntecipationSignals(t *testing.T) {
	s := NewMovingAverageAntecipationStrategy(map[string]float64{
		"fast_window": 2,
		"slow_window": 3,
	})

	// Steady uptrend keeps the fast MA firmly above the slow MA.
	d, err := s.Evaluate(makeCandles(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	assert.Equal(t, entity.SignalBuy, d.Signal)

	d, err = s.Evaluate(makeCandles(6, 5, 4, 3, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, entity.SignalSell, d.Signal)

	_, err = s.Evaluate(makeCandles(1, 2, 3))
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestMovingAverageRSIVolumeConfluence(t *testing.T) {
	s := NewMovingAverageRSIVolumeStrategy(map[string]float64{
		"fast_window":       2,
		"slow_window":       3,
		"rsi_window":        3,
		"volume_multiplier": 1.5,
	})

	// Uptrend with a dip keeps RSI under overbought; spike the last volume.
	candles := makeCandles(10, 11, 9, 11, 12)
	candles[len(candles)-1].Volume = 300

	d, err := s.Evaluate(candles)
	require.NoError(t, err)
	assert.Equal(t, entity.SignalBuy, d.Signal)

	// Same window without the volume spike gives no confluence.
	candles[len(candles)-1].Volume = 100
	d, err = s.Evaluate(candles)
	require.NoError(t, err)
	assert.Equal(t, entity.SignalHold, d.Signal)
}

func TestSMA(t *testing.T) {
	assert.InDelta(t, 10.0/3.0, sma([]float64{1, 2, 3, 5}, 3), 1e-9)
	assert.Equal(t, 0.0, sma([]float64{1, 2}, 3))
	assert.Equal(t, 0.0, sma([]float64{1, 2}, 0))
}

func TestRSIValueExtremes(t *testing.T) {
	assert.Equal(t, 100.0, rsiValue([]float64{1, 2, 3, 4}, 3))
	assert.Equal(t, 0.0, rsiValue([]float64{4, 3, 2, 1}, 3))
	assert.Equal(t, 0.0, rsiValue([]float64{1, 2}, 3))
}
