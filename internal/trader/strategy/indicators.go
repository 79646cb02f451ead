package strategy

import (
	"math"

	"golang-crypto-trader/internal/entity"
)

func closes(candles []entity.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// sma computes the simple moving average of the last window values.
func sma(values []float64, window int) float64 {
	if window <= 0 || len(values) < window {
		return 0
	}
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window)
}

// stddev computes the population standard deviation of values.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}

// rsiValue computes Wilder's RSI over the last window+1 closes.
func rsiValue(values []float64, window int) float64 {
	if len(values) < window+1 {
		return 0
	}
	recent := values[len(values)-window-1:]

	var avgGain, avgLoss float64
	for i := 1; i < len(recent); i++ {
		delta := recent[i] - recent[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// trueRange computes the true range of candle c given its predecessor.
func trueRange(c, prev entity.Candle) float64 {
	return math.Max(c.High-c.Low,
		math.Max(math.Abs(c.High-prev.Close), math.Abs(c.Low-prev.Close)))
}
