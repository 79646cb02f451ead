package entity

import "time"

// Candle represents a single OHLCV data point for a fixed time interval.
// Candle sequences returned by the market data repository are always
// ordered oldest first.
type Candle struct {
	OpenTime  time.Time `json:"open_time"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	CloseTime time.Time `json:"close_time"`
}
