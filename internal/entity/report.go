package entity

import "time"

// ExecutionReport is the mandatory, fully-populated outcome of one trading
// engine cycle. Every field is computed by the cycle itself; a cycle that
// cannot compute a field fails instead of substituting a placeholder.
type ExecutionReport struct {
	Cycle        int
	StockCode    string
	Symbol       string
	ExecutedAt   time.Time
	Decision     Decision
	FinalAction  string
	Position     Position
	BaseBalance  float64
	CurrentPrice float64
	// MinSellPrice is the acceptable-loss floor below which strategy sells
	// are suppressed. Zero acceptable loss makes it equal to the entry price.
	MinSellPrice  float64
	StopLossPrice float64
	VariationPct  float64
	// NextTakeProfit describes the first untriggered tier, if any.
	NextTakeProfit *TakeProfitTarget
	OrderExecuted  bool
	// Fill is the confirmed order fill when OrderExecuted is true.
	Fill      *OrderFill
	NextSleep time.Duration
}

// TakeProfitTarget is the next pending take-profit tier for display.
type TakeProfitTarget struct {
	Price     float64
	Pct       float64
	AmountPct float64
}
