package entity

// Signal is the trade signal emitted by a strategy evaluation.
type Signal int

const (
	SignalHold Signal = iota
	SignalBuy
	SignalSell
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Decision is the outcome of a single strategy evaluation over a candle
// window. Indicators carries the supporting values (e.g. VI+/VI- for the
// vortex strategy) for reporting only.
type Decision struct {
	Signal     Signal
	Strategy   string
	Reason     string
	Indicators map[string]float64
}

// HoldDecision returns a Hold decision attributed to the given strategy.
func HoldDecision(strategy, reason string) Decision {
	return Decision{
		Signal:   SignalHold,
		Strategy: strategy,
		Reason:   reason,
	}
}
