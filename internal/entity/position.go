package entity

import "time"

// PositionStatus is the state of a per-asset position.
type PositionStatus string

const (
	PositionFlat PositionStatus = "FLAT"
	PositionLong PositionStatus = "LONG"
)

// Position is the risk-managed state of a single traded asset. It is owned
// exclusively by one trading engine and mutated only after a confirmed fill.
// JSON tags support snapshot persistence in Redis for restart recovery.
type Position struct {
	Symbol            string         `json:"symbol"`
	Status            PositionStatus `json:"status"`
	EntryPrice        float64        `json:"entry_price"`
	EntryQuantity     float64        `json:"entry_quantity"`
	EntryTime         time.Time      `json:"entry_time"`
	RemainingQuantity float64        `json:"remaining_quantity"`
	RealizedQuantity  float64        `json:"realized_quantity"`
	TriggeredTiers    []bool         `json:"triggered_tiers"`
}

// NewFlatPosition creates an empty position for the given symbol with the
// given number of take-profit tiers.
func NewFlatPosition(symbol string, tierCount int) *Position {
	return &Position{
		Symbol:         symbol,
		Status:         PositionFlat,
		TriggeredTiers: make([]bool, tierCount),
	}
}

// IsLong reports whether the position currently holds the asset.
func (p *Position) IsLong() bool {
	return p.Status == PositionLong
}

// Open records a confirmed entry fill and resets all take-profit trigger flags.
func (p *Position) Open(fill OrderFill) {
	p.Status = PositionLong
	p.EntryPrice = fill.Price
	p.EntryQuantity = fill.Quantity
	p.EntryTime = fill.Timestamp
	p.RemainingQuantity = fill.Quantity
	p.RealizedQuantity = 0
	for i := range p.TriggeredTiers {
		p.TriggeredTiers[i] = false
	}
}

// Reduce records a confirmed exit fill against the remaining quantity.
// When the remainder is exhausted the position flattens.
func (p *Position) Reduce(fill OrderFill) {
	p.RemainingQuantity -= fill.Quantity
	p.RealizedQuantity += fill.Quantity
	if p.RemainingQuantity <= dustQuantity {
		p.Close()
	}
}

// Close flattens the position.
func (p *Position) Close() {
	p.Status = PositionFlat
	p.EntryPrice = 0
	p.EntryQuantity = 0
	p.EntryTime = time.Time{}
	p.RemainingQuantity = 0
	p.RealizedQuantity = 0
	for i := range p.TriggeredTiers {
		p.TriggeredTiers[i] = false
	}
}

// Quantities below this threshold are treated as fully exited; exchanges
// reject orders this small anyway.
const dustQuantity = 1e-9
