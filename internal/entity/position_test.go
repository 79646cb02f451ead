package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func buyFill(price, quantity float64) OrderFill {
	return OrderFill{
		Symbol:    "XRPUSDT",
		Side:      OrderSideBuy,
		Price:     price,
		Quantity:  quantity,
		Timestamp: time.Now(),
	}
}

func sellFill(price, quantity float64) OrderFill {
	f := buyFill(price, quantity)
	f.Side = OrderSideSell
	return f
}

func TestPositionOpenResetsTiers(t *testing.T) {
	p := NewFlatPosition("XRPUSDT", 3)
	p.TriggeredTiers[0] = true
	p.TriggeredTiers[2] = true

	p.Open(buyFill(0.5, 3))

	assert.True(t, p.IsLong())
	assert.Equal(t, 0.5, p.EntryPrice)
	assert.Equal(t, 3.0, p.EntryQuantity)
	assert.Equal(t, 3.0, p.RemainingQuantity)
	assert.Equal(t, []bool{false, false, false}, p.TriggeredTiers)
}

func TestPositionReduce(t *testing.T) {
	p := NewFlatPosition("XRPUSDT", 3)
	p.Open(buyFill(0.5, 10))

	p.Reduce(sellFill(0.51, 4))
	assert.True(t, p.IsLong())
	assert.InDelta(t, 6.0, p.RemainingQuantity, 1e-12)
	assert.InDelta(t, 4.0, p.RealizedQuantity, 1e-12)

	p.Reduce(sellFill(0.52, 6))
	assert.False(t, p.IsLong())
	assert.Equal(t, 0.0, p.RemainingQuantity)
	assert.Equal(t, 0.0, p.EntryPrice)
}

func TestPositionReduceFlattensDust(t *testing.T) {
	p := NewFlatPosition("XRPUSDT", 3)
	p.Open(buyFill(0.5, 10))

	// A fill that leaves less than dust behind closes the position.
	p.Reduce(sellFill(0.51, 10-1e-10))
	assert.False(t, p.IsLong())
}
