package risk

import (
	"testing"
	"time"

	"golang-crypto-trader/internal/entity"
	"golang-crypto-trader/internal/trader/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAsset() config.Asset {
	return config.Asset{
		StockCode:            "ADA",
		Symbol:               "ADAUSDT",
		TradedQuantity:       10,
		CandleInterval:       "5m",
		CycleInterval:        5 * time.Minute,
		PostOrderDelay:       5 * time.Minute,
		StopLossPct:          2.0,
		TakeProfitPcts:       []float64{1, 2, 4},
		TakeProfitAmountPcts: []float64{50, 50, 100},
		MainStrategy:         config.Strategy{Name: "vortex"},
	}
}

func newLongPosition(entryPrice, quantity float64, tierCount int) *entity.Position {
	p := entity.NewFlatPosition("ADAUSDT", tierCount)
	p.Open(entity.OrderFill{
		Symbol:    "ADAUSDT",
		Side:      entity.OrderSideBuy,
		Price:     entryPrice,
		Quantity:  quantity,
		Timestamp: time.Now(),
	})
	return p
}

func TestAssessStopLossBoundary(t *testing.T) {
	m := NewManager(newTestAsset())
	p := newLongPosition(100, 10, 3)

	// Entry 100 with 2% stop loss exits at 98.00 exactly, not at 98.01.
	action := m.Assess(98.00, p)
	assert.Equal(t, ActionForceExit, action.Type)

	action = m.Assess(98.01, p)
	assert.NotEqual(t, ActionForceExit, action.Type)
}

func TestAssessStopLossDominatesTiers(t *testing.T) {
	m := NewManager(newTestAsset())
	p := newLongPosition(100, 10, 3)

	// Even with every tier untriggered, a price at the stop loss wins.
	action := m.Assess(97.5, p)
	assert.Equal(t, ActionForceExit, action.Type)
}

func TestAssessFlatPosition(t *testing.T) {
	m := NewManager(newTestAsset())
	p := entity.NewFlatPosition("ADAUSDT", 3)

	action := m.Assess(50, p)
	assert.Equal(t, ActionNone, action.Type)
}

func TestAssessSingleTierPerCycle(t *testing.T) {
	m := NewManager(newTestAsset())
	p := newLongPosition(100, 10, 3)

	// Price jumps past tiers 1 and 2 in one cycle; only tier 1 fires.
	action := m.Assess(103, p)
	require.Equal(t, ActionPartialExit, action.Type)
	assert.Equal(t, 0, action.Tier)
	assert.Equal(t, 50.0, action.AmountPct)

	// Once tier 1 is marked, tier 2 fires on the next cycle.
	p.TriggeredTiers[0] = true
	action = m.Assess(103, p)
	require.Equal(t, ActionPartialExit, action.Type)
	assert.Equal(t, 1, action.Tier)
	assert.Equal(t, 50.0, action.AmountPct)
}

func TestAssessTiersNotSkipped(t *testing.T) {
	m := NewManager(newTestAsset())
	p := newLongPosition(100, 10, 3)

	// Tier 1 below threshold gates tier 2 even though tier 2's threshold
	// would be met after tier 1 triggers.
	p.TriggeredTiers[0] = true
	action := m.Assess(100.5, p)
	assert.Equal(t, ActionNone, action.Type)
}

func TestAssessNoTriggerBetweenThresholds(t *testing.T) {
	m := NewManager(newTestAsset())
	p := newLongPosition(100, 10, 3)

	action := m.Assess(100.99, p)
	assert.Equal(t, ActionNone, action.Type)

	action = m.Assess(101.00, p)
	assert.Equal(t, ActionPartialExit, action.Type)
}

func TestMinSellPrice(t *testing.T) {
	asset := newTestAsset()
	asset.AcceptableLossPct = 1.5
	m := NewManager(asset)
	p := newLongPosition(100, 10, 3)

	assert.InDelta(t, 98.5, m.MinSellPrice(p), 1e-9)

	// Zero acceptable loss keeps the floor at the entry price.
	m = NewManager(newTestAsset())
	assert.InDelta(t, 100.0, m.MinSellPrice(p), 1e-9)
}

func TestNextTarget(t *testing.T) {
	m := NewManager(newTestAsset())
	p := newLongPosition(100, 10, 3)

	target := m.NextTarget(p)
	require.NotNil(t, target)
	assert.InDelta(t, 101.0, target.Price, 1e-9)
	assert.Equal(t, 1.0, target.Pct)
	assert.Equal(t, 50.0, target.AmountPct)

	p.TriggeredTiers[0] = true
	p.TriggeredTiers[1] = true
	target = m.NextTarget(p)
	require.NotNil(t, target)
	assert.InDelta(t, 104.0, target.Price, 1e-9)

	p.TriggeredTiers[2] = true
	assert.Nil(t, m.NextTarget(p))

	assert.Nil(t, m.NextTarget(entity.NewFlatPosition("ADAUSDT", 3)))
}

func TestStopLossDisabledWhenZero(t *testing.T) {
	asset := newTestAsset()
	asset.StopLossPct = 0
	m := NewManager(asset)
	p := newLongPosition(100, 10, 3)

	action := m.Assess(1, p)
	assert.Equal(t, ActionNone, action.Type)
}
