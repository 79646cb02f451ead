package telegram

import (
	"errors"
	"testing"
	"time"

	"golang-crypto-trader/internal/entity"

	"github.com/stretchr/testify/assert"
)

func sampleReport() *entity.ExecutionReport {
	position := entity.NewFlatPosition("XRPUSDT", 3)
	position.Open(entity.OrderFill{
		Symbol:    "XRPUSDT",
		Side:      entity.OrderSideBuy,
		Price:     0.50,
		Quantity:  3,
		Timestamp: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
	})

	return &entity.ExecutionReport{
		Cycle:        7,
		StockCode:    "XRP",
		Symbol:       "XRPUSDT",
		ExecutedAt:   time.Date(2026, 8, 31, 10, 5, 0, 0, time.UTC),
		Decision:     entity.Decision{Signal: entity.SignalHold, Strategy: "vortex", Reason: "VI+ 1.1 above VI- 0.9", Indicators: map[string]float64{"vi_plus": 1.1, "vi_minus": 0.9}},
		FinalAction:  "Holding",
		Position:     *position,
		BaseBalance:  3,
		CurrentPrice: 0.505,
		MinSellPrice: 0.50,
		StopLossPrice: 0.49,
		VariationPct: 1.0,
		NextTakeProfit: &entity.TakeProfitTarget{
			Price:     0.505,
			Pct:       1,
			AmountPct: 50,
		},
		NextSleep: 5 * time.Minute,
	}
}

func TestFormatExecutionReport(t *testing.T) {
	text := FormatExecutionReport(sampleReport())

	assert.Contains(t, text, "XRPUSDT")
	assert.Contains(t, text, "*Position:* LONG")
	assert.Contains(t, text, "*Stop loss at:* 0.490000")
	assert.Contains(t, text, "*Min sell price:* 0.500000")
	assert.Contains(t, text, "*Strategy:* vortex")
	assert.Contains(t, text, "*vi_minus:* 0.9000")
	assert.Contains(t, text, "*vi_plus:* 1.1000")

	// Trailer carries the cycle counter and the sleep in minutes.
	assert.Contains(t, text, "^ [XRPUSDT][7] time_to_sleep = 5.00 min")
}

func TestFormatExecutionReportFlat(t *testing.T) {
	report := sampleReport()
	report.Position = *entity.NewFlatPosition("XRPUSDT", 3)
	report.NextTakeProfit = nil

	text := FormatExecutionReport(report)
	assert.Contains(t, text, "*Position:* FLAT")
	assert.NotContains(t, text, "Stop loss at")
	assert.NotContains(t, text, "Next take profit")
}

func TestFormatCycleError(t *testing.T) {
	text := FormatCycleError("SOLUSDT", 3, errors.New("get candles: timeout"))
	assert.Contains(t, text, "Trader error")
	assert.Contains(t, text, "[SOLUSDT][3]")
	assert.Contains(t, text, "get candles: timeout")
}

func TestFormatBalanceTopUp(t *testing.T) {
	text := FormatBalanceTopUp("BNB", "USDT", 2.5, 25)
	assert.Contains(t, text, "bought 2.500000 BNB")
	assert.Contains(t, text, "25.0000 USDT")
}
