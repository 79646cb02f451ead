package telegram

import (
	"fmt"
	"sort"
	"strings"

	"golang-crypto-trader/internal/entity"
	"golang-crypto-trader/pkg/utils"
)

// FormatExecutionReport formats a trading cycle report into a Markdown
// string for Telegram.
func FormatExecutionReport(r *entity.ExecutionReport) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("🟢 *Executed %s*\n\n", utils.FormatEventTime(r.ExecutedAt)))
	builder.WriteString(fmt.Sprintf("📈 *- - - - - %s - - - - -*\n\n", r.Symbol))

	// Position details
	if r.Position.IsLong() {
		builder.WriteString("💼 *Position:* LONG\n")
		builder.WriteString(fmt.Sprintf("🛒 *Entry:* %s | price %.6f | qty %.6f\n",
			utils.FormatEventTime(r.Position.EntryTime), r.Position.EntryPrice, r.Position.EntryQuantity))
		builder.WriteString(fmt.Sprintf("📦 *Remaining qty:* %.6f\n", r.Position.RemainingQuantity))
	} else {
		builder.WriteString("💼 *Position:* FLAT\n")
	}
	builder.WriteString(fmt.Sprintf("💰 *Balance:* %.4f (%s)\n\n", r.BaseBalance, r.StockCode))

	builder.WriteString(fmt.Sprintf("💵 *Current price:* %.6f\n", r.CurrentPrice))
	if r.Position.IsLong() {
		builder.WriteString(fmt.Sprintf("🔻 *Min sell price:* %.6f\n", r.MinSellPrice))
		builder.WriteString(fmt.Sprintf("🛑 *Stop loss at:* %.6f\n", r.StopLossPrice))
	}
	builder.WriteString(fmt.Sprintf("📉 *Variation:* %+.2f%%\n", r.VariationPct))
	if r.NextTakeProfit != nil {
		builder.WriteString(fmt.Sprintf("🎯 *Next take profit:* %.6f (+%.2f%%, sell %.0f%%)\n",
			r.NextTakeProfit.Price, r.NextTakeProfit.Pct, r.NextTakeProfit.AmountPct))
	}
	builder.WriteString("\n")

	builder.WriteString(fmt.Sprintf("📊 *Strategy:* %s%s\n", r.Decision.Strategy, formatIndicators(r.Decision.Indicators)))
	builder.WriteString(fmt.Sprintf("%s *Decision:* %s — %s\n", signalIcon(r.Decision.Signal), r.Decision.Signal, r.Decision.Reason))
	builder.WriteString(fmt.Sprintf("🏁 *Final action:* %s\n\n", r.FinalAction))

	builder.WriteString(fmt.Sprintf("^ [%s][%d] time_to_sleep = %.2f min\n",
		r.Symbol, r.Cycle, r.NextSleep.Minutes()))

	return builder.String()
}

// FormatCycleError formats a per-cycle worker error for Telegram.
func FormatCycleError(symbol string, cycle int, err error) string {
	return fmt.Sprintf("🔴 *Trader error* [%s][%d]\n`%v`", symbol, cycle, err)
}

// FormatBalanceTopUp formats a reserve balance purchase notification.
func FormatBalanceTopUp(reserveAsset, quoteAsset string, quantity, amount float64) string {
	return fmt.Sprintf("🪙 *Reserve top-up:* bought %.6f %s for %.4f %s",
		quantity, reserveAsset, amount, quoteAsset)
}

// FormatBalanceError formats a balance maintainer failure for Telegram.
func FormatBalanceError(reserveAsset string, err error) string {
	return fmt.Sprintf("🔴 *Balance maintainer error* [%s]\n`%v`", reserveAsset, err)
}

func formatIndicators(indicators map[string]float64) string {
	if len(indicators) == 0 {
		return ""
	}

	keys := make([]string, 0, len(indicators))
	for k := range indicators {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for _, k := range keys {
		builder.WriteString(fmt.Sprintf(" | *%s:* %.4f", k, indicators[k]))
	}
	return builder.String()
}

func signalIcon(signal entity.Signal) string {
	switch signal {
	case entity.SignalBuy:
		return "🟢"
	case entity.SignalSell:
		return "🔴"
	default:
		return "🟡"
	}
}
