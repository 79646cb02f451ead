package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-crypto-trader/internal/entity"
	"golang-crypto-trader/internal/trader/config"
	"golang-crypto-trader/internal/trader/repository"
	"golang-crypto-trader/internal/trader/risk"
	"golang-crypto-trader/internal/trader/strategy"
	"golang-crypto-trader/pkg/logger"
)

// Engine is the per-asset trading state machine. It owns the asset's
// Position exclusively and advances it one cycle at a time: market data,
// risk checks, strategy decision, order placement, report.
type Engine struct {
	asset      config.Asset
	quoteAsset string

	marketData repository.MarketDataRepository
	orders     repository.OrderRepository
	positions  repository.PositionRepository

	riskManager      *risk.Manager
	mainStrategy     strategy.TradingStrategy
	fallbackStrategy strategy.TradingStrategy
	lookback         int

	logger   *logger.Logger
	position *entity.Position
	cycle    int
}

// New creates a trading engine for one asset. The asset configuration must
// already be validated.
func New(
	asset config.Asset,
	marketData repository.MarketDataRepository,
	orders repository.OrderRepository,
	positions repository.PositionRepository,
	log *logger.Logger,
) (*Engine, error) {
	mainStrategy, err := strategy.Build(asset.MainStrategy)
	if err != nil {
		return nil, fmt.Errorf("main strategy: %w", err)
	}

	var fallbackStrategy strategy.TradingStrategy
	if asset.FallbackEnabled {
		fallbackStrategy, err = strategy.Build(asset.FallbackStrategy)
		if err != nil {
			return nil, fmt.Errorf("fallback strategy: %w", err)
		}
	}

	lookback := mainStrategy.Lookback()
	if fallbackStrategy != nil && fallbackStrategy.Lookback() > lookback {
		lookback = fallbackStrategy.Lookback()
	}

	quoteAsset := "USDT"
	if strings.HasPrefix(asset.Symbol, asset.StockCode) && len(asset.Symbol) > len(asset.StockCode) {
		quoteAsset = asset.Symbol[len(asset.StockCode):]
	}

	return &Engine{
		asset:            asset,
		quoteAsset:       quoteAsset,
		marketData:       marketData,
		orders:           orders,
		positions:        positions,
		riskManager:      risk.NewManager(asset),
		mainStrategy:     mainStrategy,
		fallbackStrategy: fallbackStrategy,
		lookback:         lookback,
		logger:           log,
		position:         entity.NewFlatPosition(asset.Symbol, len(asset.TakeProfitPcts)),
	}, nil
}

// Position returns the engine's current position.
func (e *Engine) Position() *entity.Position {
	return e.position
}

// Restore adopts a persisted position snapshot, if one exists, so an open
// position survives a process restart.
func (e *Engine) Restore(ctx context.Context) error {
	stored, err := e.positions.Load(ctx, e.asset.Symbol)
	if err != nil {
		return err
	}
	if stored == nil || !stored.IsLong() {
		return nil
	}

	// Tier configuration may have changed between restarts; keep the flags
	// that still map to a configured tier.
	flags := make([]bool, len(e.asset.TakeProfitPcts))
	copy(flags, stored.TriggeredTiers)
	stored.TriggeredTiers = flags

	e.position = stored
	e.logger.Info("Restored open position",
		logger.StringField("symbol", e.asset.Symbol),
		logger.Float64Field("entry_price", stored.EntryPrice),
		logger.Float64Field("remaining_qty", stored.RemainingQuantity),
	)
	return nil
}

// Cycle runs one full trading cycle. A returned error means a transient
// failure: no position state was changed and the caller should treat the
// cycle as a Hold and retry on the next schedule.
func (e *Engine) Cycle(ctx context.Context) (*entity.ExecutionReport, error) {
	e.cycle++

	candles, err := e.marketData.GetCandles(ctx, e.asset.Symbol, e.asset.CandleInterval, e.lookback)
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}
	if len(candles) == 0 {
		return nil, &repository.APIError{Op: "klines", Err: errors.New("empty candle window")}
	}

	price, err := e.marketData.GetPrice(ctx, e.asset.Symbol)
	if err != nil {
		return nil, fmt.Errorf("get price: %w", err)
	}

	baseBalance, err := e.marketData.GetBalance(ctx, e.asset.StockCode)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	decision := e.evaluateStrategies(candles)

	finalAction, fill, err := e.apply(ctx, decision, price)
	if err != nil {
		return nil, err
	}

	if fill != nil {
		if err := e.positions.Save(ctx, e.position); err != nil {
			e.logger.Error("Failed to persist position snapshot",
				logger.ErrorField(err), logger.StringField("symbol", e.asset.Symbol))
		}
	}

	return e.buildReport(candles, price, baseBalance, decision, finalAction, fill), nil
}

// evaluateStrategies runs the main strategy and, on evaluation failure only,
// the fallback. Hold is a valid decision, never a failure. When both fail
// the cycle degrades to Hold with the failure as the reason.
func (e *Engine) evaluateStrategies(candles []entity.Candle) entity.Decision {
	decision, err := e.mainStrategy.Evaluate(candles)
	if err == nil {
		return decision
	}

	e.logger.Warn("Main strategy evaluation failed",
		logger.ErrorField(err),
		logger.StringField("symbol", e.asset.Symbol),
		logger.StringField("strategy", e.mainStrategy.Name()),
	)

	if e.fallbackStrategy == nil {
		return entity.HoldDecision(e.mainStrategy.Name(), fmt.Sprintf("evaluation failed: %v", err))
	}

	decision, fallbackErr := e.fallbackStrategy.Evaluate(candles)
	if fallbackErr == nil {
		decision.Reason = fmt.Sprintf("fallback after main failure: %s", decision.Reason)
		return decision
	}

	e.logger.Error("Fallback strategy evaluation failed",
		logger.ErrorField(fallbackErr),
		logger.StringField("symbol", e.asset.Symbol),
		logger.StringField("strategy", e.fallbackStrategy.Name()),
	)

	return entity.HoldDecision(e.fallbackStrategy.Name(),
		fmt.Sprintf("main and fallback evaluation failed: %v; %v", err, fallbackErr))
}

// apply executes the cycle's state transition. Risk controls dominate the
// strategy signal: stop-loss first, then take-profit tiers, then the
// strategy's own decision.
func (e *Engine) apply(ctx context.Context, decision entity.Decision, price float64) (string, *entity.OrderFill, error) {
	action := e.riskManager.Assess(price, e.position)

	switch action.Type {
	case risk.ActionForceExit:
		return e.forceExit(ctx, price)
	case risk.ActionPartialExit:
		return e.partialExit(ctx, action)
	}

	switch {
	case decision.Signal == entity.SignalBuy && !e.position.IsLong():
		return e.enter(ctx, price)
	case decision.Signal == entity.SignalSell && e.position.IsLong():
		return e.strategyExit(ctx, price)
	case decision.Signal == entity.SignalBuy && e.position.IsLong():
		return "Holding existing position", nil, nil
	case decision.Signal == entity.SignalSell && !e.position.IsLong():
		return "No position to sell", nil, nil
	default:
		return "Holding", nil, nil
	}
}

func (e *Engine) forceExit(ctx context.Context, price float64) (string, *entity.OrderFill, error) {
	quantity := e.position.RemainingQuantity
	fill, err := e.orders.MarketSell(ctx, e.asset.Symbol, quantity)
	if err != nil {
		return "", nil, fmt.Errorf("stop loss sell: %w", err)
	}

	e.warnOnFillMismatch(quantity, fill)
	e.position.Reduce(fill)

	e.logger.Info("Stop loss executed",
		logger.StringField("symbol", e.asset.Symbol),
		logger.Float64Field("price", fill.Price),
		logger.Float64Field("quantity", fill.Quantity),
	)
	return fmt.Sprintf("Stop loss triggered at %.6f, sold %.6f", price, fill.Quantity), &fill, nil
}

func (e *Engine) partialExit(ctx context.Context, action risk.Action) (string, *entity.OrderFill, error) {
	quantity := e.position.RemainingQuantity * action.AmountPct / 100
	fill, err := e.orders.MarketSell(ctx, e.asset.Symbol, quantity)
	if err != nil {
		return "", nil, fmt.Errorf("take profit sell: %w", err)
	}

	e.warnOnFillMismatch(quantity, fill)
	e.position.TriggeredTiers[action.Tier] = true
	e.position.Reduce(fill)

	e.logger.Info("Take profit tier executed",
		logger.StringField("symbol", e.asset.Symbol),
		logger.IntField("tier", action.Tier),
		logger.Float64Field("price", fill.Price),
		logger.Float64Field("quantity", fill.Quantity),
	)

	if !e.position.IsLong() {
		return fmt.Sprintf("Take profit tier %d exhausted the position", action.Tier+1), &fill, nil
	}
	return fmt.Sprintf("Take profit tier %d sold %.6f, remaining %.6f",
		action.Tier+1, fill.Quantity, e.position.RemainingQuantity), &fill, nil
}

func (e *Engine) enter(ctx context.Context, price float64) (string, *entity.OrderFill, error) {
	quoteBalance, err := e.marketData.GetBalance(ctx, e.quoteAsset)
	if err != nil {
		return "", nil, fmt.Errorf("get quote balance: %w", err)
	}

	quantity := e.asset.TradedQuantity
	if quantity <= 0 {
		quantity = quoteBalance * e.asset.TradedPercentage / 100 / price
	}
	if quoteBalance < quantity*price {
		e.logger.Warn("Insufficient quote balance for entry",
			logger.StringField("symbol", e.asset.Symbol),
			logger.Float64Field("balance", quoteBalance),
			logger.Float64Field("required", quantity*price),
		)
		return fmt.Sprintf("Buy skipped: insufficient %s balance (%.4f < %.4f)",
			e.quoteAsset, quoteBalance, quantity*price), nil, nil
	}

	fill, err := e.orders.MarketBuy(ctx, e.asset.Symbol, quantity)
	if errors.Is(err, repository.ErrInsufficientFunds) {
		return fmt.Sprintf("Buy rejected by exchange: insufficient funds for %.6f %s",
			quantity, e.asset.StockCode), nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("market buy: %w", err)
	}

	e.warnOnFillMismatch(quantity, fill)
	e.position.Open(fill)

	e.logger.Info("Entered position",
		logger.StringField("symbol", e.asset.Symbol),
		logger.Float64Field("price", fill.Price),
		logger.Float64Field("quantity", fill.Quantity),
	)
	return fmt.Sprintf("Bought %.6f at %.6f", fill.Quantity, fill.Price), &fill, nil
}

func (e *Engine) strategyExit(ctx context.Context, price float64) (string, *entity.OrderFill, error) {
	minSellPrice := e.riskManager.MinSellPrice(e.position)
	if price < minSellPrice {
		return fmt.Sprintf("Sell suppressed: price %.6f below acceptable-loss floor %.6f",
			price, minSellPrice), nil, nil
	}

	quantity := e.position.RemainingQuantity
	fill, err := e.orders.MarketSell(ctx, e.asset.Symbol, quantity)
	if err != nil {
		return "", nil, fmt.Errorf("strategy sell: %w", err)
	}

	e.warnOnFillMismatch(quantity, fill)
	e.position.Reduce(fill)

	e.logger.Info("Strategy exit executed",
		logger.StringField("symbol", e.asset.Symbol),
		logger.Float64Field("price", fill.Price),
		logger.Float64Field("quantity", fill.Quantity),
	)
	return fmt.Sprintf("Sold %.6f at %.6f on strategy signal", fill.Quantity, fill.Price), &fill, nil
}

func (e *Engine) warnOnFillMismatch(requested float64, fill entity.OrderFill) {
	if fill.Quantity == requested {
		return
	}
	e.logger.Warn("Order fill mismatch, adopting executed quantity",
		logger.StringField("symbol", e.asset.Symbol),
		logger.Float64Field("requested", requested),
		logger.Float64Field("executed", fill.Quantity),
	)
}

func (e *Engine) buildReport(
	candles []entity.Candle,
	price, baseBalance float64,
	decision entity.Decision,
	finalAction string,
	fill *entity.OrderFill,
) *entity.ExecutionReport {
	nextSleep := e.asset.CycleInterval
	if fill != nil {
		nextSleep = e.asset.PostOrderDelay
	}

	var minSellPrice, stopLossPrice, variationPct float64
	if e.position.IsLong() {
		minSellPrice = e.riskManager.MinSellPrice(e.position)
		stopLossPrice = e.riskManager.StopLossPrice(e.position)
		variationPct = (price - e.position.EntryPrice) / e.position.EntryPrice * 100
	} else if windowOpen := candles[0].Open; windowOpen > 0 {
		variationPct = (price - windowOpen) / windowOpen * 100
	}

	return &entity.ExecutionReport{
		Cycle:          e.cycle,
		StockCode:      e.asset.StockCode,
		Symbol:         e.asset.Symbol,
		ExecutedAt:     time.Now(),
		Decision:       decision,
		FinalAction:    finalAction,
		Position:       *e.position,
		BaseBalance:    baseBalance,
		CurrentPrice:   price,
		MinSellPrice:   minSellPrice,
		StopLossPrice:  stopLossPrice,
		VariationPct:   variationPct,
		NextTakeProfit: e.riskManager.NextTarget(e.position),
		OrderExecuted:  fill != nil,
		Fill:           fill,
		NextSleep:      nextSleep,
	}
}
