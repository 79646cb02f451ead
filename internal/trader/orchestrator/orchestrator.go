package orchestrator

import (
	"context"
	"sync"
	"time"

	"golang-crypto-trader/internal/entity"
	"golang-crypto-trader/internal/trader/config"
	"golang-crypto-trader/internal/trader/engine"
	"golang-crypto-trader/internal/trader/repository"
	"golang-crypto-trader/pkg/logger"
	"golang-crypto-trader/pkg/telegram"
	"golang-crypto-trader/pkg/utils"
)

// Orchestrator supervises one long-lived worker per traded asset. Workers
// run until shutdown; a failing cycle is reported and the worker continues,
// so one asset's error never stops the others.
type Orchestrator struct {
	cfg          *config.Config
	engines      []*engine.Engine
	notifier     telegram.Notifier
	tradeHistory repository.TradeHistoryRepository
	logger       *logger.Logger

	// exchangeLock serializes exchange-facing cycles across all workers
	// when serialized mode is enabled; nil in parallel mode.
	exchangeLock *sync.Mutex

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates the orchestrator. The engines slice must be ordered like
// cfg.Trading.Assets.
func New(
	cfg *config.Config,
	engines []*engine.Engine,
	notifier telegram.Notifier,
	tradeHistory repository.TradeHistoryRepository,
	log *logger.Logger,
) *Orchestrator {
	o := &Orchestrator{
		cfg:          cfg,
		engines:      engines,
		notifier:     notifier,
		tradeHistory: tradeHistory,
		logger:       log,
		stopChan:     make(chan struct{}),
	}
	if cfg.Trading.Serialized {
		o.exchangeLock = &sync.Mutex{}
	}
	return o
}

// Start launches one worker per asset.
func (o *Orchestrator) Start(ctx context.Context) {
	mode := "parallel"
	if o.exchangeLock != nil {
		mode = "serialized"
	}
	o.logger.Info("Starting trading workers",
		logger.IntField("assets", len(o.engines)),
		logger.StringField("mode", mode),
	)

	for i, eng := range o.engines {
		asset := o.cfg.Trading.Assets[i]
		worker := eng
		o.wg.Add(1)
		utils.GoSafe(o.logger, func() {
			defer o.wg.Done()
			o.runWorker(ctx, worker, asset)
		})
	}
}

// Stop signals all workers and waits for them to drain. An in-flight cycle
// completes before its worker exits.
func (o *Orchestrator) Stop() {
	close(o.stopChan)
	o.wg.Wait()
	o.logger.Info("All trading workers stopped")
}

func (o *Orchestrator) runWorker(ctx context.Context, eng *engine.Engine, asset config.Asset) {
	o.logger.Info("Trading worker started", logger.StringField("symbol", asset.Symbol))

	if err := eng.Restore(ctx); err != nil {
		o.logger.Error("Failed to restore position, starting flat",
			logger.ErrorField(err), logger.StringField("symbol", asset.Symbol))
	}

	cycle := 0
	for {
		select {
		case <-ctx.Done():
			o.logger.Info("Trading worker stopping due to context cancellation",
				logger.StringField("symbol", asset.Symbol))
			return
		case <-o.stopChan:
			o.logger.Info("Trading worker stopping", logger.StringField("symbol", asset.Symbol))
			return
		default:
		}

		cycle++
		sleep := o.executeCycle(ctx, eng, asset, cycle)

		select {
		case <-ctx.Done():
			return
		case <-o.stopChan:
			return
		case <-time.After(sleep):
		}
	}
}

// executeCycle runs one engine cycle inside the error boundary and returns
// the duration to sleep before the next one.
func (o *Orchestrator) executeCycle(ctx context.Context, eng *engine.Engine, asset config.Asset, cycle int) time.Duration {
	if o.exchangeLock != nil {
		o.exchangeLock.Lock()
	}
	report, err := eng.Cycle(ctx)
	if o.exchangeLock != nil {
		o.exchangeLock.Unlock()
	}

	if err != nil {
		o.logger.Error("Trading cycle failed",
			logger.ErrorField(err),
			logger.StringField("symbol", asset.Symbol),
			logger.IntField("cycle", cycle),
		)
		o.notify(telegram.FormatCycleError(asset.Symbol, cycle, err))
		return asset.CycleInterval
	}

	o.journalFill(ctx, report)
	o.notify(telegram.FormatExecutionReport(report))

	o.logger.Info("Trading cycle completed",
		logger.StringField("symbol", asset.Symbol),
		logger.IntField("cycle", cycle),
		logger.StringField("decision", report.Decision.Signal.String()),
		logger.StringField("final_action", report.FinalAction),
		logger.DurationField("next_sleep", report.NextSleep),
	)

	return report.NextSleep
}

func (o *Orchestrator) journalFill(ctx context.Context, report *entity.ExecutionReport) {
	if report.Fill == nil || o.tradeHistory == nil {
		return
	}
	record := &entity.TradeRecord{
		Symbol:     report.Symbol,
		Side:       string(report.Fill.Side),
		Price:      report.Fill.Price,
		Quantity:   report.Fill.Quantity,
		Reason:     report.FinalAction,
		ExecutedAt: report.Fill.Timestamp,
	}
	if err := o.tradeHistory.Create(ctx, record); err != nil {
		o.logger.Error("Failed to journal trade",
			logger.ErrorField(err), logger.StringField("symbol", report.Symbol))
	}
}

// notify delivers a message best-effort: failures are logged and never fail
// the cycle.
func (o *Orchestrator) notify(message string) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.SendMessage(message); err != nil {
		o.logger.Error("Failed to send notification", logger.ErrorField(err))
	}
}
