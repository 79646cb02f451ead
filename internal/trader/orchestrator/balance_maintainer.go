package orchestrator

import (
	"context"
	"fmt"

	"golang-crypto-trader/internal/trader/config"
	"golang-crypto-trader/internal/trader/repository"
	"golang-crypto-trader/pkg/logger"
	"golang-crypto-trader/pkg/telegram"

	"github.com/robfig/cron/v3"
)

// BalanceMaintainer keeps the reserve-currency balance (used for exchange
// fees) above a configured minimum by periodically buying it with quote
// currency. It runs independently of the trading workers and its failures
// never propagate to them.
type BalanceMaintainer struct {
	cfg        config.BalanceMaintainer
	marketData repository.MarketDataRepository
	orders     repository.OrderRepository
	notifier   telegram.Notifier
	logger     *logger.Logger
	cron       *cron.Cron
}

// NewBalanceMaintainer creates the maintainer.
func NewBalanceMaintainer(
	cfg config.BalanceMaintainer,
	marketData repository.MarketDataRepository,
	orders repository.OrderRepository,
	notifier telegram.Notifier,
	log *logger.Logger,
) *BalanceMaintainer {
	return &BalanceMaintainer{
		cfg:        cfg,
		marketData: marketData,
		orders:     orders,
		notifier:   notifier,
		logger:     log,
	}
}

// Start schedules the maintenance check on its fixed interval.
func (b *BalanceMaintainer) Start(ctx context.Context) error {
	b.cron = cron.New()
	_, err := b.cron.AddFunc(fmt.Sprintf("@every %s", b.cfg.Interval), func() {
		if err := b.Maintain(ctx); err != nil {
			b.logger.Error("Balance maintenance failed",
				logger.ErrorField(err),
				logger.StringField("reserve_asset", b.cfg.ReserveAsset),
			)
			if b.notifier != nil {
				if sendErr := b.notifier.SendMessage(telegram.FormatBalanceError(b.cfg.ReserveAsset, err)); sendErr != nil {
					b.logger.Error("Failed to send balance maintainer alert", logger.ErrorField(sendErr))
				}
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule balance maintainer: %w", err)
	}
	b.cron.Start()
	b.logger.Info("Balance maintainer started",
		logger.StringField("reserve_asset", b.cfg.ReserveAsset),
		logger.DurationField("interval", b.cfg.Interval),
	)
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (b *BalanceMaintainer) Stop() {
	if b.cron != nil {
		<-b.cron.Stop().Done()
	}
}

// Maintain runs a single maintenance check: when the reserve balance is
// below the minimum and the quote balance is above its safety floor, it
// buys a fixed fraction of the available quote balance worth of reserve.
func (b *BalanceMaintainer) Maintain(ctx context.Context) error {
	reserveBalance, err := b.marketData.GetBalance(ctx, b.cfg.ReserveAsset)
	if err != nil {
		return fmt.Errorf("get reserve balance: %w", err)
	}
	if reserveBalance >= b.cfg.MinReserveBalance {
		b.logger.Debug("Reserve balance sufficient",
			logger.StringField("reserve_asset", b.cfg.ReserveAsset),
			logger.Float64Field("balance", reserveBalance),
		)
		return nil
	}

	quoteBalance, err := b.marketData.GetBalance(ctx, b.cfg.QuoteAsset)
	if err != nil {
		return fmt.Errorf("get quote balance: %w", err)
	}
	if quoteBalance <= b.cfg.QuoteSafetyFloor {
		b.logger.Warn("Quote balance below safety floor, skipping top-up",
			logger.StringField("quote_asset", b.cfg.QuoteAsset),
			logger.Float64Field("balance", quoteBalance),
			logger.Float64Field("floor", b.cfg.QuoteSafetyFloor),
		)
		return nil
	}

	symbol := b.cfg.ReserveAsset + b.cfg.QuoteAsset
	price, err := b.marketData.GetPrice(ctx, symbol)
	if err != nil {
		return fmt.Errorf("get price for %s: %w", symbol, err)
	}

	amount := quoteBalance * b.cfg.PurchaseFraction
	quantity := amount / price

	fill, err := b.orders.MarketBuy(ctx, symbol, quantity)
	if err != nil {
		return fmt.Errorf("market buy %s: %w", symbol, err)
	}

	b.logger.Info("Reserve balance topped up",
		logger.StringField("reserve_asset", b.cfg.ReserveAsset),
		logger.Float64Field("quantity", fill.Quantity),
		logger.Float64Field("amount", amount),
		logger.Float64Field("price", fill.Price),
	)

	if b.notifier != nil {
		message := telegram.FormatBalanceTopUp(b.cfg.ReserveAsset, b.cfg.QuoteAsset, fill.Quantity, amount)
		if err := b.notifier.SendMessage(message); err != nil {
			b.logger.Error("Failed to send top-up notification", logger.ErrorField(err))
		}
	}

	return nil
}
