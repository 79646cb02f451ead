package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-crypto-trader/internal/trader/config"
	"golang-crypto-trader/internal/trader/engine"
	"golang-crypto-trader/internal/trader/orchestrator"
	"golang-crypto-trader/internal/trader/repository"
	"golang-crypto-trader/pkg/logger"
	"golang-crypto-trader/pkg/postgres"
	redisPkg "golang-crypto-trader/pkg/redis"
	"golang-crypto-trader/pkg/telegram"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the trading service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration; invalid risk parameters are fatal before any
	// worker starts.
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Trading Service", zap.String("name", cfg.App.Name))

	// Initialize database for the trade journal
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis for position snapshots
	redisCfg := redisPkg.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redisPkg.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	binanceRepo := repository.NewBinanceRepository(cfg.Binance, appLogger)
	positionRepo := repository.NewPositionRepository(redisClient)
	tradeHistoryRepo, err := repository.NewTradeHistoryRepository(db.DB)
	if err != nil {
		appLogger.Fatal("Failed to initialize trade history repository", zap.Error(err))
	}

	telegramNotifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
	}

	// Build one engine per configured asset
	engines := make([]*engine.Engine, 0, len(cfg.Trading.Assets))
	for _, asset := range cfg.Trading.Assets {
		eng, err := engine.New(asset, binanceRepo, binanceRepo, positionRepo, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to build trading engine",
				zap.String("symbol", asset.Symbol), zap.Error(err))
		}
		engines = append(engines, eng)
	}

	orch := orchestrator.New(cfg, engines, telegramNotifier, tradeHistoryRepo, appLogger)
	orch.Start(ctx)

	var balanceMaintainer *orchestrator.BalanceMaintainer
	if cfg.BalanceMaintainer.Enabled {
		balanceMaintainer = orchestrator.NewBalanceMaintainer(
			cfg.BalanceMaintainer, binanceRepo, binanceRepo, telegramNotifier, appLogger)
		if err := balanceMaintainer.Start(ctx); err != nil {
			appLogger.Fatal("Failed to start balance maintainer", zap.Error(err))
		}
	}

	appLogger.Info("Trading service started. Workers running...")

	// Wait for interrupt signal to gracefully shut down the service
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down trading service...")
	cancel()
	if balanceMaintainer != nil {
		balanceMaintainer.Stop()
	}
	orch.Stop()
	appLogger.Info("Trading service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "trader"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing trader CLI: %s\n", err)
		os.Exit(1)
	}
}
