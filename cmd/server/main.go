package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Sammyalhashe/Lotto/internal/api"
	"github.com/Sammyalhashe/Lotto/internal/config"
	"github.com/Sammyalhashe/Lotto/internal/lotto"
	"github.com/Sammyalhashe/Lotto/internal/state"
	"github.com/Sammyalhashe/Lotto/internal/strategy"
)

func main() {
	// .env is optional; deployments usually set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting lottery pool backend")

	// The shared-balance strategy stands in for an external yield protocol.
	// Swapping in a real one only touches this wiring.
	strat := strategy.NewSharedBalance()
	credits := state.NewCredits()
	ledger := lotto.NewLedger(strat, logger)
	engine := lotto.NewEngine(ledger, strat, credits, logger)

	ctx, cancel := context.WithCancel(context.Background())

	var settler *lotto.AutoSettler
	if cfg.AutoSettle {
		settler = lotto.NewAutoSettler(ledger, engine, cfg.AutoSettleInterval, logger)
		settler.Start(ctx)
		logger.Info("auto-settler started", zap.Duration("interval", cfg.AutoSettleInterval))
	}

	server := api.NewServer(cfg, ledger, engine, credits, strat, logger)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		cancel()
		if settler != nil {
			settler.Stop()
		}
		_ = logger.Sync()
		os.Exit(0)
	}()

	if err := server.Start(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// buildLogger builds a production logger at the configured level
func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
