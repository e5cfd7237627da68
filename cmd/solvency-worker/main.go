package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"bilancio/internal/amqp"
	"bilancio/internal/backend"
	"bilancio/internal/config"
	applog "bilancio/internal/log"
	"bilancio/internal/notify"
	"bilancio/internal/services"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: "solvency-worker"})
	slog.SetDefault(logger.Logger)

	logger.Info("Starting solvency-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	var publisher services.AlertPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
	} else {
		logger.Info("AMQP disabled - alerts will not be published")
	}

	mailer := notify.NewSender(cfg, logger)
	if !mailer.Enabled() {
		logger.Info("Email alerts disabled - no SMTP_HOST provided")
	}

	svc := services.NewSolvencyService(result.Store, publisher, mailer, cfg.AlertEmail, cfg.SolvencyHorizonMonths)

	runForecast := func() {
		runCtx, runCancel := context.WithTimeout(ctx, 5*time.Minute)
		defer runCancel()

		alerts, err := svc.RunOnce(runCtx, time.Now())
		if err != nil {
			logger.Error("Solvency run failed", "error", err)
			return
		}
		logger.Info("Solvency run completed", "alerts", alerts, "horizon_months", cfg.SolvencyHorizonMonths)
	}

	// One pass at startup so a restart never skips a day.
	runForecast()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SolvencyCron, runForecast); err != nil {
		logger.Error("Invalid solvency cron expression", "error", err, "cron", cfg.SolvencyCron)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("Solvency schedule active", "cron", cfg.SolvencyCron)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	cancel()
	logger.Info("Solvency worker stopped gracefully")
}
