package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"treasury-sweeper/internal/common"
	"treasury-sweeper/internal/config"
	"treasury-sweeper/internal/sweeper"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the TOML config file")
	dryRun := flag.Bool("dry-run", false, "Evaluate sweeps without broadcasting transactions")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	redacted := cfg.Redacted()
	zap.L().Info("Loaded configuration",
		zap.String("config_file", *configPath),
		zap.String("sender_keypair", redacted.SenderKeypair),
		zap.String("receiver_pubkey", redacted.ReceiverPubkey),
		zap.Float64("sol_threshold", *redacted.SolThreshold),
		zap.Uint64("poll_interval_seconds", *redacted.PollIntervalSeconds),
		zap.String("rpc_provider", redacted.RpcProvider),
		zap.String("slack_webhook", redacted.SlackWebhook))

	receiver, err := solana.PublicKeyFromBase58(cfg.ReceiverPubkey)
	if err != nil {
		zap.L().Fatal("Invalid receiver pubkey",
			zap.String("receiver_pubkey", cfg.ReceiverPubkey),
			zap.Error(err))
	}

	services, err := common.InitializeServices(cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sw := sweeper.New(sweeper.Config{
		Gateway:           services.Gateway,
		Signer:            services.Signer,
		Notifier:          services.Notifier,
		Receiver:          receiver,
		ThresholdLamports: cfg.ThresholdLamports(),
		PollInterval:      cfg.PollInterval(),
		DryRun:            *dryRun,
	})

	if err := sw.Start(ctx); err != nil {
		zap.L().Fatal("Failed to start sweep loop", zap.Error(err))
	}
	if *dryRun {
		zap.L().Info("Dry run enabled: transfers will be evaluated but not broadcast")
	}
	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping sweep loop...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		sw.Stop()
		close(done)
	}()

	select {
	case <-done:
		zap.L().Info("Sweep loop stopped gracefully")
	case <-shutdownCtx.Done():
		zap.L().Warn("Forced shutdown after timeout")
	}
}
