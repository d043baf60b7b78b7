package common

import (
	"log"
	"strings"

	"treasury-sweeper/internal/ledger"
	"treasury-sweeper/internal/models"
	"treasury-sweeper/internal/notify"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from a .env file if one exists.
// Environment variables can also be set via shell export, systemd, etc.
func init() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment variables from .env file")
	}
}

// Services bundles the collaborators the sweep loop depends on.
type Services struct {
	Gateway  ledger.Gateway
	Signer   ledger.Signer
	Notifier notify.Notifier
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices loads the signing credential and builds the RPC gateway
// and notifier from the loaded configuration.
func InitializeServices(cfg *models.Config) (*Services, error) {
	zap.L().Info("Loading sender keypair")
	signer, err := ledger.LoadKeypairSigner(cfg.SenderKeypair)
	if err != nil {
		return nil, err
	}
	zap.L().Info("Loaded sender keypair", zap.String("pubkey", signer.PublicKey().String()))

	return &Services{
		Gateway:  ledger.NewClient(cfg.RpcProvider),
		Signer:   signer,
		Notifier: notify.NewService(cfg.SlackWebhook),
	}, nil
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
