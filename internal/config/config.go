package config

import (
	"fmt"
	"os"

	"treasury-sweeper/internal/models"

	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultPath is used when no --config flag is given.
	DefaultPath = "/etc/sweeperd/config.toml"

	// DefaultSolThreshold keeps roughly one week of vote-fee float on the
	// sender account.
	DefaultSolThreshold = 7.0

	// DefaultPollIntervalSeconds checks the balance every four hours. At
	// 5000 lamports per transfer that caps fee overhead near 0.0009 SOL
	// per month.
	DefaultPollIntervalSeconds uint64 = 14_400
)

// Load reads the TOML config file at path, applies environment overrides,
// fills defaults for the optional fields, and validates required fields.
func Load(path string) (*models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg models.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	fillDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides lets deploy environments point at a different RPC node
// or Slack channel without editing the config file.
func applyEnvOverrides(cfg *models.Config) {
	cfg.RpcProvider = getEnvString("SWEEPER_RPC_PROVIDER", cfg.RpcProvider)
	cfg.SlackWebhook = getEnvString("SWEEPER_SLACK_WEBHOOK", cfg.SlackWebhook)
}

func fillDefaults(cfg *models.Config) {
	if cfg.SolThreshold == nil {
		threshold := DefaultSolThreshold
		cfg.SolThreshold = &threshold
	}
	if cfg.PollIntervalSeconds == nil {
		interval := DefaultPollIntervalSeconds
		cfg.PollIntervalSeconds = &interval
	}
}

func validate(cfg *models.Config) error {
	if cfg.SenderKeypair == "" {
		return fmt.Errorf("sender_keypair is required")
	}
	if cfg.ReceiverPubkey == "" {
		return fmt.Errorf("receiver_pubkey is required")
	}
	if cfg.RpcProvider == "" {
		return fmt.Errorf("rpc_provider is required")
	}
	if *cfg.SolThreshold < 0 {
		return fmt.Errorf("sol_threshold cannot be negative, got %v", *cfg.SolThreshold)
	}
	if *cfg.PollIntervalSeconds == 0 {
		return fmt.Errorf("poll_interval_seconds must be positive")
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
