package models

import (
	"time"

	"treasury-sweeper/internal/lamports"
)

// Config represents the daemon configuration, loaded once at startup from
// a TOML file and immutable afterwards. Optional fields are pointers so the
// loader can tell "absent" from "zero" before filling defaults.
type Config struct {
	// Path to the Solana keypair file for the sender account. The account
	// whose balance is watched and whose excess is swept.
	SenderKeypair string `toml:"sender_keypair"`

	// Base58 public key of the receiver account. All excess above the
	// threshold is transferred to this address.
	ReceiverPubkey string `toml:"receiver_pubkey"`

	// Reserve threshold in SOL. The sender keeps this much; only the
	// amount above it is eligible for transfer.
	SolThreshold *float64 `toml:"sol_threshold"`

	// How often the balance is checked, in seconds.
	PollIntervalSeconds *uint64 `toml:"poll_interval_seconds"`

	// Solana RPC endpoint used for balance checks, blockhash queries, and
	// transaction submission.
	RpcProvider string `toml:"rpc_provider"`

	// Optional Slack webhook URL. Empty means no notifications.
	SlackWebhook string `toml:"slack_webhook"`
}

// ThresholdLamports returns the reserve threshold in lamports. Call only
// after defaults have been filled.
func (c *Config) ThresholdLamports() uint64 {
	return lamports.FromSolFloat(*c.SolThreshold)
}

// PollInterval returns the polling cadence as a duration. Call only after
// defaults have been filled.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(*c.PollIntervalSeconds) * time.Second
}

// Redacted returns a copy safe for logging: the keypair locator is replaced
// with a placeholder so the credential path never appears in log output.
func (c *Config) Redacted() Config {
	redacted := *c
	redacted.SenderKeypair = "[REDACTED]"
	return redacted
}
