// Package ledger wraps the Solana RPC backend behind a small gateway
// interface: balance reads, blockhash freshness, transfer construction, and
// sign/broadcast/confirm. The sweep loop depends only on the interface, so
// tests substitute a fake backend.
package ledger

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Gateway is the surface of the ledger backend the sweep loop consumes.
// Every method may fail; the caller decides whether a failure aborts the
// process or just the current cycle.
type Gateway interface {
	// GetBalance returns the account balance in lamports.
	GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error)

	// LatestBlockhash returns a fresh blockhash. Blockhashes expire server
	// side after a short window, so one is fetched per transfer attempt.
	LatestBlockhash(ctx context.Context) (solana.Hash, error)

	// BuildTransfer constructs a system transfer instruction moving
	// exactly lamports from sender to receiver.
	BuildTransfer(from, to solana.PublicKey, lamports uint64) solana.Instruction

	// SignAndBroadcast assembles a transaction around the instruction,
	// signs it, submits it, and blocks until it is finalized or fails.
	SignAndBroadcast(ctx context.Context, instruction solana.Instruction, signer Signer, blockhash solana.Hash) (solana.Signature, error)
}

// Signer signs transactions on behalf of a single funding account.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(tx *solana.Transaction) error
}
