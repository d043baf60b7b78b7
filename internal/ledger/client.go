package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Compile-time check: *Client must satisfy Gateway.
var _ Gateway = (*Client)(nil)

// Client implements Gateway over a Solana JSON-RPC endpoint at finalized
// commitment.
type Client struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType

	// Confirmation polling knobs. A finalized commitment usually lands
	// well within a minute; the timeout guards against a dropped
	// transaction whose blockhash has expired.
	confirmTimeout  time.Duration
	confirmInterval time.Duration
}

func NewClient(endpoint string) *Client {
	return &Client{
		rpc:             rpc.New(endpoint),
		commitment:      rpc.CommitmentFinalized,
		confirmTimeout:  90 * time.Second,
		confirmInterval: 3 * time.Second,
	}
}

func (c *Client) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := c.rpc.GetBalance(ctx, account, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("unable to get balance: %w", err)
	}
	return out.Value, nil
}

func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("unable to get latest blockhash: %w", err)
	}
	return out.Value.Blockhash, nil
}

func (c *Client) BuildTransfer(from, to solana.PublicKey, lamports uint64) solana.Instruction {
	return system.NewTransferInstruction(lamports, from, to).Build()
}

func (c *Client) SignAndBroadcast(ctx context.Context, instruction solana.Instruction, signer Signer, blockhash solana.Hash) (solana.Signature, error) {
	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		blockhash,
		solana.TransactionPayer(signer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("building transaction: %w", err)
	}

	if err := signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, err
	}

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sending transaction: %w", err)
	}

	if err := c.awaitFinalized(ctx, sig); err != nil {
		return solana.Signature{}, err
	}
	return sig, nil
}

// awaitFinalized polls signature status until the transaction is finalized,
// fails on chain, or the confirmation timeout elapses.
func (c *Client) awaitFinalized(ctx context.Context, sig solana.Signature) error {
	deadline := time.NewTimer(c.confirmTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(c.confirmInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("transaction %s not finalized within %s", sig, c.confirmTimeout)
		case <-ticker.C:
			out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				zap.L().Debug("Signature status query failed; will poll again",
					zap.String("signature", sig.String()),
					zap.Error(err))
				continue
			}
			if len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on chain: %v", sig, status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
	}
}
