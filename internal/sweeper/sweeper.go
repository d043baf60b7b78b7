// Package sweeper runs the treasury sweep control loop: sample the sender
// balance on a fixed cadence, and whenever it exceeds the reserve threshold,
// move the excess to the receiver and notify the operator channel.
//
// The loop is stateless on purpose. Nothing persists between cycles; each
// cycle recomputes the excess from a fresh balance read, so an abandoned
// attempt is simply retried from current chain state on the next tick and a
// restart needs no recovery.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"treasury-sweeper/internal/lamports"
	"treasury-sweeper/internal/ledger"
	"treasury-sweeper/internal/models"
	"treasury-sweeper/internal/notify"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config contains the collaborators and settings for a Sweeper.
type Config struct {
	Gateway  ledger.Gateway
	Signer   ledger.Signer
	Notifier notify.Notifier

	Receiver          solana.PublicKey
	ThresholdLamports uint64
	PollInterval      time.Duration

	// DryRun evaluates every cycle normally but stops short of
	// broadcasting the transaction.
	DryRun bool
}

// Sweeper watches one sender account and sweeps excess balance above the
// reserve threshold to the receiver.
type Sweeper struct {
	gateway  ledger.Gateway
	signer   ledger.Signer
	notifier notify.Notifier

	sender       solana.PublicKey
	receiver     solana.PublicKey
	threshold    uint64
	pollInterval time.Duration
	dryRun       bool

	stopChan chan struct{}
	doneChan chan struct{}
}

func New(cfg Config) *Sweeper {
	return &Sweeper{
		gateway:      cfg.Gateway,
		signer:       cfg.Signer,
		notifier:     cfg.Notifier,
		sender:       cfg.Signer.PublicKey(),
		receiver:     cfg.Receiver,
		threshold:    cfg.ThresholdLamports,
		pollInterval: cfg.PollInterval,
		dryRun:       cfg.DryRun,
	}
}

// Start launches the sweep loop. The first balance check runs one full
// poll interval after startup.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", s.pollInterval)
	}

	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})

	zap.L().Info("Starting sweep loop",
		zap.String("sender", s.sender.String()),
		zap.String("receiver", s.receiver.String()),
		zap.Uint64("threshold_lamports", s.threshold),
		zap.String("threshold_sol", lamports.ToSol(s.threshold).String()),
		zap.Duration("poll_interval", s.pollInterval),
		zap.Bool("dry_run", s.dryRun))

	go s.pollLoop(ctx)
	return nil
}

// Stop signals the loop and waits for the in-flight cycle, if any, to end.
func (s *Sweeper) Stop() {
	zap.L().Info("Stopping sweep loop")
	close(s.stopChan)
	<-s.doneChan
	zap.L().Info("Sweep loop stopped")
}

func (s *Sweeper) pollLoop(ctx context.Context) {
	defer close(s.doneChan)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runCycle(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// runCycle performs one sample-decide-act pass. Every failure ends the
// cycle early with a log line; nothing propagates, so a bad cycle never
// takes the loop down with it.
func (s *Sweeper) runCycle(ctx context.Context) {
	balance, err := s.gateway.GetBalance(ctx, s.sender)
	if err != nil {
		zap.L().Warn("Failed to get balance; will retry next cycle", zap.Error(err))
		return
	}
	zap.L().Info("Balance check",
		zap.Uint64("lamports", balance),
		zap.String("sol", lamports.ToSol(balance).String()))

	if balance <= s.threshold {
		return
	}

	excess := balance - s.threshold
	attemptId := uuid.New().String()
	zap.L().Info("Excess detected; preparing transfer",
		zap.String("attempt_id", attemptId),
		zap.Uint64("excess_lamports", excess),
		zap.String("excess_sol", lamports.ToSol(excess).String()))

	instruction := s.gateway.BuildTransfer(s.sender, s.receiver, excess)

	blockhash, err := s.gateway.LatestBlockhash(ctx)
	if err != nil {
		zap.L().Error("Failed to get recent blockhash",
			zap.String("attempt_id", attemptId),
			zap.Error(err))
		return
	}

	if s.dryRun {
		zap.L().Info("Dry run: transfer not broadcast",
			zap.String("attempt_id", attemptId),
			zap.Uint64("excess_lamports", excess),
			zap.String("receiver", s.receiver.String()))
		return
	}

	sig, err := s.gateway.SignAndBroadcast(ctx, instruction, s.signer, blockhash)
	if err != nil {
		// The excess stays on the sender and is recomputed from a
		// fresh balance read next cycle, so an abandoned attempt can
		// never double-spend.
		zap.L().Error("Failed to send transaction",
			zap.String("attempt_id", attemptId),
			zap.Error(err))
		return
	}

	receipt := models.TransferReceipt{
		AttemptId: attemptId,
		Lamports:  excess,
		Sender:    s.sender.String(),
		Receiver:  s.receiver.String(),
		Signature: sig.String(),
	}
	zap.L().Info("Transfer confirmed",
		zap.String("attempt_id", attemptId),
		zap.String("signature", receipt.Signature),
		zap.String("excess_sol", lamports.ToSol(excess).String()))

	s.notifyTransfer(ctx, receipt)
}

// notifyTransfer posts the success message. Notification failure never
// reclassifies a confirmed transfer; it is logged and forgotten.
func (s *Sweeper) notifyTransfer(ctx context.Context, receipt models.TransferReceipt) {
	if !s.notifier.Enabled() {
		return
	}
	if err := s.notifier.Notify(ctx, receipt.NotificationText()); err != nil {
		zap.L().Warn("Slack notification failed",
			zap.String("attempt_id", receipt.AttemptId),
			zap.Error(err))
		return
	}
	zap.L().Info("Slack notification sent", zap.String("attempt_id", receipt.AttemptId))
}
