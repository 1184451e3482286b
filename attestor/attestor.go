package attestor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gsignip/patent-attestation/interfaces"
	"github.com/gsignip/patent-attestation/metrics"
)

// Timeouts bound the suspension points of the pipeline. The anchor timeout
// is long because large documents and slow pinning nodes are expected; the
// ledger timeout is governed by network confirmation latency.
type Timeouts struct {
	Anchor time.Duration
	Ledger time.Duration
}

// DefaultTimeouts returns the production defaults.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Anchor: 5 * time.Minute,
		Ledger: 3 * time.Minute,
	}
}

// Attestor implements interfaces.Registrar.
type Attestor struct {
	resolver interfaces.IdentityResolver
	anchor   interfaces.ContentAnchor
	ledger   interfaces.Ledger
	store    interfaces.AttestationStore
	timeouts Timeouts
	log      *slog.Logger
}

// New creates the orchestrator over the four pipeline components.
func New(resolver interfaces.IdentityResolver, anchor interfaces.ContentAnchor, ledger interfaces.Ledger, store interfaces.AttestationStore, timeouts Timeouts, log *slog.Logger) *Attestor {
	return &Attestor{
		resolver: resolver,
		anchor:   anchor,
		ledger:   ledger,
		store:    store,
		timeouts: timeouts,
		log:      log,
	}
}

// RegisterApplication runs the registration protocol:
//
//  1. resolve or create the registrant's identity
//  2. anchor the supporting document
//  3. map the status code to its label
//  4. submit the ledger transaction
//  5. persist the attestation
//
// Success is reported only after step 5. A step 5 failure is surfaced even
// though the ledger write already succeeded: retrying then produces a
// duplicate on-chain record, never silent data loss. Cancellation is safe up
// to step 4; once the broadcast is dispatched it cannot be retracted.
func (a *Attestor) RegisterApplication(ctx context.Context, req *interfaces.RegisterRequest) (*interfaces.RegisterResult, error) {
	if err := req.Validate(); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	log := a.log.With(
		slog.String("application", req.ApplicationNo),
		slog.String("email", req.Email))

	identity, err := a.resolveIdentity(ctx, req.Email)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("wallet_failed").Inc()
		log.Error("Registration aborted, wallet unavailable", "err", err)
		return nil, fmt.Errorf("%w: %w", interfaces.ErrWalletUnavailable, err)
	}

	// The identity above is retained even if anchoring fails: it is
	// immutable and reusable on retry.
	doc, err := a.anchorDocument(ctx, req.Document, req.FileName)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("anchor_failed").Inc()
		log.Error("Registration aborted, document not anchored", "err", err)
		return nil, fmt.Errorf("%w: %w", interfaces.ErrAnchorUnavailable, err)
	}

	statusLabel := req.Status.Label()

	txHash, err := a.submitTransaction(ctx, identity, req, doc.CID)
	if err != nil {
		// Ambiguous: the broadcast may have been included even though no
		// receipt was observed. No pending-transaction lookup is attempted.
		metrics.RegistrationsTotal.WithLabelValues("ledger_failed").Inc()
		log.Error("Registration aborted, ledger submission failed", "err", err)
		return nil, fmt.Errorf("%w: %w", interfaces.ErrLedgerUnavailable, err)
	}

	att := &interfaces.Attestation{
		TxHash:          txHash,
		Email:           req.Email,
		WalletAddress:   identity.Address,
		ContractAddress: a.ledger.ContractAddress(),
		CID:             doc.CID,
		ApplicationNo:   req.ApplicationNo,
		Status:          statusLabel,
		CreatedAt:       time.Now().UTC(),
	}

	start := time.Now()
	if _, err := a.store.RecordAttestation(ctx, att); err != nil {
		// The transaction is on chain but not recorded locally. Report
		// failure; a human-triggered retry creates a second on-chain record.
		metrics.RegistrationsTotal.WithLabelValues("persist_failed").Inc()
		log.Error("Ledger write succeeded but attestation was not recorded",
			slog.String("tx", txHash), "err", err)
		return nil, fmt.Errorf("transaction %s confirmed but not recorded: %w", txHash, err)
	}
	metrics.StepDuration.WithLabelValues("persist").Observe(time.Since(start).Seconds())

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	log.Info("Patent registration recorded",
		slog.String("tx", txHash),
		slog.String("cid", doc.CID),
		slog.String("status", statusLabel))

	return &interfaces.RegisterResult{
		TxHash:        txHash,
		CID:           doc.CID,
		GatewayURL:    doc.GatewayURL,
		WalletAddress: identity.Address,
		Status:        statusLabel,
	}, nil
}

func (a *Attestor) resolveIdentity(ctx context.Context, email string) (*interfaces.Identity, error) {
	start := time.Now()
	identity, err := a.resolver.ResolveOrCreate(ctx, email)
	metrics.StepDuration.WithLabelValues("identity").Observe(time.Since(start).Seconds())
	return identity, err
}

func (a *Attestor) anchorDocument(ctx context.Context, data []byte, fileName string) (*interfaces.AnchoredDocument, error) {
	if a.timeouts.Anchor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeouts.Anchor)
		defer cancel()
	}
	start := time.Now()
	doc, err := a.anchor.Upload(ctx, data, fileName)
	metrics.StepDuration.WithLabelValues("anchor").Observe(time.Since(start).Seconds())
	return doc, err
}

func (a *Attestor) submitTransaction(ctx context.Context, identity *interfaces.Identity, req *interfaces.RegisterRequest, cid string) (string, error) {
	if a.timeouts.Ledger > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeouts.Ledger)
		defer cancel()
	}
	start := time.Now()
	txHash, err := a.ledger.Submit(ctx, identity, req.ApplicationNo, req.Title, req.Description, cid, req.Status)
	metrics.StepDuration.WithLabelValues("ledger").Observe(time.Since(start).Seconds())
	return txHash, err
}
