package interfaces

import "errors"

// Component-level failures. Each external system failure is wrapped with one
// of these sentinels so callers can tell which step failed without parsing
// messages.
var (
	// ErrIdentityCreationFailed means key generation or the identity write
	// failed. No side effect occurred; the whole operation is retryable.
	ErrIdentityCreationFailed = errors.New("identity creation failed")

	// ErrAnchorUploadFailed means the pinning service rejected the upload.
	// Retryable; an identity created earlier in the same attempt persists.
	ErrAnchorUploadFailed = errors.New("document anchor upload failed")

	// ErrTransactionFailed means the ledger submission did not observably
	// succeed. The outcome is ambiguous: the broadcast may still have been
	// included even though no receipt was obtained.
	ErrTransactionFailed = errors.New("ledger transaction failed")

	// ErrPersistenceFailed means the ledger transaction succeeded but the
	// local attestation row was not written. The operation is reported as
	// failed; a retry mints a second on-chain record rather than losing one.
	ErrPersistenceFailed = errors.New("attestation persistence failed")

	// ErrIdentityNotFound is returned by identity lookups with no match.
	ErrIdentityNotFound = errors.New("identity not found")
)

// Orchestrator-level failures, wrapping the component sentinels with the
// pipeline step that aborted the registration.
var (
	ErrWalletUnavailable = errors.New("wallet unavailable")
	ErrAnchorUnavailable = errors.New("anchor unavailable")
	ErrLedgerUnavailable = errors.New("ledger unavailable")
)
