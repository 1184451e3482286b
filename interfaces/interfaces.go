package interfaces

import "context"

// IdentityStore persists the registrant-to-wallet mapping.
type IdentityStore interface {
	// FindIdentity looks up an identity by registrant email. Returns
	// ErrIdentityNotFound if none exists.
	FindIdentity(ctx context.Context, email string) (*Identity, error)

	// SaveIdentity stores a new identity. The write is idempotent on the
	// email unique constraint: if another identity already exists for the
	// same email the stored one is returned instead of the argument.
	SaveIdentity(ctx context.Context, identity *Identity) (*Identity, error)
}

// IdentityResolver issues or retrieves the custodial identity for a
// registrant.
type IdentityResolver interface {
	// ResolveOrCreate returns the registrant's identity, generating and
	// persisting a new key pair on first use. At most one identity is ever
	// created per email, even under concurrent first-time calls.
	ResolveOrCreate(ctx context.Context, email string) (*Identity, error)
}

// ContentAnchor uploads a document to the content-addressed storage network.
// Uploads are publicly visible and effectively irreversible once pinned, so
// they must not be attempted speculatively.
type ContentAnchor interface {
	Upload(ctx context.Context, data []byte, fileName string) (*AnchoredDocument, error)
}

// Ledger submits the registration transaction to the registry contract and
// blocks until a receipt is obtained or the attempt fails. A failure must be
// treated as ambiguous: the transaction may still have been included.
type Ledger interface {
	Submit(ctx context.Context, signer *Identity, applicationNo, title, description, cid string, status StatusCode) (txHash string, err error)

	// ContractAddress returns the hex address of the registry contract the
	// client submits to, recorded alongside every attestation.
	ContractAddress() string
}

// AttestationStore is the durable record of registration outcomes. It also
// serves as the source of truth for the wallet-to-registrant mapping.
type AttestationStore interface {
	IdentityStore

	// RecordAttestation appends one attestation row and returns the number
	// of rows written. Rows are never updated or deleted.
	RecordAttestation(ctx context.Context, att *Attestation) (int64, error)
}

// Registrar is the single entry point the rest of the system calls to run the
// end-to-end registration protocol.
type Registrar interface {
	RegisterApplication(ctx context.Context, req *RegisterRequest) (*RegisterResult, error)
}
