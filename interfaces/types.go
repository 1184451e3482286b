package interfaces

import (
	"errors"
	"time"
)

// StatusCode is the approval state of an application at registration time,
// passed to the registry contract as an unsigned integer.
type StatusCode int64

const (
	StatusRegistered StatusCode = 0
	StatusGranted    StatusCode = 1
)

// Label maps a status code to its human-readable label. The mapping is total:
// every code outside the known domain maps to "NotGranted".
func (s StatusCode) Label() string {
	switch s {
	case StatusRegistered:
		return "Registered"
	case StatusGranted:
		return "Granted"
	default:
		return "NotGranted"
	}
}

// Identity is a custodial signing key pair held on behalf of a registrant.
// All key material is hex-encoded. An identity is created once per registrant
// email and reused for every later registration.
type Identity struct {
	Email      string `json:"email"`
	Address    string `json:"address"`
	PrivateKey string `json:"-"`
	PublicKey  string `json:"publicKey"`
}

// Complete reports whether all three key fields are populated. The key vault
// never returns a partially-initialized identity.
func (id *Identity) Complete() bool {
	return id != nil && id.Address != "" && id.PrivateKey != "" && id.PublicKey != ""
}

// AnchoredDocument is the result of pinning a document to the content-addressed
// storage network.
type AnchoredDocument struct {
	CID        string `json:"cid"`
	GatewayURL string `json:"gatewayUrl"`
}

// Attestation is the durable proof of one on-chain registration, keyed by
// transaction hash. Rows are append-only; a status change for the same
// application number produces a new row, never an update.
type Attestation struct {
	TxHash          string    `json:"transactionHash"`
	Email           string    `json:"email"`
	WalletAddress   string    `json:"walletAddress"`
	ContractAddress string    `json:"contractAddress"`
	CID             string    `json:"cid"`
	ApplicationNo   string    `json:"applicationNumber"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RegisterRequest carries everything the orchestrator needs for one
// end-to-end registration attempt.
type RegisterRequest struct {
	Email         string
	ApplicationNo string
	Title         string
	Description   string
	Document      []byte
	FileName      string
	Status        StatusCode
}

// Validate checks the fields every pipeline step depends on.
func (r *RegisterRequest) Validate() error {
	if r.Email == "" {
		return errors.New("registrant email is required")
	}
	if r.ApplicationNo == "" {
		return errors.New("application number is required")
	}
	if len(r.Document) == 0 {
		return errors.New("document payload is empty")
	}
	return nil
}

// RegisterResult is returned to the caller after a fully persisted
// registration.
type RegisterResult struct {
	TxHash        string `json:"transactionHash"`
	CID           string `json:"cid"`
	GatewayURL    string `json:"gatewayUrl"`
	WalletAddress string `json:"walletAddress"`
	Status        string `json:"status"`
}
