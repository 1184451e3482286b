package keyvault

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/gsignip/patent-attestation/interfaces"
)

// lockShards bounds the memory spent on per-registrant serialization.
const lockShards = 64

// KeyVault implements interfaces.IdentityResolver on top of an identity
// store. Identities are immutable once created and reused for all future
// registrations by the same registrant.
type KeyVault struct {
	store interfaces.IdentityStore
	log   *slog.Logger
	locks [lockShards]sync.Mutex
}

// New creates a key vault backed by the given identity store.
func New(store interfaces.IdentityStore, log *slog.Logger) *KeyVault {
	return &KeyVault{store: store, log: log}
}

// ResolveOrCreate returns the identity for the given registrant email,
// generating and persisting a new key pair if none exists yet.
func (v *KeyVault) ResolveOrCreate(ctx context.Context, email string) (*interfaces.Identity, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: empty registrant email", interfaces.ErrIdentityCreationFailed)
	}

	// Fast path, no locking for already-provisioned registrants.
	identity, err := v.store.FindIdentity(ctx, email)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, interfaces.ErrIdentityNotFound) {
		return nil, fmt.Errorf("%w: lookup: %w", interfaces.ErrIdentityCreationFailed, err)
	}

	lock := &v.locks[shardFor(email)]
	lock.Lock()
	defer lock.Unlock()

	// Re-check under the lock: a concurrent first-time call may have won.
	identity, err = v.store.FindIdentity(ctx, email)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, interfaces.ErrIdentityNotFound) {
		return nil, fmt.Errorf("%w: lookup: %w", interfaces.ErrIdentityCreationFailed, err)
	}

	identity, err = Generate(email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrIdentityCreationFailed, err)
	}

	// SaveIdentity is idempotent on the email unique constraint; if another
	// process raced us past the local lock, the stored identity wins.
	stored, err := v.store.SaveIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("%w: save: %w", interfaces.ErrIdentityCreationFailed, err)
	}
	if !stored.Complete() {
		return nil, fmt.Errorf("%w: store returned incomplete identity", interfaces.ErrIdentityCreationFailed)
	}

	v.log.Info("Created custodial wallet",
		slog.String("email", email),
		slog.String("address", stored.Address))
	return stored, nil
}

// Generate creates a fresh secp256k1 key pair for the given registrant.
// The returned identity is complete or an error is returned, never a mix.
func Generate(email string) (*interfaces.Identity, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}

	identity := &interfaces.Identity{
		Email:      email,
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey: hex.EncodeToString(crypto.FromECDSA(key)),
		PublicKey:  hex.EncodeToString(crypto.FromECDSAPub(&key.PublicKey)),
	}
	if !identity.Complete() {
		return nil, errors.New("generated identity is incomplete")
	}
	return identity, nil
}

func shardFor(email string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(email))
	return h.Sum32() % lockShards
}
