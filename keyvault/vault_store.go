package keyvault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	vault "github.com/hashicorp/vault/api"

	"github.com/gsignip/patent-attestation/interfaces"
)

// VaultStore implements interfaces.IdentityStore on HashiCorp Vault KV v2,
// for deployments that keep custodial key material out of the relational
// database. One secret per registrant email, written once with
// check-and-set so concurrent first-time writes cannot clobber each other.
type VaultStore struct {
	client    *vault.Client
	mountPath string
	dataPath  string
	log       *slog.Logger
}

// NewVaultStore creates an identity store on the Vault KV v2 mount at
// mountPath, storing secrets under dataPath.
func NewVaultStore(address, token, mountPath, dataPath string, log *slog.Logger) (*VaultStore, error) {
	config := vault.DefaultConfig()
	config.Address = address
	config.HttpClient = &http.Client{Timeout: 30 * time.Second}

	client, err := vault.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(token)

	return &VaultStore{
		client:    client,
		mountPath: strings.TrimSuffix(mountPath, "/"),
		dataPath:  strings.Trim(dataPath, "/"),
		log:       log,
	}, nil
}

// FindIdentity retrieves the identity stored for the given email.
func (s *VaultStore) FindIdentity(ctx context.Context, email string) (*interfaces.Identity, error) {
	secret, err := s.client.KVv2(s.mountPath).Get(ctx, s.secretPath(email))
	if err != nil {
		if errors.Is(err, vault.ErrSecretNotFound) {
			return nil, interfaces.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("read identity from vault: %w", err)
	}
	return identityFromSecret(email, secret.Data)
}

// SaveIdentity writes the identity with check-and-set version 0 so only the
// first write for an email succeeds. On a lost race the winning identity is
// read back and returned.
func (s *VaultStore) SaveIdentity(ctx context.Context, identity *interfaces.Identity) (*interfaces.Identity, error) {
	data := map[string]interface{}{
		"address":     identity.Address,
		"private_key": identity.PrivateKey,
		"public_key":  identity.PublicKey,
	}

	_, err := s.client.KVv2(s.mountPath).Put(ctx, s.secretPath(identity.Email), data, vault.WithCheckAndSet(0))
	if err != nil {
		existing, findErr := s.FindIdentity(ctx, identity.Email)
		if findErr == nil {
			s.log.Debug("Lost identity creation race, reusing stored wallet",
				slog.String("email", identity.Email),
				slog.String("address", existing.Address))
			return existing, nil
		}
		return nil, fmt.Errorf("write identity to vault: %w", err)
	}
	return identity, nil
}

func (s *VaultStore) secretPath(email string) string {
	return s.dataPath + "/" + email
}

func identityFromSecret(email string, data map[string]interface{}) (*interfaces.Identity, error) {
	identity := &interfaces.Identity{Email: email}
	var ok bool
	if identity.Address, ok = data["address"].(string); !ok {
		return nil, fmt.Errorf("vault secret for %s missing address", email)
	}
	if identity.PrivateKey, ok = data["private_key"].(string); !ok {
		return nil, fmt.Errorf("vault secret for %s missing private key", email)
	}
	if identity.PublicKey, ok = data["public_key"].(string); !ok {
		return nil, fmt.Errorf("vault secret for %s missing public key", email)
	}
	return identity, nil
}
