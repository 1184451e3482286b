package store

import (
	"context"
	"sync"

	"github.com/gsignip/patent-attestation/interfaces"
)

// MockStore is an in-memory interfaces.AttestationStore for tests.
// Failure modes are injectable per method.
type MockStore struct {
	mu         sync.Mutex
	identities map[string]*interfaces.Identity
	records    []*interfaces.Attestation

	// FailFind, FailSave and FailRecord, when non-nil, are returned by the
	// corresponding method instead of performing the operation.
	FailFind   error
	FailSave   error
	FailRecord error
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{identities: make(map[string]*interfaces.Identity)}
}

func (s *MockStore) FindIdentity(ctx context.Context, email string) (*interfaces.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailFind != nil {
		return nil, s.FailFind
	}
	identity, ok := s.identities[email]
	if !ok {
		return nil, interfaces.ErrIdentityNotFound
	}
	return identity, nil
}

func (s *MockStore) SaveIdentity(ctx context.Context, identity *interfaces.Identity) (*interfaces.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return nil, s.FailSave
	}
	if existing, ok := s.identities[identity.Email]; ok {
		return existing, nil
	}
	s.identities[identity.Email] = identity
	return identity, nil
}

func (s *MockStore) RecordAttestation(ctx context.Context, att *interfaces.Attestation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRecord != nil {
		return 0, s.FailRecord
	}
	s.records = append(s.records, att)
	return 1, nil
}

// Attestations returns a snapshot of the recorded rows.
func (s *MockStore) Attestations() []*interfaces.Attestation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*interfaces.Attestation, len(s.records))
	copy(out, s.records)
	return out
}

// IdentityCount returns the number of stored identities.
func (s *MockStore) IdentityCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.identities)
}
