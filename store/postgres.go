package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gsignip/patent-attestation/interfaces"
)

// Schema is the migration for the two pipeline tables.
const Schema = `
CREATE TABLE IF NOT EXISTS bc_patent_wallets (
	id          BIGSERIAL PRIMARY KEY,
	email       TEXT NOT NULL UNIQUE,
	address     TEXT NOT NULL,
	private_key TEXT NOT NULL,
	public_key  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bc_patent_registry (
	id               BIGSERIAL PRIMARY KEY,
	transaction_hash TEXT NOT NULL,
	email            TEXT NOT NULL,
	wallet_address   TEXT NOT NULL,
	contract_address TEXT NOT NULL,
	ipfs_hash        TEXT NOT NULL,
	application_id   TEXT NOT NULL,
	status           TEXT NOT NULL,
	create_time      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS bc_patent_registry_application_idx
	ON bc_patent_registry (application_id, create_time DESC);
`

// NewPool creates a pgx connection pool and verifies connectivity.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// RunMigrations executes the schema migration.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

// PostgresStore implements interfaces.AttestationStore on PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store over the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// FindIdentity looks up the wallet row for the given email.
func (s *PostgresStore) FindIdentity(ctx context.Context, email string) (*interfaces.Identity, error) {
	const q = `SELECT email, address, private_key, public_key FROM bc_patent_wallets WHERE email = $1`

	identity := &interfaces.Identity{}
	err := s.pool.QueryRow(ctx, q, email).Scan(&identity.Email, &identity.Address, &identity.PrivateKey, &identity.PublicKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, interfaces.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select wallet: %w", err)
	}
	return identity, nil
}

// SaveIdentity inserts the wallet row, treating a conflict on the email
// unique constraint as "already created": the previously stored identity is
// returned in that case.
func (s *PostgresStore) SaveIdentity(ctx context.Context, identity *interfaces.Identity) (*interfaces.Identity, error) {
	const q = `INSERT INTO bc_patent_wallets (email, address, private_key, public_key)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO NOTHING`

	tag, err := s.pool.Exec(ctx, q, identity.Email, identity.Address, identity.PrivateKey, identity.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("insert wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.FindIdentity(ctx, identity.Email)
	}
	return identity, nil
}

// RecordAttestation appends one attestation row. Failures are reported as
// ErrPersistenceFailed: the ledger transaction already succeeded at this
// point, so the caller must surface the gap rather than retry silently.
func (s *PostgresStore) RecordAttestation(ctx context.Context, att *interfaces.Attestation) (int64, error) {
	const q = `INSERT INTO bc_patent_registry
(transaction_hash, email, wallet_address, contract_address, ipfs_hash, application_id, status, create_time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	createdAt := att.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tag, err := s.pool.Exec(ctx, q,
		att.TxHash,
		att.Email,
		att.WalletAddress,
		att.ContractAddress,
		att.CID,
		att.ApplicationNo,
		att.Status,
		createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: insert attestation: %w", interfaces.ErrPersistenceFailed, err)
	}
	return tag.RowsAffected(), nil
}

// LatestAttestation returns the most recent row for an application number,
// which defines the application's current status. Returns nil without error
// when no attestation exists yet.
func (s *PostgresStore) LatestAttestation(ctx context.Context, applicationNo string) (*interfaces.Attestation, error) {
	const q = `SELECT transaction_hash, email, wallet_address, contract_address, ipfs_hash, application_id, status, create_time
FROM bc_patent_registry
WHERE application_id = $1
ORDER BY create_time DESC, id DESC
LIMIT 1`

	att := &interfaces.Attestation{}
	err := s.pool.QueryRow(ctx, q, applicationNo).Scan(
		&att.TxHash, &att.Email, &att.WalletAddress, &att.ContractAddress,
		&att.CID, &att.ApplicationNo, &att.Status, &att.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select attestation: %w", err)
	}
	return att, nil
}
