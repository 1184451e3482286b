// Package store persists registration outcomes and the wallet-to-registrant
// mapping in PostgreSQL.
//
// The attestation table is append-only: a successful end-to-end registration
// inserts exactly one row, failures insert none, and status changes produce
// new rows rather than updates. The wallet table carries a unique constraint
// on the registrant email; identity writes are idempotent on that constraint
// so concurrent first-time wallet creation cannot produce duplicates.
package store
