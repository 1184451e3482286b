// Package keyvault issues and retrieves custodial signing identities, one per
// registrant email.
//
// Key pairs are secp256k1, generated with go-ethereum's crypto package. The
// lookup-then-create sequence is serialized per registrant with a sharded
// mutex, and the underlying store additionally treats the identity write as
// idempotent on its email unique constraint, so at most one identity is ever
// created per registrant even under concurrent first-time requests.
//
// Two identity stores are provided elsewhere: the Postgres-backed attestation
// store and a HashiCorp Vault KV v2 store for deployments that keep private
// key material out of the relational database.
package keyvault
