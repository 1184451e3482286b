// Package interfaces defines the core types and component contracts for the
// patent attestation pipeline. It provides the boundaries between the key
// vault, the content anchor, the ledger client and the attestation store
// without implementation details, so each component can be exercised and
// mocked independently.
package interfaces
