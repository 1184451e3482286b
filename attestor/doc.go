// Package attestor composes the key vault, content anchor, ledger client and
// attestation store into the end-to-end registration protocol. It is the only
// component the rest of the system calls.
//
// The pipeline is a strict sequence with no internal parallelism or retry:
// each step's output gates the next, and every external failure is terminal
// for the invocation. Re-invoking after a ledger-level success mints a
// second, distinct attestation; callers wanting idempotency must check the
// attestation table before invoking.
package attestor
