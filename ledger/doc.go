// Package ledger submits patent registrations to the PatentRegistry contract.
//
// The client signs with the registrant's custodial key, uses fixed gas
// settings (a deliberate simplification that trades cost-optimality for
// predictability) and blocks until a receipt is mined. It never retries and
// never queries for a possibly-pending transaction: a failure here is
// ambiguous and callers must treat it as such, since the broadcast may have
// been included even though no receipt was observed.
package ledger
