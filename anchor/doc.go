// Package anchor uploads application documents to a content-addressed
// storage network and returns the resulting content identifier.
//
// Two backends are provided: PinataClient pins through Pinata's HTTP pinning
// endpoint, IPFSBackend pins through a self-hosted IPFS node's API. Both are
// pure clients with no local state and no retry; retry policy belongs to the
// orchestrator. A pinned document is publicly fetchable, so an upload is an
// effectively irreversible side effect and must not be attempted
// speculatively.
package anchor
