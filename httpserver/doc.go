// Package httpserver exposes the registration pipeline over HTTP.
//
// Endpoints:
//
//   - POST /api/patents/register — run the full registration protocol for a
//     multipart-encoded application (fields: applicationNumber, email, title,
//     description, status; file part: file). Returns the transaction hash and
//     gateway link on success.
//   - POST /api/patents/wallet — pre-provision a custodial wallet for a
//     registrant without registering anything.
//   - GET /livez, /readyz, /drain, /undrain — health and rollout endpoints.
//
// Prometheus metrics are served on a separate listener.
package httpserver
