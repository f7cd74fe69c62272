// Package session provides Redis-backed persistence for VK access tokens obtained
// through the authorization-code flow, with a compact binary record encoding.
//
// # Binary encoding
//
// Records are stored as a versioned binary blob (see [Encode]). The format is
// append-only: new versions add fields but never reinterpret old ones.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Record] model. It does
// NOT call the VK API, validate tokens, or decide when a token should be stored;
// those responsibilities belong to the Client.
//
// # What this package must NOT do
//
//   - Import goVK, jwt, or transport (no upward imports).
//   - Log or otherwise expose access tokens.
package session
