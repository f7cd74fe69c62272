// Package permission provides the VK access-rights table, a name registry,
// and the [Scope] builder used for the scope parameter of authorization URLs.
//
// # Table
//
// Each VK right is a single bit (NOTIFY = bit 0 through MARKET = bit 27).
// Bits 9, 14, 21, 24 and 25 are reserved: they are part of [All] but have no
// name. The table is an explicit slice iterated at init time; nothing is
// discovered through reflection.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O. It provides the
// codec (EncodeMask/DecodeMask) used by the session encoder.
//
// # What this package must NOT do
//
//   - Access Redis, the network, or the VK API.
//   - Import goVK, jwt, or session.
//   - Report errors for unknown permission names (they are dropped).
package permission
