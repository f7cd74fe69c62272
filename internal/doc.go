// Package internal contains helper utilities that are intentionally private to goVK,
// including secure random generation for request signing.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - rate: outgoing call throttling (in-process token bucket, Redis fixed window)
//
// # What this package must NOT do
//
//   - Export types that appear in the public goVK API.
//   - Be imported by any package outside the goVK module.
package internal
