// Package rate throttles outgoing VK API calls on the client side.
//
// # Backends
//
//   - [Local]: in-process token bucket (golang.org/x/time/rate).
//   - [Redis]: fixed-window counter shared by every process using the same
//     app id. INCR + conditional EXPIRE on first hit. Key prefix: vkr:
//
// VK rejects calls above its per-token budget (error 6, "Too many requests per
// second"); limiting locally avoids burning those calls.
//
// # What this package must NOT do
//
//   - Interpret VK error codes or retry calls.
//   - Be imported outside the goVK module.
package rate
