// Package audit implements async event dispatching for token and API activity.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: audit record with timestamp, type, request id, VK user, method, metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; the Client does.
//
// # What this package must NOT do
//
//   - Record access tokens, passwords or application secrets.
//   - Import goVK or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
