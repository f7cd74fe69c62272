// Package middleware exposes net/http adapters for the VK OAuth flow built on
// top of goVK.Client.
//
// # Handlers
//
//   - [Callback]: the redirect_uri handler. Verifies state, exchanges the code
//     on a fork of the client, optionally saves the session.
//   - [RequireToken]: guards a route with a VK access token taken from the
//     Authorization header, checked with Client.CheckAccessToken.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Client calls. It does NOT talk to
// VK or Redis itself; every decision is delegated to the Client.
//
// # What this package must NOT do
//
//   - Write access tokens into responses or logs.
//   - Exchange a code on the shared Client (always on a Fork).
//   - Retry failed exchanges.
package middleware
