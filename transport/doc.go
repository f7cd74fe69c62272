// Package transport performs the HTTP requests of the goVK client.
//
// [Transport] is the seam the client depends on: GET with the parameters in
// the query string, POST with a form-encoded body, response bytes returned
// untouched. [HTTPTransport] is the default implementation on net/http with
// an optional circuit breaker (sony/gobreaker) and an OpenTelemetry client
// span per request.
//
//	Docs: docs/transport.md
//
// # What this package must NOT do
//
//   - Decode response bodies or interpret VK error objects.
//   - Retry requests.
//   - Log or record query strings and form bodies; they carry access tokens
//     and signatures.
package transport
