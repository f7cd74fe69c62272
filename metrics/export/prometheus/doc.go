// Package prometheus exposes goVK client counters through
// prometheus/client_golang.
//
// [PrometheusExporter] is a collector that reads a metrics snapshot on every
// scrape. Counter names are prefixed govk_*_total; the single histogram is
// govk_api_call_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry; callers mount Handler
//     or register the collector themselves.
//   - Mutate client state.
package prometheus
