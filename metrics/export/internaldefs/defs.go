package internaldefs

import (
	goVK "github.com/MrEthical07/goVK"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   goVK.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   goVK.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter of audit events lost to backpressure.
const (
	AuditDroppedName = "govk_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// CounterDefs lists every counter in export order.
var CounterDefs = []CounterDef{
	{ID: goVK.MetricAPICallSuccess, Name: "govk_api_call_success_total", Help: "API calls that returned a body."},
	{ID: goVK.MetricAPICallFailure, Name: "govk_api_call_failure_total", Help: "API calls that failed in transport or decoding."},
	{ID: goVK.MetricAPICallRateLimited, Name: "govk_api_call_rate_limited_total", Help: "API calls rejected by the client-side rate limiter."},
	{ID: goVK.MetricTokenExchangeSuccess, Name: "govk_token_exchange_success_total", Help: "Successful authorization code exchanges."},
	{ID: goVK.MetricTokenExchangeFailure, Name: "govk_token_exchange_failure_total", Help: "Code exchanges that failed."},
	{ID: goVK.MetricTokenExchangeRejected, Name: "govk_token_exchange_rejected_total", Help: "Code exchanges refused on an authorized client."},
	{ID: goVK.MetricTokenCheckValid, Name: "govk_token_check_valid_total", Help: "Token checks that found a live token."},
	{ID: goVK.MetricTokenCheckInvalid, Name: "govk_token_check_invalid_total", Help: "Token checks that found a dead token."},
	{ID: goVK.MetricPasswordGrantRejected, Name: "govk_password_grant_rejected_total", Help: "Rejected password grant attempts."},
	{ID: goVK.MetricSessionSaved, Name: "govk_session_saved_total", Help: "Tokens persisted to Redis."},
	{ID: goVK.MetricSessionResumed, Name: "govk_session_resumed_total", Help: "Tokens loaded from Redis."},
	{ID: goVK.MetricSessionForgotten, Name: "govk_session_forgotten_total", Help: "Tokens removed from Redis."},
	{ID: goVK.MetricStateIssued, Name: "govk_state_issued_total", Help: "Signed OAuth states issued."},
	{ID: goVK.MetricStateRejected, Name: "govk_state_rejected_total", Help: "OAuth states that failed verification."},
}

// HistogramDefs lists every histogram.
var HistogramDefs = []HistogramDef{
	{ID: goVK.MetricAPICallLatency, Name: "govk_api_call_latency_seconds", Help: "API call latency histogram."},
}

// HistogramBounds are the bucket labels, +Inf last.
var HistogramBounds = []string{
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"+Inf",
}

// HistogramUpperBounds are the finite bucket bounds in seconds.
var HistogramUpperBounds = []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// HistogramBoundSuffix are metric-name-safe forms of HistogramBounds.
var HistogramBoundSuffix = []string{
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
