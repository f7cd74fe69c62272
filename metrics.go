package goVK

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one in-process counter of a [Client].
type MetricID uint16

const (
	// MetricAPICallSuccess counts API calls that returned a body.
	MetricAPICallSuccess MetricID = iota
	// MetricAPICallFailure counts API calls that failed in transport or decoding.
	MetricAPICallFailure
	// MetricAPICallRateLimited counts calls rejected by the client-side limiter.
	MetricAPICallRateLimited
	// MetricTokenExchangeSuccess counts successful code exchanges.
	MetricTokenExchangeSuccess
	// MetricTokenExchangeFailure counts code exchanges answered with an error.
	MetricTokenExchangeFailure
	// MetricTokenExchangeRejected counts exchanges refused because the client
	// was already authorized.
	MetricTokenExchangeRejected
	// MetricTokenCheckValid counts token checks that found a live token.
	MetricTokenCheckValid
	// MetricTokenCheckInvalid counts token checks that did not.
	MetricTokenCheckInvalid
	// MetricPasswordGrantRejected counts password grant attempts.
	MetricPasswordGrantRejected
	// MetricSessionSaved counts tokens persisted to Redis.
	MetricSessionSaved
	// MetricSessionResumed counts tokens loaded from Redis.
	MetricSessionResumed
	// MetricSessionForgotten counts tokens removed from Redis.
	MetricSessionForgotten
	// MetricStateIssued counts signed OAuth states.
	MetricStateIssued
	// MetricStateRejected counts OAuth states that failed verification.
	MetricStateRejected
	// MetricAPICallLatency is the latency histogram of API calls.
	MetricAPICallLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and one latency histogram. A nil or
// disabled *Metrics ignores every update.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of [Metrics].
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates counters according to cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments the counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the latency histogram. Only [MetricAPICallLatency]
// has a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricAPICallLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current counter value.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters, and the histogram when latency is enabled.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAPICallLatency].buckets[i])
		}
		s.Histograms[MetricAPICallLatency] = buckets
	}

	return s
}

// Upper bounds in milliseconds: 25, 50, 100, 250, 500, 1000, 2500, +Inf.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 25:
		return 0
	case ms <= 50:
		return 1
	case ms <= 100:
		return 2
	case ms <= 250:
		return 3
	case ms <= 500:
		return 4
	case ms <= 1000:
		return 5
	case ms <= 2500:
		return 6
	default:
		return 7
	}
}
