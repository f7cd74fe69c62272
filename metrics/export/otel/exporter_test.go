package otel

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	goVK "github.com/MrEthical07/goVK"
	"github.com/MrEthical07/goVK/metrics/export/internaldefs"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot goVK.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goVK.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goVK.MetricsSnapshot{
		Counters:   make(map[goVK.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[goVK.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		out.Histograms[k] = append([]uint64(nil), buckets...)
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newReader(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] = dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] = dp.Value
				}
			}
		}
	}
	return out
}

func TestExporterRegistersAndCollects(t *testing.T) {
	t.Parallel()

	reader, provider := newReader(t)
	src := &fakeSource{
		snapshot: goVK.MetricsSnapshot{
			Counters: map[goVK.MetricID]uint64{
				goVK.MetricAPICallSuccess: 3,
			},
			Histograms: map[goVK.MetricID][]uint64{
				goVK.MetricAPICallLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewOTelExporterFromSource(provider.Meter("govk-test"), src)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, exp.Close()) })

	got := collect(t, reader)
	assert.Equal(t, int64(3), got["govk_api_call_success_total"])
	assert.Equal(t, int64(1), got[internaldefs.AuditDroppedName])
	assert.Equal(t, int64(1), got["govk_api_call_latency_seconds_bucket_le_0_025"])
	assert.Equal(t, int64(8), got["govk_api_call_latency_seconds_bucket_le_inf"])
	assert.Equal(t, int64(8), got["govk_api_call_latency_seconds_count"])
}

func TestExporterRejectsNilInputs(t *testing.T) {
	t.Parallel()

	_, provider := newReader(t)
	meter := provider.Meter("govk-test")

	_, err := NewOTelExporterFromSource(meter, nil)
	assert.ErrorIs(t, err, ErrNilSource)

	_, err = NewOTelExporter(meter, nil)
	assert.ErrorIs(t, err, ErrNilSource)

	_, err = NewOTelExporterFromSource(nil, &fakeSource{})
	assert.ErrorIs(t, err, ErrNilMeter)
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	t.Parallel()

	reader, provider := newReader(t)
	src := &fakeSource{
		snapshot: goVK.MetricsSnapshot{
			Counters: map[goVK.MetricID]uint64{
				goVK.MetricAPICallSuccess: 1,
			},
			Histograms: map[goVK.MetricID][]uint64{},
		},
	}

	exp, err := NewOTelExporterFromSource(provider.Meter("govk-test"), src)
	require.NoError(t, err)
	t.Cleanup(func() { _ = exp.Close() })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[goVK.MetricAPICallSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
