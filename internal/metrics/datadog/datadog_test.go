package datadog

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"xmljson/internal/metrics"
)

// fakeSubmitter records payloads instead of performing HTTP.
type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []datadogV2.MetricPayload
}

func (f *fakeSubmitter) SubmitMetrics(_ context.Context, body datadogV2.MetricPayload, _ ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, body)
	return datadogV2.IntakePayloadAccepted{}, nil, nil
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

// neverTicker yields a ticker that never fires, so tests control Flush alone.
func neverTicker(time.Duration) *time.Ticker {
	return time.NewTicker(time.Hour)
}

func newTestBackend(t *testing.T, sub *fakeSubmitter) *Backend {
	t.Helper()
	b, err := NewBackend(context.Background(), Options{
		JobName:    "test",
		FlushEvery: time.Hour,
		now:        func() time.Time { return time.Unix(1700000000, 0) },
		newTicker:  neverTicker,
		submitter:  sub,
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	return b
}

// TestFlush_SubmitsBufferedCounters verifies counter aggregation, tagging,
// and buffer reset.
func TestFlush_SubmitsBufferedCounters(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	b := newTestBackend(t, sub)
	defer func() { _ = b.Close() }()

	b.IncCounter("xmljson_conversions_total", 1, metrics.Labels{"status": "ok"})
	b.IncCounter("xmljson_conversions_total", 1, metrics.Labels{"status": "ok"})
	b.IncCounter("xmljson_conversions_total", 1, metrics.Labels{"status": "error"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if sub.count() != 1 {
		t.Fatalf("expected 1 submission, got %d", sub.count())
	}

	series := sub.payloads[0].Series
	if len(series) != 2 {
		t.Fatalf("expected 2 series (ok, error), got %d", len(series))
	}

	// Deterministic order: tags sorted, error < ok.
	if *series[0].Points[0].Value != 1 || *series[1].Points[0].Value != 2 {
		t.Fatalf("unexpected values: %v / %v", *series[0].Points[0].Value, *series[1].Points[0].Value)
	}
	joined := strings.Join(series[0].Tags, ",")
	if !strings.Contains(joined, "job:test") || !strings.Contains(joined, "status:error") {
		t.Fatalf("unexpected tags: %v", series[0].Tags)
	}

	// Second flush with no new data submits nothing.
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if sub.count() != 1 {
		t.Fatalf("empty flush should not submit; got %d submissions", sub.count())
	}
}

// TestFlush_CondensesHistograms verifies sample condensation into
// count/avg/max series.
func TestFlush_CondensesHistograms(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	b := newTestBackend(t, sub)
	defer func() { _ = b.Close() }()

	b.ObserveHistogram("xmljson_conversion_duration_ms", 10, nil)
	b.ObserveHistogram("xmljson_conversion_duration_ms", 30, nil)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	series := sub.payloads[0].Series
	byName := map[string]float64{}
	for _, s := range series {
		byName[s.Metric] = *s.Points[0].Value
	}
	if byName["xmljson_conversion_duration_ms.count"] != 2 {
		t.Fatalf("count = %v", byName)
	}
	if byName["xmljson_conversion_duration_ms.avg"] != 20 {
		t.Fatalf("avg = %v", byName)
	}
	if byName["xmljson_conversion_duration_ms.max"] != 30 {
		t.Fatalf("max = %v", byName)
	}
}

// TestClose_FinalFlush verifies Close stops the loop and flushes the tail.
func TestClose_FinalFlush(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	b := newTestBackend(t, sub)

	b.IncCounter("xmljson_conversions_total", 1, nil)
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if sub.count() != 1 {
		t.Fatalf("expected tail flush on Close, got %d submissions", sub.count())
	}
}

// TestIncCounter_IgnoresNonPositiveDelta mirrors the counter contract.
func TestIncCounter_IgnoresNonPositiveDelta(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	b := newTestBackend(t, sub)
	defer func() { _ = b.Close() }()

	b.IncCounter("x", 0, nil)
	b.IncCounter("x", -5, nil)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if sub.count() != 0 {
		t.Fatalf("expected no submission, got %d", sub.count())
	}
}

// TestParseTagsCSV verifies trimming and blank handling.
func TestParseTagsCSV(t *testing.T) {
	t.Parallel()

	got := ParseTagsCSV(" env:prod , ,service:intake,")
	if len(got) != 2 || got[0] != "env:prod" || got[1] != "service:intake" {
		t.Fatalf("got %v", got)
	}
}
