// Package datadog implements a Datadog backend for the internal/metrics
// package.
//
// The backend buffers observations in-memory, flushes them on a ticker, and
// flushes one final time on Close. Short-lived conversions therefore still
// produce a tail submission at shutdown, while batch runs get a time series
// instead of a single spike.
//
// Concurrency model:
//   - IncCounter/ObserveHistogram may be called from any goroutine.
//   - Flush snapshots and resets buffers under a mutex, then submits
//     out-of-lock.
//   - The flush loop calls Flush periodically; Close stops the loop.
package datadog

import (
	"context"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"xmljson/internal/metrics"
)

// metricsSubmitter is the minimal interface needed to submit metrics.
//
// The Datadog SDK exposes a concrete *datadogV2.MetricsApi; depending on this
// tiny private interface instead lets unit tests inject a fake submitter and
// avoid real HTTP.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Options controls Datadog backend configuration.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric. Defaults to "xmljson".
	JobName string

	// Tags are extra Datadog tags (e.g. []string{"env:prod"}).
	Tags []string

	// FlushEvery controls the submission interval. If <= 0, defaults to 60s.
	FlushEvery time.Duration

	// Unexported test seams. Production code never sets them; unit tests use
	// them to avoid real submission and nondeterministic clocks/tickers.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter metricsSubmitter
}

// seriesKey identifies one buffered series: metric name plus canonical tags.
type seriesKey struct {
	metric string
	tags   string // sorted "k:v" pairs joined with ","
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api metricsSubmitter
	ctx context.Context

	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	baseTags []string

	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker

	mu       sync.Mutex
	counters map[seriesKey]float64
	samples  map[seriesKey][]float64
}

// ParseTagsCSV splits a comma-separated tag list, trimming blanks.
func ParseTagsCSV(csv string) []string {
	var out []string
	for _, t := range strings.Split(csv, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

// NewBackend constructs a Datadog backend using the official client.
//
// Edge cases:
//   - If opts.FlushEvery <= 0, defaults to 60s.
//   - If opts.JobName is empty, defaults to "xmljson".
//   - Environment tag selection uses ENV then DD_ENV, otherwise env:unknown.
//
// Errors:
//   - Datadog client construction is not expected to fail; network errors
//     surface from Flush.
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "xmljson"
	}

	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 2+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	newTicker := opts.newTicker
	if newTicker == nil {
		newTicker = time.NewTicker
	}

	submitter := opts.submitter
	if submitter == nil {
		cfg := dd.NewConfiguration()
		client := dd.NewAPIClient(cfg)
		submitter = datadogV2.NewMetricsApi(client)
	}

	b := &Backend{
		api:        submitter,
		ctx:        dd.NewDefaultContext(parent),
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		baseTags:   baseTags,
		now:        nowFn,
		newTicker:  newTicker,
		counters:   make(map[seriesKey]float64),
		samples:    make(map[seriesKey][]float64),
	}

	go b.loop()
	return b, nil
}

func (b *Backend) loop() {
	defer close(b.doneCh)

	t := b.newTicker(b.flushEvery)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// Close stops the background flush loop and performs one final Flush.
//
// Call once at process shutdown; a second Close panics on the closed stop
// channel, mirroring the usual "close once" contract.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

func canonicalKey(metric string, labels metrics.Labels) seriesKey {
	if len(labels) == 0 {
		return seriesKey{metric: metric}
	}
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, k+":"+v)
	}
	sort.Strings(pairs)
	return seriesKey{metric: metric, tags: strings.Join(pairs, ",")}
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 {
		return
	}
	k := canonicalKey(name, labels)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.counters[k] += delta
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	k := canonicalKey(name, labels)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples[k] = append(b.samples[k], value)
}

// snapshot holds detached buffers so payload building and submission happen
// out-of-lock.
type snapshot struct {
	counters map[seriesKey]float64
	samples  map[seriesKey][]float64
}

func (s snapshot) isEmpty() bool {
	return len(s.counters) == 0 && len(s.samples) == 0
}

func (b *Backend) snapshotAndReset() snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := snapshot{counters: b.counters, samples: b.samples}
	b.counters = make(map[seriesKey]float64)
	b.samples = make(map[seriesKey][]float64)
	return s
}

// Flush submits buffered metrics to Datadog and resets local buffers.
//
// Buffers are reset even when submission fails, to keep conversion paths fast
// and non-blocking; at-least-once delivery is explicitly not a goal here.
// Returns nil when there is nothing to submit.
func (b *Backend) Flush() error {
	snap := b.snapshotAndReset()
	if snap.isEmpty() {
		return nil
	}

	payload := datadogV2.MetricPayload{
		Series: b.buildSeries(snap, b.now().Unix()),
	}

	_, _, err := b.api.SubmitMetrics(b.ctx, payload, *datadogV2.NewSubmitMetricsOptionalParameters())
	return err
}

// buildSeries constructs Datadog series for a snapshot at a fixed timestamp.
//
// It is pure (no locks, no network, no clocks), so unit tests can assert
// naming and tagging, which are an operational contract.
//
// Histograms are condensed to <name>.count / <name>.avg / <name>.max;
// full distributions are not needed for a conversion tool.
func (b *Backend) buildSeries(s snapshot, nowUnix int64) []datadogV2.MetricSeries {
	mk := func(metric string, typ datadogV2.MetricIntakeType, value float64, tags string) datadogV2.MetricSeries {
		all := make([]string, 0, len(b.baseTags)+4)
		all = append(all, b.baseTags...)
		if tags != "" {
			all = append(all, strings.Split(tags, ",")...)
		}
		return datadogV2.MetricSeries{
			Metric: metric,
			Type:   typ.Ptr(),
			Points: []datadogV2.MetricPoint{
				{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
			},
			Tags: all,
		}
	}

	sortKeys := func(m map[seriesKey][]float64, c map[seriesKey]float64) []seriesKey {
		var keys []seriesKey
		for k := range m {
			keys = append(keys, k)
		}
		for k := range c {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].metric != keys[j].metric {
				return keys[i].metric < keys[j].metric
			}
			return keys[i].tags < keys[j].tags
		})
		return keys
	}

	series := make([]datadogV2.MetricSeries, 0, len(s.counters)+3*len(s.samples))

	for _, k := range sortKeys(nil, s.counters) {
		series = append(series, mk(k.metric, datadogV2.METRICINTAKETYPE_COUNT, s.counters[k], k.tags))
	}

	for _, k := range sortKeys(s.samples, nil) {
		vals := s.samples[k]
		if len(vals) == 0 {
			continue
		}
		sum, max := 0.0, vals[0]
		for _, v := range vals {
			sum += v
			if v > max {
				max = v
			}
		}
		n := float64(len(vals))
		series = append(series,
			mk(k.metric+".count", datadogV2.METRICINTAKETYPE_COUNT, n, k.tags),
			mk(k.metric+".avg", datadogV2.METRICINTAKETYPE_GAUGE, sum/n, k.tags),
			mk(k.metric+".max", datadogV2.METRICINTAKETYPE_GAUGE, max, k.tags),
		)
	}

	return series
}

var _ metrics.Backend = (*Backend)(nil)
