package engine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics is the purely ambient instrumentation surface: search logic
// never branches on a counter's value, it only records into one. A
// no-op MeterProvider is the default, matching SPEC_FULL.md's ambient
// stack -- the UCI driver may wire a real exporter via SetMeterProvider.
type Metrics struct {
	nodes    metric.Int64Counter
	ttHits   metric.Int64Counter
	searches metric.Int64Counter
}

// NewMetrics builds the counters from provider, falling back to the
// global no-op provider when provider is nil.
func NewMetrics(provider metric.MeterProvider) *Metrics {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter("github.com/moterink/delocto/internal/engine")

	nodes, _ := meter.Int64Counter("delocto.search.nodes",
		metric.WithDescription("nodes visited by all search workers"))
	ttHits, _ := meter.Int64Counter("delocto.tt.hits",
		metric.WithDescription("transposition table probe hits"))
	searches, _ := meter.Int64Counter("delocto.search.count",
		metric.WithDescription("completed root searches"))

	return &Metrics{nodes: nodes, ttHits: ttHits, searches: searches}
}

func (m *Metrics) RecordNodes(ctx context.Context, n int64) {
	if m == nil || m.nodes == nil {
		return
	}
	m.nodes.Add(ctx, n)
}

func (m *Metrics) RecordSearchComplete(ctx context.Context) {
	if m == nil || m.searches == nil {
		return
	}
	m.searches.Add(ctx, 1)
}
