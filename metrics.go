package smartcontent

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/m-zajac/smartcontent"

// Search results, used as the "result" metric attribute.
const (
	resultHit      = "hit"
	resultFetch    = "fetch"
	resultError    = "error"
	resultCanceled = "canceled"
)

type metrics struct {
	searchCount  metric.Int64Counter
	durationHist metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	searchCount, err := meter.Int64Counter(
		"smartcontent.search.total",
		metric.WithDescription("Total number of search calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"smartcontent.search.duration_ms",
		metric.WithDescription("Search call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		searchCount:  searchCount,
		durationHist: durationHist,
	}, nil
}

func (m *metrics) recordSearch(ctx context.Context, result string, duration time.Duration) {
	opt := metric.WithAttributes(attribute.String("result", result))

	// ctx may already be done; recording must not depend on it.
	ctx = context.WithoutCancel(ctx)

	m.searchCount.Add(ctx, 1, opt)
	m.durationHist.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}
