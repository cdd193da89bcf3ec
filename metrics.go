package spacetraveling

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/eringen/spacetraveling/prismic"
)

// metrics lives on a per-App registry so several apps (and tests) can coexist
// in one process.
type metrics struct {
	registry *prometheus.Registry

	contentRequests *prometheus.CounterVec
	contentDuration *prometheus.HistogramVec
	pageCache       *prometheus.CounterVec
	loadMore        *prometheus.CounterVec
	badDocuments    prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		contentRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_requests_total",
				Help: "Total number of content API requests",
			},
			[]string{"operation", "outcome"},
		),
		contentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "content_request_duration_seconds",
				Help:    "Duration of content API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		pageCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "page_cache_results_total",
				Help: "Page cache lookups by result",
			},
			[]string{"result"},
		),
		loadMore: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "load_more_requests_total",
				Help: "Load more requests by outcome",
			},
			[]string{"outcome"},
		),
		badDocuments: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "content_bad_documents_total",
				Help: "Documents whose data could not be decoded",
			},
		),
	}
}

func (m *metrics) observe(operation string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, prismic.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = "canceled"
	default:
		outcome = "error"
	}
	m.contentRequests.WithLabelValues(operation, outcome).Inc()
	m.contentDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// instrumentedRepository records request counts and latency around a Repository.
type instrumentedRepository struct {
	next Repository
	m    *metrics
}

func instrument(repo Repository, m *metrics) Repository {
	return &instrumentedRepository{next: repo, m: m}
}

func (r *instrumentedRepository) Query(ctx context.Context, predicates []prismic.Predicate, opts prismic.QueryOptions) (resp *prismic.Response, err error) {
	defer func(start time.Time) { r.m.observe("query", start, err) }(time.Now())
	return r.next.Query(ctx, predicates, opts)
}

func (r *instrumentedRepository) GetByUID(ctx context.Context, docType, uid string, opts prismic.QueryOptions) (doc *prismic.Document, err error) {
	defer func(start time.Time) { r.m.observe("get_by_uid", start, err) }(time.Now())
	return r.next.GetByUID(ctx, docType, uid, opts)
}

func (r *instrumentedRepository) GetByID(ctx context.Context, id string, opts prismic.QueryOptions) (doc *prismic.Document, err error) {
	defer func(start time.Time) { r.m.observe("get_by_id", start, err) }(time.Now())
	return r.next.GetByID(ctx, id, opts)
}

func (r *instrumentedRepository) FetchPage(ctx context.Context, cursor string) (resp *prismic.Response, err error) {
	defer func(start time.Time) { r.m.observe("fetch_page", start, err) }(time.Now())
	return r.next.FetchPage(ctx, cursor)
}
