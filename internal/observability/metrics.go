// Package observability holds the Prometheus metrics of the feed and
// comment engines. A nil *Metrics is valid and records nothing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "subhive"

// Metrics holds the engine counters. Create one per registry with NewMetrics.
type Metrics struct {
	// VotesTotal counts applied votes.
	// Labels: kind (post, comment), direction (up, down)
	VotesTotal *prometheus.CounterVec

	// CommentsCreatedTotal counts new comments.
	// Labels: type (comment, reply)
	CommentsCreatedTotal *prometheus.CounterVec

	// CommentsDeletedTotal counts deleted comment nodes, cascaded replies included.
	CommentsDeletedTotal prometheus.Counter

	// FeedRequestsTotal counts feed listings.
	// Labels: sort (hot, new, top, controversial), scope (global, subreddit, home, user)
	FeedRequestsTotal *prometheus.CounterVec

	// FeedCacheHitsTotal counts feed listings served from the ranking cache.
	FeedCacheHitsTotal prometheus.Counter
}

// NewMetrics creates the metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VotesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "votes_total",
				Help:      "Total votes applied by entity kind and direction",
			},
			[]string{"kind", "direction"},
		),
		CommentsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "comments_created_total",
				Help:      "Total comments created by type",
			},
			[]string{"type"},
		),
		CommentsDeletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "comments_deleted_total",
				Help:      "Total comment nodes removed, including cascaded replies",
			},
		),
		FeedRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "feed_requests_total",
				Help:      "Total feed listings by sort key and scope",
			},
			[]string{"sort", "scope"},
		),
		FeedCacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "feed_cache_hits_total",
				Help:      "Total feed listings served from cache",
			},
		),
	}
}

func (m *Metrics) RecordVote(kind, direction string) {
	if m == nil {
		return
	}
	m.VotesTotal.WithLabelValues(kind, direction).Inc()
}

func (m *Metrics) RecordCommentCreated(commentType string) {
	if m == nil {
		return
	}
	m.CommentsCreatedTotal.WithLabelValues(commentType).Inc()
}

func (m *Metrics) RecordCommentsDeleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CommentsDeletedTotal.Add(float64(n))
}

func (m *Metrics) RecordFeedRequest(sort, scope string) {
	if m == nil {
		return
	}
	m.FeedRequestsTotal.WithLabelValues(sort, scope).Inc()
}

func (m *Metrics) RecordFeedCacheHit() {
	if m == nil {
		return
	}
	m.FeedCacheHitsTotal.Inc()
}
