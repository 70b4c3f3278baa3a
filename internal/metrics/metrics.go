package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vbonduro/photoshare/internal/domain"
)

const namespace = "photoshare"

// StatsSource reports current record counts on each scrape.
type StatsSource interface {
	Stats(ctx context.Context) (domain.Stats, error)
}

var (
	recordsDesc = prometheus.NewDesc(
		namespace+"_records",
		"Current number of stored records by kind",
		[]string{"kind"},
		nil,
	)
	unreadDesc = prometheus.NewDesc(
		namespace+"_unread_shares",
		"Received shares not yet marked read",
		nil,
		nil,
	)
)

// statsCollector reads record counts from the database on each scrape.
type statsCollector struct {
	source StatsSource
	logger *slog.Logger
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- recordsDesc
	ch <- unreadDesc
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := c.source.Stats(ctx)
	if err != nil {
		c.logger.Error("failed to collect record metrics", "error", err)
		return
	}
	for kind, n := range map[string]int{
		"contacts":        st.Contacts,
		"photos":          st.Photos,
		"sent_shares":     st.SentShares,
		"received_shares": st.ReceivedShares,
	} {
		ch <- prometheus.MustNewConstMetric(recordsDesc, prometheus.GaugeValue, float64(n), kind)
	}
	ch <- prometheus.MustNewConstMetric(unreadDesc, prometheus.GaugeValue, float64(st.UnreadShares))
}

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	SharesCreated prometheus.Counter
	PhotosShared  prometheus.Counter
	Uploads       *prometheus.CounterVec
	ChatQueries   *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SharesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shares_created_total",
			Help:      "Share actions recorded.",
		}),
		PhotosShared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photos_shared_total",
			Help:      "Photos included across all share actions.",
		}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Photo uploads by outcome.",
		}, []string{"outcome"}),
		ChatQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_queries_total",
			Help:      "Chat queries by classified intent.",
		}, []string{"intent"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.SharesCreated,
		m.PhotosShared,
		m.Uploads,
		m.ChatQueries,
		m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// WatchStats registers a collector that reports record counts from source.
func (m *Metrics) WatchStats(source StatsSource, logger *slog.Logger) {
	m.registry.MustRegister(&statsCollector{source: source, logger: logger})
}

// WatchSubscribers exposes a gauge backed by count, typically the notify
// hub's client count.
func (m *Metrics) WatchSubscribers(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_subscribers",
		Help:      "Connected websocket subscribers.",
	}, func() float64 { return float64(count()) }))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
