package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// PostsPublished is the current number of published posts.
	PostsPublished = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "blog_posts_published",
			Help: "Number of published posts",
		},
	)

	// PostsDrafts is the current number of unpublished posts.
	PostsDrafts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "blog_posts_drafts",
			Help: "Number of unpublished posts",
		},
	)

	// UsersTotal is the current number of registered users.
	UsersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "blog_users_total",
			Help: "Number of registered users",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, PostsPublished, PostsDrafts, UsersTotal)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /api/posts/123 -> /api/posts/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// SetContentStats updates the content gauges from a periodic store count.
func SetContentStats(published, drafts, users int) {
	PostsPublished.Set(float64(published))
	PostsDrafts.Set(float64(drafts))
	UsersTotal.Set(float64(users))
}
