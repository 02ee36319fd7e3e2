package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bendechrai/social-tracker/internal/health"
)

var (
	// Digest batch metrics

	DigestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socialtracker",
		Name:      "digests_total",
		Help:      "Digest outcomes per candidate, by result.",
	}, []string{"result"})

	DigestBatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "socialtracker",
		Name:      "digest_batch_duration_seconds",
		Help:      "Time taken for one full digest batch run.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	// Poller metrics

	PollCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "socialtracker",
		Name:      "poll_cycle_duration_seconds",
		Help:      "Time taken for one subreddit poll cycle.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	PostsMatchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "socialtracker",
		Name:      "posts_matched_total",
		Help:      "Posts that matched a tag and were stored.",
	})

	// Reddit-mirror client metrics

	RedditRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socialtracker",
		Name:      "reddit_requests_total",
		Help:      "Requests to the Reddit-mirror API, by status code.",
	}, []string{"status"})

	RedditRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "socialtracker",
		Name:      "reddit_request_duration_seconds",
		Help:      "Latency of Reddit-mirror API requests.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})

	RedditRateLimitRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "socialtracker",
		Name:      "reddit_rate_limit_remaining",
		Help:      "Requests left in the current Reddit-mirror rate-limit window.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "socialtracker",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socialtracker",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		DigestsTotal,
		DigestBatchDuration,
		PollCycleDuration,
		PostsMatchedTotal,
		RedditRequestsTotal,
		RedditRequestDuration,
		RedditRateLimitRemaining,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves Prometheus metrics plus liveness/readiness probes on
// the internal port.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
