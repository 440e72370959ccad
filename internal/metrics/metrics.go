package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ToolRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "redditscout_tool_runs_total",
		Help: "Total tool executions",
	}, []string{"tool"})
	ToolErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "redditscout_tool_errors_total",
		Help: "Total tool execution errors",
	}, []string{"tool"})
	FetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "redditscout_fetch_errors_total",
		Help: "Total upstream fetch errors by kind",
	}, []string{"kind"})
	FetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "redditscout_fetch_duration_seconds",
		Help:    "Upstream fetch duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "redditscout_api_retries_total",
		Help: "Total API retry attempts",
	}, []string{"endpoint"})
)

func init() {
	prometheus.MustRegister(ToolRuns, ToolErrors, FetchErrors, FetchDuration, APIRetries)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }()
}

// ObserveFetchDuration records one upstream fetch duration.
func ObserveFetchDuration(start time.Time) {
	FetchDuration.Observe(time.Since(start).Seconds())
}

// IncToolRun increments the run counter for a tool.
func IncToolRun(tool string) { ToolRuns.WithLabelValues(tool).Inc() }

// IncToolError increments the error counter for a tool.
func IncToolError(tool string) { ToolErrors.WithLabelValues(tool).Inc() }

// IncFetchError increments the fetch error counter for an error kind.
func IncFetchError(kind string) { FetchErrors.WithLabelValues(kind).Inc() }

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }
