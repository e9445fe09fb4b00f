// Package metrics owns the run-scoped Prometheus collectors that are not
// driven by progress events, and the optional HTTP listener exposing them.
package metrics

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors groups HTTP and rate limiter metrics.
type Collectors struct {
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	rateLimitDelaySeconds      *prometheus.HistogramVec
}

// NewCollectors registers the collectors against reg.
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collectors{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkrot_http_requests_total",
				Help: "Requests served by the metrics listener, labeled by method and code.",
			},
			[]string{"method", "code"},
		),
		httpRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linkrot_http_request_duration_seconds",
				Help:    "Latency of the metrics listener, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		),
		rateLimitDelaySeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linkrot_rate_limit_delay_seconds",
				Help:    "Time spent waiting on per-host rate limits.",
				Buckets: []float64{0.1, 0.5, 1, 2, 3, 5, 10, 30},
			},
			[]string{"site"},
		),
	}
	for _, collector := range []prometheus.Collector{
		c.httpRequestsTotal,
		c.httpRequestDurationSeconds,
		c.rateLimitDelaySeconds,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register metrics collector: %w", err)
		}
	}
	return c, nil
}

// SanitizeSite extracts a lowercase hostname for use as a label value.
// It returns "unknown" if the input has no usable host.
func SanitizeSite(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObserveRateLimitDelay records a rate limit wait. Its signature matches
// ratelimit.DelayObserver. A nil receiver is a no-op.
func (c *Collectors) ObserveRateLimitDelay(host string, waited time.Duration) {
	if c == nil {
		return
	}
	c.rateLimitDelaySeconds.WithLabelValues(SanitizeSite(host)).Observe(waited.Seconds())
}

func (c *Collectors) observeHTTPRequest(method, route string, code int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	c.httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
