// Package monitoring registers Prometheus metrics for the scan and auth
// paths and serves them on a dedicated listener.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ticketScans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_scans_total",
			Help: "Ticket scan attempts by structured outcome",
		},
		[]string{"status"},
	)

	scanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticket_scan_duration_seconds",
			Help:    "Duration of scan validation including the store round trips",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	codesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_codes_issued_total",
			Help: "Verification codes issued by purpose",
		},
		[]string{"purpose"},
	)

	logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)
)

// TrackScan records one scan attempt outcome and its duration.
func TrackScan(status string, duration time.Duration) {
	ticketScans.WithLabelValues(status).Inc()
	scanDuration.Observe(duration.Seconds())
}

// TrackCodeIssued records one issued verification or 2FA code.
func TrackCodeIssued(purpose string) {
	codesIssued.WithLabelValues(purpose).Inc()
}

// TrackLogin records one login attempt result.
func TrackLogin(result string) {
	logins.WithLabelValues(result).Inc()
}

// Handler returns the Prometheus scrape handler; the app mounts it on a
// separate plain net/http listener so metrics stay off the public API port.
func Handler() http.Handler {
	return promhttp.Handler()
}
