package metrics

import (
	"net/http"
	"strconv"
	"time"

	"filehost/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload results used as the "result" label.
const (
	UploadOK       = "ok"
	UploadTooLarge = "too_large"
	UploadFailed   = "failed"
	UploadRejected = "rejected"
)

// Metrics holds all Prometheus metrics for the HTTP server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec   // filehost_http_requests_total{method,route,status}
	RequestDuration *prometheus.HistogramVec // filehost_http_request_duration_seconds{method,route}

	// Transfer metrics
	UploadsTotal *prometheus.CounterVec // filehost_uploads_total{result}
	UploadBytes  prometheus.Counter     // filehost_upload_bytes_total

	// Storage metrics, refreshed whenever stats are computed
	RegisteredUsers prometheus.Gauge // filehost_registered_users
	PendingRequests prometheus.Gauge // filehost_pending_requests
	StoredFiles     prometheus.Gauge // filehost_stored_files
	StorageBytes    prometheus.Gauge // filehost_storage_bytes
}

// New registers every metric on a fresh registry, plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "filehost_http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "filehost_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		UploadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "filehost_uploads_total",
			Help: "Upload attempts by result",
		}, []string{"result"}),

		UploadBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "filehost_upload_bytes_total",
			Help: "Total bytes stored by successful uploads",
		}),

		RegisteredUsers: f.NewGauge(prometheus.GaugeOpts{
			Name: "filehost_registered_users",
			Help: "Number of approved accounts",
		}),

		PendingRequests: f.NewGauge(prometheus.GaugeOpts{
			Name: "filehost_pending_requests",
			Help: "Number of registration requests waiting for approval",
		}),

		StoredFiles: f.NewGauge(prometheus.GaugeOpts{
			Name: "filehost_stored_files",
			Help: "Number of files across all namespaces",
		}),

		StorageBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "filehost_storage_bytes",
			Help: "Total bytes stored across all namespaces",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRequest records one served request.
func (m *Metrics) RecordRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordUpload counts an upload attempt and, on success, its size.
func (m *Metrics) RecordUpload(result string, bytes int64) {
	if m == nil {
		return
	}
	m.UploadsTotal.WithLabelValues(result).Inc()
	if result == UploadOK && bytes > 0 {
		m.UploadBytes.Add(float64(bytes))
	}
}

// RecordStats updates the storage gauges.
func (m *Metrics) RecordStats(s models.StorageStats) {
	if m == nil {
		return
	}
	m.RegisteredUsers.Set(float64(s.Users))
	m.PendingRequests.Set(float64(s.Pending))
	m.StoredFiles.Set(float64(s.Files))
	m.StorageBytes.Set(float64(s.TotalBytes))
}
