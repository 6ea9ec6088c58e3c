package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"filehost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestRecordRequest(t *testing.T) {
	m := New()
	m.RecordRequest(http.MethodGet, "/dashboard", http.StatusOK, 10*time.Millisecond)
	m.RecordRequest(http.MethodGet, "/dashboard", http.StatusOK, 20*time.Millisecond)
	m.RecordRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, `filehost_http_requests_total{method="GET",route="/dashboard",status="200"} 2`)
	assert.Contains(t, out, `filehost_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, out, `filehost_http_request_duration_seconds_count{method="GET",route="/dashboard"} 2`)
}

func TestRecordUpload(t *testing.T) {
	m := New()
	m.RecordUpload(UploadOK, 100)
	m.RecordUpload(UploadTooLarge, 999)

	out := scrape(t, m)
	assert.Contains(t, out, `filehost_uploads_total{result="ok"} 1`)
	assert.Contains(t, out, `filehost_uploads_total{result="too_large"} 1`)
	assert.Contains(t, out, "filehost_upload_bytes_total 100")
}

func TestRecordStats(t *testing.T) {
	m := New()
	m.RecordStats(models.StorageStats{Users: 3, Pending: 1, Files: 7, TotalBytes: 4096})

	out := scrape(t, m)
	assert.Contains(t, out, "filehost_registered_users 3")
	assert.Contains(t, out, "filehost_pending_requests 1")
	assert.Contains(t, out, "filehost_stored_files 7")
	assert.Contains(t, out, "filehost_storage_bytes 4096")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordRequest(http.MethodGet, "/", http.StatusOK, time.Second)
	m.RecordUpload(UploadOK, 1)
	m.RecordStats(models.StorageStats{})
}

func TestGoCollectorRegistered(t *testing.T) {
	assert.Contains(t, scrape(t, New()), "go_goroutines")
}
