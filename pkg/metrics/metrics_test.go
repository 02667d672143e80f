package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/stockmirror/pkg/metrics"
)

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(metrics.RemoteRowsRejected.WithLabelValues("clients"))
	metrics.RecordRejected("clients", 3)
	metrics.RecordRejected("clients", 0)
	assert.Equal(t, before+3, testutil.ToFloat64(metrics.RemoteRowsRejected.WithLabelValues("clients")))

	failed := testutil.ToFloat64(metrics.Backups.WithLabelValues("failed"))
	metrics.RecordBackup(errors.New("disk full"))
	assert.Equal(t, failed+1, testutil.ToFloat64(metrics.Backups.WithLabelValues("failed")))

	metrics.SetRemoteBacked(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RemoteBacked))
	metrics.SetRemoteBacked(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.RemoteBacked))
}

func TestHandlerServesRegistry(t *testing.T) {
	metrics.RecordMutation("products", "create", "created")

	rec := httptest.NewRecorder()
	metrics.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stockmirror_mirror_mutations_total")
}
