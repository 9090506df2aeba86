package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsTotals(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/complaints", "POST", 201, time.Millisecond)
	m.RecordRequest("/complaints", "POST", 201, time.Millisecond)
	m.RecordError("/complaints/1/status", "PATCH", "FORBIDDEN")

	requests, errs := m.Totals()
	assert.Equal(t, int64(2), requests)
	assert.Equal(t, int64(1), errs)

	reqSnap, errSnap := m.Snapshot()
	assert.Equal(t, int64(2), reqSnap["/complaints|POST|201"])
	assert.Equal(t, int64(1), errSnap["/complaints/1/status|PATCH|FORBIDDEN"])
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, 0)
	m.RecordError("/x", "GET", "CONFLICT")

	requests, errs := m.Totals()
	assert.Zero(t, requests)
	assert.Zero(t, errs)
}
