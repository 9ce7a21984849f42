package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "GET", 200, 2*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, 4*time.Millisecond)
	m.RecordError("/tickets/:id", "GET", "NOT_FOUND")
	m.RecordTriage("network", "high")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/tickets|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/tickets/:id|GET|NOT_FOUND"])
	assert.Equal(t, int64(1), snap.Triage["category|network"])
	assert.Equal(t, int64(1), snap.Triage["priority|high"])
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(3000), snap.AvgLatencyMicro)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordTriage("a", "b")
	assert.Equal(t, Snapshot{}, m.Snapshot())
}
