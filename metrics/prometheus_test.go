package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	t.Parallel()
	p := NewPrometheusRecorder()

	p.ObserveGeneration("http", "success", 120*time.Millisecond)
	p.ObserveGeneration("http", "success", 80*time.Millisecond)
	p.ObserveGeneration("http", "http_error", time.Millisecond)
	p.ObserveTransition("quiz", "next_step")
	p.IncDropped("busy")
	p.IncEvicted("tg:1")
	p.IncEvicted("tg:2")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.generationTotal.WithLabelValues("http", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.generationTotal.WithLabelValues("http", "http_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.transitionsTotal.WithLabelValues("quiz", "next_step")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.droppedTotal.WithLabelValues("busy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.evictedTotal))
}

func TestRecordersDoNotShareRegistries(t *testing.T) {
	t.Parallel()
	a := NewPrometheusRecorder()
	b := NewPrometheusRecorder()
	a.IncDropped("duplicate")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.droppedTotal.WithLabelValues("duplicate")))
}

func TestHandlerExposesSessionGauge(t *testing.T) {
	t.Parallel()
	p := NewPrometheusRecorder()
	live := 3
	p.TrackSessions(func() int { return live })
	p.ObserveTransition("language_selection", "quiz")

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "hrbot_sessions 3")
	assert.Contains(t, string(body), `hrbot_transitions_total{from="language_selection",to="quiz"} 1`)
}
