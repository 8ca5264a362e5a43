package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-suggest-proxy/internal/metrics"
)

func TestObserveRequest(t *testing.T) {
	r := metrics.New()
	r.ObserveRequest("OpenAI", "success")
	r.ObserveRequest("OpenAI", "success")
	r.ObserveRequest("Claude", "transport_timeout")

	count, err := testutil.GatherAndCount(r.Registry(), "suggest_proxy_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestObserveUpstream(t *testing.T) {
	r := metrics.New()
	r.ObserveUpstream("Claude", 2048, 1500*time.Millisecond)

	count, err := testutil.GatherAndCount(r.Registry(),
		"suggest_proxy_upstream_duration_seconds", "suggest_proxy_upstream_request_size_bytes")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *metrics.Recorder
	r.ObserveRequest("OpenAI", "success")
	r.ObserveUpstream("OpenAI", 1, time.Second)
	assert.Nil(t, r.Registry())

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := metrics.New()
	r.ObserveRequest("OpenAI", "success")

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `suggest_proxy_requests_total{outcome="success",provider="OpenAI"} 1`)
}
