package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)

func TestPrometheusRecorder_Counters(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.IncCycleStarted()
	r.IncCycleStarted()
	r.IncCycleEnded("Completed")
	r.IncSnapshotWrite(ResultSuccess)
	r.IncSnapshotLoad(ResultMalformed)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cyclesStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cyclesEnded.WithLabelValues("Completed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.cyclesEnded.WithLabelValues("Interrupted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.writes.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.loads.WithLabelValues("malformed")))
}

func TestPrometheusRecorder_ActiveGaugeResetsRemaining(t *testing.T) {
	r := NewPrometheusRecorder(prom.NewRegistry())

	r.SetActiveCycle(true)
	r.SetRemainingSeconds(90)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.activeCycle))
	assert.Equal(t, 90.0, testutil.ToFloat64(r.remaining))

	r.SetActiveCycle(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.activeCycle))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.remaining))
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var r *PrometheusRecorder
	assert.NotPanics(t, func() {
		r.IncCycleStarted()
		r.IncCycleEnded("Completed")
		r.SetActiveCycle(true)
		r.SetRemainingSeconds(1)
		r.IncSnapshotWrite(ResultFailed)
		r.IncSnapshotLoad(ResultMissing)
	})
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)
	r.IncCycleStarted()

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "cyclewarden_cycles_started_total 1"))
}
