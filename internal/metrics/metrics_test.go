// internal/metrics/metrics_test.go
package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/fault-manager/internal/faultlog"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.FaultLogged("write")
		m.LogFailed(errors.New("x"))
		m.WriteRejected("bad_message")
		m.EventHandled("ignored")
		m.BytesRead(3)
		m.ConnOpened()
		m.ConnClosed()
	})
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.FaultLogged("write")
	m.FaultLogged("write")
	m.FaultLogged("event")
	m.LogFailed(&faultlog.LogError{Op: faultlog.OpOpen, Err: errors.New("nope")})
	m.LogFailed(errors.New("opaque"))
	m.BytesRead(24)
	m.BytesRead(0)
	m.ConnOpened()
	m.ConnOpened()
	m.ConnClosed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FaultsLogged.WithLabelValues("write")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FaultsLogged.WithLabelValues("event")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LogErrors.WithLabelValues("open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LogErrors.WithLabelValues("unknown")))
	assert.Equal(t, 24.0, testutil.ToFloat64(m.ReadBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectionsOpen))
}

func TestNew_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	m.FaultLogged("write")

	srv := httptest.NewServer(NewRouter(reg, "Fault manager works ok\n"))
	defer srv.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(b)
	}

	code, body := get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)

	code, body = get("/status")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Fault manager works ok\n", body)

	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `faultmanager_faults_logged_total{source="write"} 1`)

	code, _ = get("/nope")
	assert.Equal(t, http.StatusNotFound, code)
}
