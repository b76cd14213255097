// internal/metrics/metrics.go
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/fault-manager/internal/faultlog"
)

const namespace = "faultmanager"

// Metrics holds the fault manager's counters.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FaultsLogged    *prometheus.CounterVec
	LogErrors       *prometheus.CounterVec
	WritesRejected  *prometheus.CounterVec
	Events          *prometheus.CounterVec
	ReadBytes       prometheus.Counter
	ConnectionsOpen prometheus.Gauge
}

// New creates the metrics and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		FaultsLogged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "faults_logged_total",
				Help:      "Fault records appended to the log",
			},
			[]string{"source"},
		),
		LogErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_errors_total",
				Help:      "Fault log append failures",
			},
			[]string{"op"},
		),
		WritesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "writes_rejected_total",
				Help:      "Write requests rejected before parsing",
			},
			[]string{"reason"},
		),
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Asynchronous events received, by outcome",
			},
			[]string{"result"},
		),
		ReadBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "read_bytes_total",
				Help:      "Status bytes served to readers",
			},
		),
		ConnectionsOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connections_open",
				Help:      "Open endpoint connections",
			},
		),
	}

	for _, c := range []prometheus.Collector{
		m.FaultsLogged, m.LogErrors, m.WritesRejected, m.Events, m.ReadBytes, m.ConnectionsOpen,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FaultLogged counts a successful append from source ("write" or "event").
func (m *Metrics) FaultLogged(source string) {
	if m == nil {
		return
	}
	m.FaultsLogged.WithLabelValues(source).Inc()
}

// LogFailed counts an append failure by its failing step.
func (m *Metrics) LogFailed(err error) {
	if m == nil || err == nil {
		return
	}
	op := "unknown"
	var le *faultlog.LogError
	if errors.As(err, &le) {
		op = string(le.Op)
	}
	m.LogErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) WriteRejected(reason string) {
	if m == nil {
		return
	}
	m.WritesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) EventHandled(result string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(result).Inc()
}

func (m *Metrics) BytesRead(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ReadBytes.Add(float64(n))
}

func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.ConnectionsOpen.Inc()
}

func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.ConnectionsOpen.Dec()
}
