package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cyclewarden"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	cyclesStarted prom.Counter
	cyclesEnded   *prom.CounterVec
	activeCycle   prom.Gauge
	remaining     prom.Gauge
	writes        *prom.CounterVec
	loads         *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		cyclesStarted: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_started_total",
			Help:      "Cycles started",
		}),
		cyclesEnded: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_ended_total",
			Help:      "Cycles ended by final status",
		}, []string{"status"}),
		activeCycle: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "active_cycle",
			Help:      "1 while a cycle is running",
		}),
		remaining: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "remaining_seconds",
			Help:      "Seconds left on the active cycle",
		}),
		writes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_writes_total",
			Help:      "Snapshot writes by result",
		}, []string{"result"}),
		loads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_loads_total",
			Help:      "Snapshot loads by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.cyclesStarted, pr.cyclesEnded, pr.activeCycle, pr.remaining, pr.writes, pr.loads)
	return pr
}

func (p *PrometheusRecorder) IncCycleStarted() {
	if p == nil {
		return
	}
	p.cyclesStarted.Inc()
}

func (p *PrometheusRecorder) IncCycleEnded(status string) {
	if p == nil {
		return
	}
	p.cyclesEnded.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) SetActiveCycle(active bool) {
	if p == nil {
		return
	}
	if active {
		p.activeCycle.Set(1)
	} else {
		p.activeCycle.Set(0)
		p.remaining.Set(0)
	}
}

func (p *PrometheusRecorder) SetRemainingSeconds(sec int64) {
	if p == nil {
		return
	}
	p.remaining.Set(float64(sec))
}

func (p *PrometheusRecorder) IncSnapshotWrite(result ResultLabel) {
	if p == nil {
		return
	}
	p.writes.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncSnapshotLoad(result ResultLabel) {
	if p == nil {
		return
	}
	p.loads.WithLabelValues(string(result)).Inc()
}

// HTTPHandler returns an http.Handler that serves the metrics in reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
