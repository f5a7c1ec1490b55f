// Package metrics defines the Prometheus instrumentation for the daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	probeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttvrec_probe_total",
		Help: "Total number of liveness probes by result",
	}, []string{"result"})

	captureStartTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttvrec_capture_start_total",
		Help: "Total number of capture process starts by result",
	}, []string{"result"})

	captureExitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttvrec_capture_exit_total",
		Help: "Total number of capture process exits by reason",
	}, []string{"reason"})

	remuxTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttvrec_remux_total",
		Help: "Total number of remux invocations by result",
	}, []string{"result"})

	activeRecordings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ttvrec_active_recordings",
		Help: "Number of currently registered recording tasks",
	})

	procTerminateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ttvrec_proc_terminate_total",
		Help: "Total number of termination signals sent to capture process groups",
	}, []string{"signal", "result"})
)

// IncProbe records a liveness probe outcome ("live", "offline", "error").
func IncProbe(result string) {
	probeTotal.WithLabelValues(result).Inc()
}

// IncCaptureStart records a capture spawn attempt ("ok", "err").
func IncCaptureStart(result string) {
	captureStartTotal.WithLabelValues(result).Inc()
}

// IncCaptureExit records a capture exit ("clean", "error").
func IncCaptureExit(reason string) {
	captureExitTotal.WithLabelValues(reason).Inc()
}

// IncRemux records a remux outcome ("ok", "err").
func IncRemux(result string) {
	remuxTotal.WithLabelValues(result).Inc()
}

// IncActiveRecordings adjusts the active recording gauge upward.
func IncActiveRecordings() {
	activeRecordings.Inc()
}

// DecActiveRecordings adjusts the active recording gauge downward.
func DecActiveRecordings() {
	activeRecordings.Dec()
}

// IncProcTerminate records a signal sent to a process group.
func IncProcTerminate(signal, result string) {
	procTerminateTotal.WithLabelValues(signal, result).Inc()
}
