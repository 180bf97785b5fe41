package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "firesense"

// Metrics holds the Prometheus counters and gauges for both node roles.
type Metrics struct {
	NodeRunning *prometheus.GaugeVec // labels: role={sensor,receiver}

	// Sensor node pipeline.
	SamplesProduced  prometheus.Counter
	SampleReadErrors *prometheus.CounterVec // labels: input={env,wind,duff_moisture,drought}
	SampleQueueDepth prometheus.Gauge
	IndicesComputed  prometheus.Counter
	MailboxDrops     prometheus.Counter
	LastFWI          prometheus.Gauge
	RiskBandActive   *prometheus.GaugeVec // labels: band={normal,moderate,critical,dangerous}

	// Motion alerts.
	MotionEdges       prometheus.Counter
	AlertsDeferred    prometheus.Counter
	AlertsSent        prometheus.Counter
	AlertSendFailures prometheus.Counter
	TelemetryErrors   prometheus.Counter

	// Receiver node.
	MessagesReceived prometheus.Counter
	AlertsDisplayed  prometheus.Counter
	ClockTicks       prometheus.Counter
}

// NewMetrics creates all metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodeRunning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "node_running",
			Help:      "1 while the node's tasks are running, 0 once shut down.",
		}, []string{"role"}),
		SamplesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_produced_total",
			Help:      "Sensor samples pushed onto the sample channel.",
		}),
		SampleReadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sample_read_errors_total",
			Help:      "Failed input reads by input.",
		}, []string{"input"}),
		SampleQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sample_queue_depth",
			Help:      "Samples waiting in the sample channel.",
		}),
		IndicesComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indices_computed_total",
			Help:      "Fire weather indices computed.",
		}),
		MailboxDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mailbox_drops_total",
			Help:      "Computed indices dropped because the mailbox was still occupied.",
		}),
		LastFWI: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fwi",
			Help:      "Most recently computed fire weather index.",
		}),
		RiskBandActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "risk_band_active",
			Help:      "1 for the band shown by the last indicator refresh, 0 for the others.",
		}, []string{"band"}),
		MotionEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "motion_edges_total",
			Help:      "Falling edges seen on the motion input.",
		}),
		AlertsDeferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_deferred_total",
			Help:      "Dispatcher polls with motion pending but no index available.",
		}),
		AlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_sent_total",
			Help:      "Alert messages transmitted successfully.",
		}),
		AlertSendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_send_failures_total",
			Help:      "Alert transmissions reported as failed.",
		}),
		TelemetryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_errors_total",
			Help:      "Readings that could not be exported.",
		}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Radio messages staged by the receiver.",
		}),
		AlertsDisplayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_displayed_total",
			Help:      "Alerts rendered by the display loop.",
		}),
		ClockTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clock_ticks_total",
			Help:      "Receiver clock ticks.",
		}),
	}

	reg.MustRegister(
		m.NodeRunning,
		m.SamplesProduced,
		m.SampleReadErrors,
		m.SampleQueueDepth,
		m.IndicesComputed,
		m.MailboxDrops,
		m.LastFWI,
		m.RiskBandActive,
		m.MotionEdges,
		m.AlertsDeferred,
		m.AlertsSent,
		m.AlertSendFailures,
		m.TelemetryErrors,
		m.MessagesReceived,
		m.AlertsDisplayed,
		m.ClockTicks,
	)

	return m
}

// NewMetricsForTesting registers metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
