package plugin

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the bridge counters of one plugin. Every instance opened by
// the same factory shares them; the render path only performs atomic adds.
type Metrics struct {
	Renders           prometheus.Counter
	RenderErrors      prometheus.Counter
	BypassedRenders   prometheus.Counter
	RejectedRenders   *prometheus.CounterVec
	DroppedMIDI       prometheus.Counter
	DroppedParams     prometheus.Counter
	Instances         prometheus.Gauge
	PreparedInstances prometheus.Gauge

	tooManyFrames prometheus.Counter
	uninitialized prometheus.Counter
}

// NewMetrics creates the metrics of one plugin and registers them on reg.
// A nil reg leaves them unregistered. Metrics already registered by another
// factory for the same plugin are shared.
func NewMetrics(reg prometheus.Registerer, pluginName string) *Metrics {
	labels := prometheus.Labels{"plugin": pluginName}
	counter := func(name, help string) prometheus.Counter {
		return register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "augo",
			Subsystem:   "bridge",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}))
	}
	gauge := func(name, help string) prometheus.Gauge {
		return register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "augo",
			Subsystem:   "bridge",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}))
	}

	m := &Metrics{
		Renders:         counter("renders_total", "Render calls that reached the core or the bypass path."),
		RenderErrors:    counter("render_errors_total", "Render calls whose core returned an error."),
		BypassedRenders: counter("bypassed_renders_total", "Render calls served by the bypass path."),
		RejectedRenders: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "augo",
			Subsystem:   "bridge",
			Name:        "rejected_renders_total",
			Help:        "Render calls rejected before reaching the core.",
			ConstLabels: labels,
		}, []string{"reason"})),
		DroppedMIDI:       counter("dropped_midi_events_total", "MIDI events dropped because the event ring was full."),
		DroppedParams:     counter("dropped_parameter_changes_total", "Scheduled parameter changes dropped because the ring was full."),
		Instances:         gauge("instances", "Open instances."),
		PreparedInstances: gauge("prepared_instances", "Instances ready to render."),
	}
	m.tooManyFrames = m.RejectedRenders.WithLabelValues("too_many_frames")
	m.uninitialized = m.RejectedRenders.WithLabelValues("uninitialized")
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}
