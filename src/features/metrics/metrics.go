package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels for completed build passes.
const (
	ResultSuccess = "success"
	ResultPartial = "partial"
	ResultFailure = "failure"
)

// Reasons an event does not trigger a build.
const (
	ReasonFiltered  = "filtered"
	ReasonDebounced = "debounced"
)

// BuildMetrics records what the dispatchers do, labelled by domain ("style", "script").
type BuildMetrics struct {
	builds   *prometheus.CounterVec
	ignored  *prometheus.CounterVec
	compiled *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewBuildMetrics registers the build collectors on reg.
func NewBuildMetrics(reg prometheus.Registerer) *BuildMetrics {
	factory := promauto.With(reg)
	return &BuildMetrics{
		builds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskrunner",
			Name:      "builds_total",
			Help:      "Build passes run, by domain and result.",
		}, []string{"domain", "result"}),
		ignored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskrunner",
			Name:      "events_ignored_total",
			Help:      "File events that did not trigger a build, by domain and reason.",
		}, []string{"domain", "reason"}),
		compiled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskrunner",
			Name:      "outputs_written_total",
			Help:      "Output files written or bundler runs completed, by domain.",
		}, []string{"domain"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "taskrunner",
			Name:      "build_duration_seconds",
			Help:      "Wall time of a build pass, by domain.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"domain"}),
	}
}

// ObserveBuild records one finished pass. Safe on a nil receiver.
func (m *BuildMetrics) ObserveBuild(domain, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(domain, result).Inc()
	m.duration.WithLabelValues(domain).Observe(elapsed.Seconds())
}

// ObserveIgnored records an event that was dropped before building.
func (m *BuildMetrics) ObserveIgnored(domain, reason string) {
	if m == nil {
		return
	}
	m.ignored.WithLabelValues(domain, reason).Inc()
}

// ObserveOutput records one written output.
func (m *BuildMetrics) ObserveOutput(domain string) {
	if m == nil {
		return
	}
	m.compiled.WithLabelValues(domain).Inc()
}
