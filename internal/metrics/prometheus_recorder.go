package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	queryDuration  *prom.HistogramVec
	observations   *prom.CounterVec
	transitions    *prom.CounterVec
	cycleDuration  prom.Histogram
	cyclesSkipped  *prom.CounterVec
	favorites      prom.Gauge
	saveFailures   prom.Counter
	notifyFailures prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.queryDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "favwatch",
			Name:      "query_duration_seconds",
			Help:      "Duration of individual presence queries",
			Buckets:   prom.DefBuckets,
		}, []string{"result"})
		pr.observations = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "favwatch",
			Name:      "observations_total",
			Help:      "Presence observations by result",
		}, []string{"result"})
		pr.transitions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "favwatch",
			Name:      "transitions_total",
			Help:      "Detected presence transitions by event",
		}, []string{"event"})
		pr.cycleDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "favwatch",
			Name:      "cycle_duration_seconds",
			Help:      "Total poll cycle duration",
			Buckets:   prom.DefBuckets,
		})
		pr.cyclesSkipped = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "favwatch",
			Name:      "cycles_skipped_total",
			Help:      "Poll cycles skipped without querying, by reason",
		}, []string{"reason"})
		pr.favorites = prom.NewGauge(prom.GaugeOpts{
			Namespace: "favwatch",
			Name:      "favorites",
			Help:      "Number of favorites polled in the last cycle",
		})
		pr.saveFailures = prom.NewCounter(prom.CounterOpts{
			Namespace: "favwatch",
			Name:      "state_save_failures_total",
			Help:      "Failed state persistence attempts (retried next cycle)",
		})
		pr.notifyFailures = prom.NewCounter(prom.CounterOpts{
			Namespace: "favwatch",
			Name:      "notify_failures_total",
			Help:      "Notification deliveries that returned an error",
		})
		reg.MustRegister(pr.queryDuration, pr.observations, pr.transitions, pr.cycleDuration, pr.cyclesSkipped, pr.favorites, pr.saveFailures, pr.notifyFailures)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveQueryDuration(d time.Duration, result string) {
	if p == nil || p.queryDuration == nil {
		return
	}
	p.queryDuration.WithLabelValues(result).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncObservation(result string) {
	if p == nil || p.observations == nil {
		return
	}
	p.observations.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) IncTransition(event string) {
	if p == nil || p.transitions == nil {
		return
	}
	p.transitions.WithLabelValues(event).Inc()
}

func (p *PrometheusRecorder) ObserveCycleDuration(d time.Duration) {
	if p == nil || p.cycleDuration == nil {
		return
	}
	p.cycleDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCycleSkipped(reason string) {
	if p == nil || p.cyclesSkipped == nil {
		return
	}
	p.cyclesSkipped.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) SetFavorites(n int) {
	if p == nil || p.favorites == nil {
		return
	}
	p.favorites.Set(float64(n))
}

func (p *PrometheusRecorder) IncStateSaveFailure() {
	if p == nil || p.saveFailures == nil {
		return
	}
	p.saveFailures.Inc()
}

func (p *PrometheusRecorder) IncNotifyFailure() {
	if p == nil || p.notifyFailures == nil {
		return
	}
	p.notifyFailures.Inc()
}
