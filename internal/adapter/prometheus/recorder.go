package prometheus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	portmetrics "github.com/alanyang/robot-roster/internal/port/metrics"
)

var _ portmetrics.Recorder = (*Recorder)(nil)

// Recorder implements metrics.Recorder with Prometheus collectors.
// Collectors are registered lazily on first use.
type Recorder struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	evaluations      *prometheus.CounterVec
	evalLatency      *prometheus.HistogramVec
	batchSize        prometheus.Histogram
	eligibleWorkers  *prometheus.GaugeVec
	capacityRejected *prometheus.CounterVec
}

// New returns a Recorder registering into reg (prometheus.DefaultRegisterer
// when nil) under namespace ("robot_roster" when empty).
func New(reg prometheus.Registerer, namespace string) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "robot_roster"
	}
	return &Recorder{reg: reg, namespace: namespace}
}

func (r *Recorder) ensureRegistered() {
	r.once.Do(func() {
		r.evaluations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: r.namespace,
			Subsystem: "eligibility",
			Name:      "evaluations_total",
			Help:      "Total successful eligibility evaluations by pool.",
		}, []string{"pool"})

		r.evalLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: r.namespace,
			Subsystem: "eligibility",
			Name:      "evaluation_seconds",
			Help:      "Time spent inside the eligibility engine by pool.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us .. ~2.6s
		}, []string{"pool"})

		r.batchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: r.namespace,
			Subsystem: "eligibility",
			Name:      "batch_size",
			Help:      "Number of assignments folded per evaluation.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		})

		r.eligibleWorkers = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: r.namespace,
			Subsystem: "eligibility",
			Name:      "eligible_workers",
			Help:      "Size of the last eligible list returned for a pool.",
		}, []string{"pool"})

		r.capacityRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: r.namespace,
			Subsystem: "eligibility",
			Name:      "capacity_exceeded_total",
			Help:      "Evaluations rejected because a pool would know too many worker IDs.",
		}, []string{"pool"})

		r.reg.MustRegister(r.evaluations)
		r.reg.MustRegister(r.evalLatency)
		r.reg.MustRegister(r.batchSize)
		r.reg.MustRegister(r.eligibleWorkers)
		r.reg.MustRegister(r.capacityRejected)
	})
}

func (r *Recorder) ObserveEvaluation(pool string, batch, eligible int, elapsed time.Duration) {
	r.ensureRegistered()
	pool = poolLabel(pool)
	r.evaluations.WithLabelValues(pool).Inc()
	r.evalLatency.WithLabelValues(pool).Observe(elapsed.Seconds())
	r.batchSize.Observe(float64(batch))
	r.eligibleWorkers.WithLabelValues(pool).Set(float64(eligible))
}

func (r *Recorder) CapacityExceeded(pool string) {
	r.ensureRegistered()
	r.capacityRejected.WithLabelValues(poolLabel(pool)).Inc()
}

// poolLabel names stateless previews.
func poolLabel(pool string) string {
	if pool == "" {
		return "preview"
	}
	return pool
}
