package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Generations *prometheus.CounterVec
	Duration    prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tryon",
			Name:      "generations_total",
			Help:      "Try-on generations by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tryon",
			Name:      "generation_duration_seconds",
			Help:      "Time spent waiting on the model.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
	}
	reg.MustRegister(m.Generations, m.Duration)
	return m
}

func (m *Metrics) Observe(outcome string, elapsed time.Duration) {
	m.Generations.WithLabelValues(outcome).Inc()
	m.Duration.Observe(elapsed.Seconds())
}
