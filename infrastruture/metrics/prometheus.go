package metrics

import (
	"net/http"

	"github.com/beka-birhanu/vinom-evolve/service/i"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vinom_evolve"

// PrometheusRecorder exports simulation progress on its own registry.
type PrometheusRecorder struct {
	registry       *prometheus.Registry
	ticks          prometheus.Counter
	generations    prometheus.Counter
	solves         prometheus.Counter
	maxFitness     prometheus.Gauge
	averageFitness prometheus.Gauge
	arrived        prometheus.Gauge
}

// NewPrometheusRecorder creates a recorder with the Go runtime collectors registered.
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Simulation ticks run.",
		}),
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generations scored and replaced.",
		}),
		solves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solves_total",
			Help:      "Mazes solved for the first time.",
		}),
		maxFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation_max_fitness",
			Help:      "Raw maximum fitness of the last scored generation.",
		}),
		averageFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation_average_fitness",
			Help:      "Average normalized fitness of the last scored generation.",
		}),
		arrived: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation_arrived",
			Help:      "Agents of the last scored generation that reached the goal.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.ticks, r.generations, r.solves, r.maxFitness, r.averageFitness, r.arrived,
	)
	return r
}

var _ i.Recorder = (*PrometheusRecorder)(nil)

// Ticks implements i.Recorder.
func (r *PrometheusRecorder) Ticks(n int) {
	if n > 0 {
		r.ticks.Add(float64(n))
	}
}

// Generation implements i.Recorder.
func (r *PrometheusRecorder) Generation(maxFitness, averageFitness float64, arrived int) {
	r.generations.Inc()
	r.maxFitness.Set(maxFitness)
	r.averageFitness.Set(averageFitness)
	r.arrived.Set(float64(arrived))
}

// Solved implements i.Recorder.
func (r *PrometheusRecorder) Solved() {
	r.solves.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
