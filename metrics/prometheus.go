// Package metrics records per run translation metrics in Prometheus text format
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics owns its registry so every run (and every test) starts from zero.
// All methods are no-ops on a nil receiver.
type Metrics struct {
	Registry *prometheus.Registry

	ElementsWritten *prometheus.CounterVec
	ElementSets     prometheus.Gauge
	Warnings        *prometheus.CounterVec
	SurfaceFaces    *prometheus.GaugeVec
	RenumberedNodes prometheus.Gauge
	ResultSets      prometheus.Counter
	PhaseDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		ElementsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofistr_elements_written_total",
				Help: "Elements written to the mesh file",
			},
			[]string{"class"},
		),
		ElementSets: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gofistr_element_sets",
				Help: "Element sets built for materials and sections",
			},
		),
		Warnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gofistr_warnings_total",
				Help: "Non-fatal conditions reported",
			},
			[]string{"phase"},
		),
		SurfaceFaces: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gofistr_surface_faces",
				Help: "Boundary faces extracted from result meshes",
			},
			[]string{"type"},
		),
		RenumberedNodes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gofistr_renumbered_nodes",
				Help: "Surface nodes after compact renumbering",
			},
		),
		ResultSets: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gofistr_result_sets_total",
				Help: "Result increments or modes parsed",
			},
		),
		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gofistr_phase_duration_seconds",
				Help:    "Wall time per translation phase",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
			},
			[]string{"phase"},
		),
	}
}

func (m *Metrics) RecordElements(class string, n int) {
	if m == nil {
		return
	}
	m.ElementsWritten.WithLabelValues(class).Add(float64(n))
}

func (m *Metrics) RecordElementSets(n int) {
	if m == nil {
		return
	}
	m.ElementSets.Set(float64(n))
}

func (m *Metrics) RecordWarnings(phase string, n int) {
	if m == nil {
		return
	}
	m.Warnings.WithLabelValues(phase).Add(float64(n))
}

func (m *Metrics) RecordSurface(tri3, tri6, nodes int) {
	if m == nil {
		return
	}
	m.SurfaceFaces.WithLabelValues("tri3").Set(float64(tri3))
	m.SurfaceFaces.WithLabelValues("tri6").Set(float64(tri6))
	m.RenumberedNodes.Set(float64(nodes))
}

func (m *Metrics) RecordResultSets(n int) {
	if m == nil {
		return
	}
	m.ResultSets.Add(float64(n))
}

// Time returns a func that observes the elapsed time of phase when called
func (m *Metrics) Time(phase string) func() {
	start := time.Now()
	return func() {
		if m == nil {
			return
		}
		m.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
	}
}

// WriteFile writes the registry for the node exporter textfile collector
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
