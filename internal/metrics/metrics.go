package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// Metrics records session activity: renders, intents, record set loads and
// exports.
type Metrics struct {
	Renders *prometheus.CounterVec
	Intents *prometheus.CounterVec
	Loads   *prometheus.CounterVec
	Exports *prometheus.CounterVec

	ExportLatency *prometheus.HistogramVec
}

// New registers every collector with reg. Passing nil uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Renders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formdoc_renders_total",
			Help: "Form renders by form type and mode",
		}, []string{"form_type", "mode"}),

		Intents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formdoc_intents_total",
			Help: "Edit intents by form type and result",
		}, []string{"form_type", "result"}), // result: "applied" or an error kind

		Loads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formdoc_loads_total",
			Help: "Record set loads by result",
		}, []string{"result"}),

		Exports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formdoc_exports_total",
			Help: "Exports by backend and result",
		}, []string{"backend", "result"}),

		ExportLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formdoc_export_duration_seconds",
			Help:    "Duration of export jobs by backend",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"backend"}),
	}
}

// ObserveRender counts one render.
func (m *Metrics) ObserveRender(formType string, mode model.Mode) {
	if m != nil {
		m.Renders.WithLabelValues(formType, string(mode)).Inc()
	}
}

// ObserveIntent counts one intent under its outcome.
func (m *Metrics) ObserveIntent(formType string, err error) {
	if m != nil {
		m.Intents.WithLabelValues(formType, result(err, "applied")).Inc()
	}
}

// ObserveLoad counts one record set load.
func (m *Metrics) ObserveLoad(err error) {
	if m != nil {
		m.Loads.WithLabelValues(result(err, "ok")).Inc()
	}
}

// ObserveExport counts one finished export and its duration since start.
func (m *Metrics) ObserveExport(backend string, start time.Time, err error) {
	if m != nil {
		m.Exports.WithLabelValues(backend, result(err, "ok")).Inc()
		m.ExportLatency.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	}
}

// result labels err by its taxonomy kind so cardinality stays bounded.
func result(err error, success string) string {
	if err == nil {
		return success
	}
	return kindLabel(model.KindOf(err))
}

var kindLabels = map[error]string{
	model.ErrUnknownFormType: "unknown_form_type",
	model.ErrUnknownField:    "unknown_field",
	model.ErrUnknownFlag:     "unknown_flag",
	model.ErrIndexOutOfRange: "index_out_of_range",
	model.ErrSchemaMismatch:  "schema_mismatch",
	model.ErrParse:           "parse",
	model.ErrExportFailure:   "export_failure",
}

func kindLabel(kind error) string {
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	return "error"
}
