package orchestrator

import (
	"time"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
)

// Metrics receives session events. internal/metrics provides the prometheus
// implementation.
type Metrics interface {
	render.ExportObserver
	ObserveRender(formType string, mode model.Mode)
	ObserveIntent(formType string, err error)
	ObserveLoad(err error)
}

type nopMetrics struct{}

func (nopMetrics) ObserveRender(string, model.Mode)       {}
func (nopMetrics) ObserveIntent(string, error)            {}
func (nopMetrics) ObserveLoad(error)                      {}
func (nopMetrics) ObserveExport(string, time.Time, error) {}
