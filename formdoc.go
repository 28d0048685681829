// Package formdoc renders and edits data dictionary forms. The root package
// re-exports the most common entry points; the pkg/ tree holds the pieces.
package formdoc

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/orchestrator"
	"github.com/goliatone/go-formdoc/pkg/render"
)

// RenderOptions describes per-request data renderers use, such as inline
// errors after a rejected edit.
type RenderOptions = render.RenderOptions

// FieldSubset aliases render.FieldSubset for partial rendering by section,
// key or kind.
type FieldSubset = render.FieldSubset

// EditIntent aliases model.EditIntent.
type EditIntent = model.EditIntent

// RecordSet aliases model.RecordSet.
type RecordSet = model.RecordSet

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(options...)
}

// RenderHTML renders formType from the sample or configured records as an
// HTML page. It is the simplest entry point for callers that just want
// output.
func RenderHTML(ctx context.Context, formType string, mode model.Mode, options ...orchestrator.Option) ([]byte, error) {
	orch, err := orchestrator.New(options...)
	if err != nil {
		return nil, err
	}
	defer orch.Close()

	out, _, err := orch.Render(ctx, formType, mode, "html", render.RenderOptions{})
	return out, err
}

// ApplyIntents applies intents in order to set and returns the updated set.
// The input set is not modified.
func ApplyIntents(set RecordSet, intents ...EditIntent) (RecordSet, error) {
	orch, err := orchestrator.New(orchestrator.WithRecords(set))
	if err != nil {
		return nil, err
	}
	defer orch.Close()

	for _, intent := range intents {
		if _, err := orch.Apply(intent); err != nil {
			return nil, err
		}
	}
	return orch.Records(), nil
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme and variant choices are resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithRecords seeds the orchestrator with set instead of the sample records.
func WithRecords(set RecordSet) orchestrator.Option {
	return orchestrator.WithRecords(set)
}
