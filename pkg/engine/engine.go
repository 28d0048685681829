package engine

import (
	"github.com/goliatone/go-formdoc/pkg/codec"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

// RenderInstruction describes how to present one field in a given mode.
// Display is always derived from Value through the field codec, so view and
// edit projections can never drift apart.
type RenderInstruction struct {
	Key      string          `json:"key"`
	Label    string          `json:"label"`
	Section  string          `json:"section,omitempty"`
	Help     string          `json:"help,omitempty"`
	Kind     model.FieldKind `json:"kind"`
	Display  codec.Cell      `json:"display"`
	Value    model.Value     `json:"-"`
	Editable bool            `json:"editable"`
}

// Render returns one instruction per schema field in schema order. Fields
// missing from the record render as the zero value of their kind. Raw mode is
// a textual projection handled by the bridge and is rejected here.
func Render(s model.FormSchema, record model.FormRecord, mode model.Mode) ([]RenderInstruction, error) {
	switch mode {
	case model.ModeView, model.ModeEdit:
	case "":
		mode = model.ModeView
	default:
		return nil, model.Errorf(model.ErrSchemaMismatch, "engine", "mode %q has no field projection", mode).WithFormType(s.Type)
	}

	out := make([]RenderInstruction, 0, len(s.Fields))
	for _, spec := range s.Fields {
		value, ok := record.Value(spec.Key)
		if !ok || value == nil {
			value = model.ZeroValueFor(spec)
		}
		cell, err := codec.Display(spec, value)
		if err != nil {
			return nil, model.Scope(err, s.Type, spec.Key)
		}
		out = append(out, RenderInstruction{
			Key:      spec.Key,
			Label:    spec.Label,
			Section:  spec.Section,
			Help:     spec.Help,
			Kind:     spec.Kind,
			Display:  cell,
			Value:    value,
			Editable: mode == model.ModeEdit,
		})
	}
	return out, nil
}

// ApplyIntent merges intent into record and returns the new record. Only the
// targeted field is replaced; every sibling value is shared with the input.
func ApplyIntent(s model.FormSchema, record model.FormRecord, intent model.EditIntent) (model.FormRecord, error) {
	if intent.FormType != "" && intent.FormType != s.Type {
		return model.FormRecord{}, model.Errorf(model.ErrSchemaMismatch, "engine",
			"intent for form %q applied to schema %q", intent.FormType, s.Type).WithFormType(intent.FormType)
	}
	spec, ok := s.Field(intent.FieldKey)
	if !ok {
		return model.FormRecord{}, model.Errorf(model.ErrUnknownField, "engine",
			"%q is not declared by %s", intent.FieldKey, s.Type).WithFormType(s.Type).WithField(intent.FieldKey)
	}
	if intent.FormType == "" {
		intent.FormType = s.Type
	}

	current, _ := record.Value(spec.Key)
	next, err := codec.Apply(spec, current, intent)
	if err != nil {
		return model.FormRecord{}, err
	}
	return record.With(spec.Key, next), nil
}

// Engine binds the pure functions to a schema registry so callers can work
// with form types and intents alone.
type Engine struct {
	schemas *schema.Registry
}

// New returns an Engine over reg. A nil registry falls back to the embedded
// default schemas.
func New(reg *schema.Registry) *Engine {
	if reg == nil {
		reg = schema.MustDefault()
	}
	return &Engine{schemas: reg}
}

// Schemas exposes the registry the engine resolves form types against.
func (e *Engine) Schemas() *schema.Registry {
	return e.schemas
}

// Render resolves formType and renders record in mode.
func (e *Engine) Render(formType string, record model.FormRecord, mode model.Mode) ([]RenderInstruction, error) {
	s, err := e.schemas.Get(formType)
	if err != nil {
		return nil, err
	}
	return Render(s, record, mode)
}

// Apply resolves intent.FormType and merges the intent into record.
func (e *Engine) Apply(record model.FormRecord, intent model.EditIntent) (model.FormRecord, error) {
	s, err := e.schemas.Get(intent.FormType)
	if err != nil {
		return model.FormRecord{}, err
	}
	return ApplyIntent(s, record, intent)
}
