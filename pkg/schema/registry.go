package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// Registry holds the field schema of every known form type. It is built once
// and never mutated afterwards, so it is safe for concurrent readers without
// locking.
type Registry struct {
	schemas map[string]model.FormSchema
	types   []string
}

// NewRegistry validates and registers the supplied schemas. Duplicate form
// types are rejected.
func NewRegistry(schemas ...model.FormSchema) (*Registry, error) {
	reg := &Registry{schemas: make(map[string]model.FormSchema, len(schemas))}
	for _, s := range schemas {
		if err := reg.register(s); err != nil {
			return nil, err
		}
	}
	sort.Strings(reg.types)
	return reg, nil
}

// MustRegistry panics when NewRegistry fails. Useful for init-time wiring.
func MustRegistry(schemas ...model.FormSchema) *Registry {
	reg, err := NewRegistry(schemas...)
	if err != nil {
		panic(err)
	}
	return reg
}

func (r *Registry) register(s model.FormSchema) error {
	s.Type = strings.TrimSpace(s.Type)
	if err := s.Validate(); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if _, exists := r.schemas[s.Type]; exists {
		return fmt.Errorf("schema: form type %q already registered", s.Type)
	}
	r.schemas[s.Type] = cloneSchema(s)
	r.types = append(r.types, s.Type)
	return nil
}

// Get returns the schema of formType. Unknown types fail with
// model.ErrUnknownFormType.
func (r *Registry) Get(formType string) (model.FormSchema, error) {
	if r != nil {
		if s, ok := r.schemas[formType]; ok {
			return cloneSchema(s), nil
		}
	}
	return model.FormSchema{}, model.Errorf(model.ErrUnknownFormType, "schema", "%q is not registered", formType).WithFormType(formType)
}

// MustGet panics if the schema is missing.
func (r *Registry) MustGet(formType string) model.FormSchema {
	s, err := r.Get(formType)
	if err != nil {
		panic(err)
	}
	return s
}

// Has reports whether formType is registered.
func (r *Registry) Has(formType string) bool {
	if r == nil {
		return false
	}
	_, ok := r.schemas[formType]
	return ok
}

// Types returns the registered form types, sorted.
func (r *Registry) Types() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.types...)
}

// Schemas returns every registered schema ordered by form type.
func (r *Registry) Schemas() []model.FormSchema {
	if r == nil {
		return nil
	}
	out := make([]model.FormSchema, 0, len(r.types))
	for _, formType := range r.types {
		out = append(out, cloneSchema(r.schemas[formType]))
	}
	return out
}

// Len reports the number of registered schemas.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.types)
}

func cloneSchema(s model.FormSchema) model.FormSchema {
	out := s
	out.Fields = make([]model.FieldSpec, len(s.Fields))
	for idx, field := range s.Fields {
		field.Keys = append([]string(nil), field.Keys...)
		if len(field.KeyLabels) > 0 {
			labels := make(map[string]string, len(field.KeyLabels))
			for k, v := range field.KeyLabels {
				labels[k] = v
			}
			field.KeyLabels = labels
		}
		out.Fields[idx] = field
	}
	return out
}
