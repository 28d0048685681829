package render

import (
	"github.com/goliatone/go-formdoc/pkg/engine"
	"github.com/goliatone/go-formdoc/pkg/model"
)

// Document is what renderers consume: one form framed by its id badge and
// title, with the engine's render instructions in schema order.
type Document struct {
	FormType     string                     `json:"formType"`
	FormID       string                     `json:"formId"`
	Title        string                     `json:"title"`
	SchemaName   string                     `json:"schemaName"`
	Mode         model.Mode                 `json:"mode"`
	Instructions []engine.RenderInstruction `json:"instructions"`
}

// NewDocument renders record in view mode. Exports always go through this.
func NewDocument(s model.FormSchema, record model.FormRecord) (Document, error) {
	return NewDocumentMode(s, record, model.ModeView)
}

// NewDocumentMode renders record in mode, used by interactive surfaces that
// show edit controls.
func NewDocumentMode(s model.FormSchema, record model.FormRecord, mode model.Mode) (Document, error) {
	instructions, err := engine.Render(s, record, mode)
	if err != nil {
		return Document{}, err
	}
	if mode == "" {
		mode = model.ModeView
	}
	title := record.Title
	if title == "" {
		title = s.Name
	}
	return Document{
		FormType:     s.Type,
		FormID:       record.FormID,
		Title:        title,
		SchemaName:   s.Name,
		Mode:         mode,
		Instructions: instructions,
	}, nil
}

// Snapshot returns a copy whose instruction slice is detached from d.
// Values inside instructions are immutable and stay shared.
func (d Document) Snapshot() Document {
	out := d
	if d.Instructions != nil {
		out.Instructions = append([]engine.RenderInstruction(nil), d.Instructions...)
	}
	return out
}

// Sections groups consecutive instructions sharing a section title, so
// field order is never changed by grouping.
func (d Document) Sections() []Section {
	var out []Section
	for idx, inst := range d.Instructions {
		if idx == 0 || inst.Section != d.Instructions[idx-1].Section {
			out = append(out, Section{Title: inst.Section})
		}
		last := &out[len(out)-1]
		last.Fields = append(last.Fields, inst)
	}
	return out
}

// Section is a titled run of instructions.
type Section struct {
	Title  string
	Fields []engine.RenderInstruction
}
