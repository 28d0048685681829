package render

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// Form input names used by edit-mode pages to post an EditIntent without
// JavaScript. ParseIntentForm reads the same names back.
const (
	InputFormType = "formType"
	InputFieldKey = "fieldKey"
	InputOp       = "op"
	InputIndex    = "index"
	InputKey      = "key"
	InputLimit    = "limit"
	InputColumn   = "column"
	InputValue    = "newValue"
)

// HiddenField represents a hidden form input emitted alongside the visible
// controls.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// IntentFields returns the hidden inputs addressing one edit target. The
// visible control supplies InputValue.
func IntentFields(formType, fieldKey string, op model.EditOp, path model.Path) []HiddenField {
	fields := map[string]string{
		InputFormType: formType,
		InputFieldKey: fieldKey,
		InputOp:       string(op),
	}
	if path.Index != nil {
		fields[InputIndex] = strconv.Itoa(*path.Index)
	}
	if path.Key != "" {
		fields[InputKey] = path.Key
	}
	if path.Limit != "" {
		fields[InputLimit] = string(path.Limit)
	}
	if path.Column != "" {
		fields[InputColumn] = string(path.Column)
	}
	return SortedHiddenFields(fields)
}

// ParseIntentForm builds an EditIntent from posted form values. A flag set
// posts "on"/"true" for checked boxes; op "set" on a flag sends a bool.
func ParseIntentForm(values url.Values, kind model.FieldKind) (model.EditIntent, error) {
	op, err := model.ParseEditOp(values.Get(InputOp))
	if err != nil {
		return model.EditIntent{}, model.Errorf(model.ErrSchemaMismatch, "render", "%v", err)
	}
	intent := model.EditIntent{
		FormType: strings.TrimSpace(values.Get(InputFormType)),
		FieldKey: strings.TrimSpace(values.Get(InputFieldKey)),
		Op:       op,
		Path: model.Path{
			Key:    values.Get(InputKey),
			Limit:  model.Limit(values.Get(InputLimit)),
			Column: model.Column(values.Get(InputColumn)),
		},
	}
	if raw := strings.TrimSpace(values.Get(InputIndex)); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return model.EditIntent{}, model.Errorf(model.ErrSchemaMismatch, "render", "index %q is not a number", raw)
		}
		intent.Path.Index = &idx
	}

	switch {
	case op == model.OpToggle, op == model.OpRemove, op == model.OpRemoveRow, op == model.OpAddRow:
	case kind == model.KindBooleanFlagSet:
		switch strings.ToLower(strings.TrimSpace(values.Get(InputValue))) {
		case "on", "true", "1", "checked":
			intent.NewValue = true
		default:
			intent.NewValue = false
		}
	default:
		intent.NewValue = values.Get(InputValue)
	}
	return intent, nil
}

// MergeHiddenFields returns a copy of base with fields applied. Blank names
// are dropped and the last field wins on a repeated name.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields normalises and sorts hidden fields for deterministic
// rendering. Empty names and empty values are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	names := make([]string, 0, len(fields))
	for name, value := range fields {
		if strings.TrimSpace(name) == "" || value == "" {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return result
}
