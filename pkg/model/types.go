package model

import (
	"fmt"
	"strings"
)

// FieldKind is the structural category of a form field. It decides which
// codec displays and edits the value.
type FieldKind string

const (
	KindScalar          FieldKind = "scalar"
	KindScalarMultiline FieldKind = "scalar-multiline"
	KindStringList      FieldKind = "string-list"
	KindKeyedScalarMap  FieldKind = "keyed-scalar-map"
	KindBooleanFlagSet  FieldKind = "boolean-flag-set"
	KindValidationTable FieldKind = "validation-table"
	KindKeyValueRow     FieldKind = "key-value-row"
)

var allKinds = []FieldKind{
	KindScalar,
	KindScalarMultiline,
	KindStringList,
	KindKeyedScalarMap,
	KindBooleanFlagSet,
	KindValidationTable,
	KindKeyValueRow,
}

// ParseFieldKind normalises a kind name read from a schema file.
func ParseFieldKind(raw string) (FieldKind, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for _, kind := range allKinds {
		if string(kind) == name {
			return kind, nil
		}
	}
	return "", fmt.Errorf("model: unknown field kind %q", raw)
}

// Keyed reports whether the kind carries a fixed, ordered key set.
func (k FieldKind) Keyed() bool {
	switch k {
	case KindKeyedScalarMap, KindBooleanFlagSet, KindKeyValueRow:
		return true
	default:
		return false
	}
}

// FieldSpec declares one field of a form schema. Keys lists the fixed key set
// for keyed maps, flag names for flag sets and row labels for key/value rows.
type FieldSpec struct {
	Key     string    `json:"key" yaml:"key"`
	Label   string    `json:"label" yaml:"label"`
	Kind    FieldKind `json:"kind" yaml:"kind"`
	Section string    `json:"section,omitempty" yaml:"section,omitempty"`
	Keys    []string  `json:"keys,omitempty" yaml:"keys,omitempty"`
	Help    string    `json:"help,omitempty" yaml:"help,omitempty"`
	// KeyLabels overrides the derived display label of individual keys.
	KeyLabels map[string]string `json:"keyLabels,omitempty" yaml:"keyLabels,omitempty"`
}

// HasKey reports whether name belongs to the declared key set. Fields without
// a declared key set accept any key.
func (f FieldSpec) HasKey(name string) bool {
	if len(f.Keys) == 0 {
		return true
	}
	for _, key := range f.Keys {
		if key == name {
			return true
		}
	}
	return false
}

// FormSchema is the ordered declaration of a form type's fields.
type FormSchema struct {
	Type   string      `json:"type" yaml:"type"`
	Name   string      `json:"name" yaml:"name"`
	Fields []FieldSpec `json:"fields" yaml:"fields"`
}

// Field returns the field spec registered under key.
func (s FormSchema) Field(key string) (FieldSpec, bool) {
	for _, field := range s.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return FieldSpec{}, false
}

// Keys returns the field keys in schema order.
func (s FormSchema) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		keys = append(keys, field.Key)
	}
	return keys
}

// Validate checks the schema invariants: a type, unique non-empty keys and
// known kinds.
func (s FormSchema) Validate() error {
	if strings.TrimSpace(s.Type) == "" {
		return fmt.Errorf("model: schema type is required")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("model: schema %q declares no fields", s.Type)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for idx, field := range s.Fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			return fmt.Errorf("model: schema %q field %d has an empty key", s.Type, idx)
		}
		if _, exists := seen[key]; exists {
			return fmt.Errorf("model: schema %q declares field %q twice", s.Type, key)
		}
		seen[key] = struct{}{}
		if _, err := ParseFieldKind(string(field.Kind)); err != nil {
			return fmt.Errorf("model: schema %q field %q: %w", s.Type, key, err)
		}
		if err := uniqueKeys(field.Keys); err != nil {
			return fmt.Errorf("model: schema %q field %q: %w", s.Type, key, err)
		}
	}
	return nil
}

func uniqueKeys(keys []string) error {
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, exists := seen[key]; exists {
			return fmt.Errorf("duplicate key %q", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Mode selects which projection of a record is produced.
type Mode string

const (
	ModeView Mode = "view"
	ModeEdit Mode = "edit"
	ModeRaw  Mode = "raw"
)

// ParseMode defaults to ModeView for an empty string.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeView:
		return ModeView, nil
	case ModeEdit:
		return ModeEdit, nil
	case ModeRaw:
		return ModeRaw, nil
	default:
		return "", fmt.Errorf("model: unknown mode %q", raw)
	}
}
