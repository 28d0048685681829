package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formdoc/pkg/model"
)

type documentFile struct {
	Forms map[string]formFile `json:"forms" yaml:"forms"`
}

type formFile struct {
	Name   string      `json:"name" yaml:"name"`
	Fields []fieldFile `json:"fields" yaml:"fields"`
}

type fieldFile struct {
	Key       string            `json:"key" yaml:"key"`
	Label     string            `json:"label" yaml:"label"`
	Kind      string            `json:"kind" yaml:"kind"`
	Section   string            `json:"section" yaml:"section"`
	Keys      []string          `json:"keys" yaml:"keys"`
	KeyLabels map[string]string `json:"keyLabels" yaml:"keyLabels"`
	Help      string            `json:"help" yaml:"help"`
}

// LoadFS walks fsys and parses every JSON/YAML schema file into a Registry.
// A form type declared by more than one file is an error. A nil fsys yields
// an empty registry.
func LoadFS(fsys fs.FS) (*Registry, error) {
	if fsys == nil {
		return NewRegistry()
	}

	var (
		schemas []model.FormSchema
		origin  = make(map[string]string)
	)

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		types := make([]string, 0, len(doc.Forms))
		for formType := range doc.Forms {
			types = append(types, formType)
		}
		sort.Strings(types)

		for _, rawType := range types {
			formType := strings.TrimSpace(rawType)
			if formType == "" {
				return fmt.Errorf("schema: file %s defines an empty form type", path)
			}
			if prev, exists := origin[formType]; exists {
				return fmt.Errorf("schema: duplicate form type %q (files %s, %s)", formType, prev, path)
			}
			origin[formType] = path

			s, err := normaliseForm(formType, doc.Forms[rawType], path)
			if err != nil {
				return err
			}
			schemas = append(schemas, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return NewRegistry(schemas...)
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("schema: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("schema: parse %s: invalid JSON or YAML", source)
}

func normaliseForm(formType string, raw formFile, source string) (model.FormSchema, error) {
	out := model.FormSchema{
		Type:   formType,
		Name:   strings.TrimSpace(raw.Name),
		Fields: make([]model.FieldSpec, 0, len(raw.Fields)),
	}
	if out.Name == "" {
		out.Name = formType
	}

	for idx, field := range raw.Fields {
		kind, err := model.ParseFieldKind(field.Kind)
		if err != nil {
			return model.FormSchema{}, fmt.Errorf("schema: %s form %q field %d: %w", source, formType, idx, err)
		}
		if len(field.Keys) > 0 && !kind.Keyed() {
			return model.FormSchema{}, fmt.Errorf("schema: %s form %q field %q: keys are only valid for keyed kinds", source, formType, field.Key)
		}
		label := strings.TrimSpace(field.Label)
		if label == "" {
			label = DefaultLabeler(field.Key)
		}
		out.Fields = append(out.Fields, model.FieldSpec{
			Key:       strings.TrimSpace(field.Key),
			Label:     label,
			Kind:      kind,
			Section:   strings.TrimSpace(field.Section),
			Keys:      field.Keys,
			KeyLabels: field.KeyLabels,
			Help:      strings.TrimSpace(field.Help),
		})
	}

	if err := out.Validate(); err != nil {
		return model.FormSchema{}, fmt.Errorf("schema: %s: %w", source, err)
	}
	return out, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
