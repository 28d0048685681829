package render

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// ErrorMapping splits feedback into field-level and form-level messages keyed
// by field key, ready for inline display next to edit controls.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrors turns an engine or bridge error into an ErrorMapping. Errors
// scoped to a field of doc land under that field; everything else is
// form-level.
func MapErrors(doc Document, err error) ErrorMapping {
	if err == nil {
		return ErrorMapping{}
	}
	var typed *model.Error
	if !errors.As(err, &typed) || typed.Field == "" {
		return ErrorMapping{Form: normalizeMessages([]string{err.Error()})}
	}
	return MapErrorPayload(doc, map[string][]string{typed.Field: {describeError(typed)}})
}

func describeError(err *model.Error) string {
	msg := ""
	if err.Kind != nil {
		msg = err.Kind.Error()
	}
	if err.Detail != "" {
		if msg != "" {
			msg += ": "
		}
		msg += err.Detail
	}
	if msg == "" {
		return err.Error()
	}
	return msg
}

// MapErrorPayload assigns messages keyed by paths to the fields of doc. Paths
// may be JSON pointers ("/A/fields/aliases/0"), dotted ("fields.name") or
// JSONPath-like ("$.A.fields.validation[1]"). Paths naming no field of doc
// become form-level messages.
func MapErrorPayload(doc Document, payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	keys := make(map[string]bool, len(doc.Instructions))
	for _, inst := range doc.Instructions {
		keys[inst.Key] = true
	}

	paths := make([]string, 0, len(payload))
	for path := range payload {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		messages := normalizeMessages(payload[path])
		if len(messages) == 0 {
			continue
		}
		key := fieldForPath(path, doc.FormType, keys)
		if key == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[key] = append(mapping.Fields[key], messages...)
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// normalizeMessages trims, drops blanks and removes duplicates, keeping the
// first occurrence.
func normalizeMessages(messages []string) []string {
	var out []string
	seen := make(map[string]bool, len(messages))
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message == "" || seen[message] {
			continue
		}
		seen[message] = true
		out = append(out, message)
	}
	return out
}

// fieldForPath returns the field key a path points into, skipping a leading
// form type and "fields" segment.
func fieldForPath(path, formType string, keys map[string]bool) string {
	segments := splitPath(path)
	if len(segments) > 0 && segments[0] == formType {
		segments = segments[1:]
	}
	if len(segments) > 0 && segments[0] == "fields" {
		segments = segments[1:]
	}
	if len(segments) == 0 || !keys[segments[0]] {
		return ""
	}
	return segments[0]
}

func splitPath(path string) []string {
	path = strings.TrimLeft(strings.TrimSpace(path), "#$./")
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '/' || r == '[' || r == ']'
	})
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, err := strconv.Atoi(part); err == nil {
			continue
		}
		out = append(out, strings.NewReplacer("~1", "/", "~0", "~").Replace(part))
	}
	return out
}
