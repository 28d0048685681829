package render

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/engine"
)

// FieldSubset narrows a document to fields whose key, kind or section is
// listed. Matching ignores case. An empty subset keeps every field.
type FieldSubset struct {
	Sections []string `json:"sections,omitempty"`
	Keys     []string `json:"keys,omitempty"`
	Kinds    []string `json:"kinds,omitempty"`
}

func (s FieldSubset) Empty() bool {
	return len(s.Sections) == 0 && len(s.Keys) == 0 && len(s.Kinds) == 0
}

// ParseSubset reads a comma separated filter such as
// "section:Validation Criteria,kind:string-list,name", or the same entries as
// a JSON array. Bare entries and "key:" entries name field keys.
func ParseSubset(raw string) FieldSubset {
	var subset FieldSubset
	for _, entry := range subsetEntries(raw) {
		prefix, value, ok := strings.Cut(entry, ":")
		if !ok {
			subset.Keys = appendUnique(subset.Keys, entry)
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch strings.TrimSpace(prefix) {
		case "section":
			subset.Sections = appendUnique(subset.Sections, value)
		case "kind":
			subset.Kinds = appendUnique(subset.Kinds, value)
		default:
			subset.Keys = appendUnique(subset.Keys, value)
		}
	}
	return subset
}

// ApplySubset returns doc with only the matching instructions, in their
// original order. doc itself is left as is.
func ApplySubset(doc Document, subset FieldSubset) Document {
	if subset.Empty() {
		return doc
	}
	out := doc
	out.Instructions = nil
	for _, inst := range doc.Instructions {
		if subset.matches(inst) {
			out.Instructions = append(out.Instructions, inst)
		}
	}
	return out
}

func (s FieldSubset) matches(inst engine.RenderInstruction) bool {
	return containsFold(s.Keys, inst.Key) ||
		containsFold(s.Kinds, string(inst.Kind)) ||
		(inst.Section != "" && containsFold(s.Sections, inst.Section))
}

func containsFold(list []string, value string) bool {
	value = strings.TrimSpace(value)
	return slices.ContainsFunc(list, func(item string) bool {
		return strings.EqualFold(strings.TrimSpace(item), value)
	})
}

func appendUnique(list []string, value string) []string {
	if slices.Contains(list, value) {
		return list
	}
	return append(list, value)
}

func subsetEntries(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			parts = list
		}
	}
	var entries []string
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			entries = append(entries, part)
		}
	}
	return entries
}
