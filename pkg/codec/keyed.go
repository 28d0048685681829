package codec

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

// keyedCodec handles KeyedScalarMap fields. The key set is fixed by the
// schema (or by the original data when the schema declares none); edits only
// replace values.
type keyedCodec struct{}

func (keyedCodec) Decode(spec model.FieldSpec, raw json.RawMessage) (model.Value, error) {
	if isNull(raw) {
		return model.ZeroValueFor(spec), nil
	}
	keys, values, err := orderedObject(raw)
	if err != nil {
		return nil, err
	}
	entries := make(map[string]string, len(keys))
	for _, key := range keys {
		if !spec.HasKey(key) {
			return nil, mismatch("key %q is not declared", key)
		}
		s, err := decodeString(values[key])
		if err != nil {
			return nil, mismatch("value of %q: expected a string", key)
		}
		entries[key] = s
	}
	return model.KeyedMap(orderEntries(spec, keys, entries)), nil
}

func (keyedCodec) Encode(spec model.FieldSpec, v model.Value) (json.RawMessage, error) {
	m, ok := v.(model.KeyedMap)
	if !ok {
		return nil, wrongValue(model.KindKeyedScalarMap, v)
	}
	keys, err := declaredKeys(spec, []model.Entry(m), "key")
	if err != nil {
		return nil, err
	}
	return encodeObject(keys, func(key string) any {
		value, _ := m.Lookup(key)
		return value
	})
}

func (keyedCodec) Display(spec model.FieldSpec, v model.Value) (Cell, error) {
	m, ok := v.(model.KeyedMap)
	if !ok {
		return Cell{}, wrongValue(model.KindKeyedScalarMap, v)
	}
	items := displayItems(spec, []model.Entry(m))
	return Cell{Kind: model.KindKeyedScalarMap, Text: summarizeItems(items), Items: items}, nil
}

func (keyedCodec) Apply(spec model.FieldSpec, v model.Value, intent model.EditIntent) (model.Value, error) {
	m, ok := v.(model.KeyedMap)
	if !ok {
		return nil, wrongValue(model.KindKeyedScalarMap, v)
	}
	if op := intent.Operation(); op != model.OpSet {
		return nil, unsupportedOp(model.KindKeyedScalarMap, op)
	}
	out, err := replaceEntry(spec, []model.Entry(m), intent)
	if err != nil {
		return nil, err
	}
	return model.KeyedMap(out), nil
}

// rowsCodec handles KeyValueRow fields: an ordered list of labelled values
// such as a form header. Edits replace a value by its label.
type rowsCodec struct{}

func (rowsCodec) Decode(spec model.FieldSpec, raw json.RawMessage) (model.Value, error) {
	if isNull(raw) {
		return model.ZeroValueFor(spec), nil
	}
	var rows []model.Entry
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rows); err != nil {
		return nil, mismatch("expected an array of {label, value} rows")
	}
	keys := make([]string, 0, len(rows))
	entries := make(map[string]string, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Key) == "" {
			return nil, mismatch("row label is required")
		}
		if !spec.HasKey(row.Key) {
			return nil, mismatch("row label %q is not declared", row.Key)
		}
		if _, exists := entries[row.Key]; exists {
			return nil, mismatch("duplicate row label %q", row.Key)
		}
		keys = append(keys, row.Key)
		entries[row.Key] = row.Value
	}
	return model.KeyValueRows(orderEntries(spec, keys, entries)), nil
}

func (rowsCodec) Encode(spec model.FieldSpec, v model.Value) (json.RawMessage, error) {
	rows, ok := v.(model.KeyValueRows)
	if !ok {
		return nil, wrongValue(model.KindKeyValueRow, v)
	}
	if _, err := declaredKeys(spec, []model.Entry(rows), "row label"); err != nil {
		return nil, err
	}
	if rows == nil {
		return json.RawMessage("[]"), nil
	}
	return json.Marshal([]model.Entry(rows))
}

func (rowsCodec) Display(spec model.FieldSpec, v model.Value) (Cell, error) {
	rows, ok := v.(model.KeyValueRows)
	if !ok {
		return Cell{}, wrongValue(model.KindKeyValueRow, v)
	}
	items := displayItems(spec, []model.Entry(rows))
	return Cell{Kind: model.KindKeyValueRow, Text: summarizeItems(items), Items: items}, nil
}

func (rowsCodec) Apply(spec model.FieldSpec, v model.Value, intent model.EditIntent) (model.Value, error) {
	rows, ok := v.(model.KeyValueRows)
	if !ok {
		return nil, wrongValue(model.KindKeyValueRow, v)
	}
	if op := intent.Operation(); op != model.OpSet {
		return nil, unsupportedOp(model.KindKeyValueRow, op)
	}
	out, err := replaceEntry(spec, []model.Entry(rows), intent)
	if err != nil {
		return nil, err
	}
	return model.KeyValueRows(out), nil
}

// declaredKeys returns the keys of entries, failing the way Decode would on a
// blank, undeclared or repeated key.
func declaredKeys(spec model.FieldSpec, entries []model.Entry, what string) ([]string, error) {
	keys := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		switch {
		case strings.TrimSpace(entry.Key) == "":
			return nil, mismatch("%s is required", what)
		case !spec.HasKey(entry.Key):
			return nil, mismatch("%s %q is not declared", what, entry.Key)
		case seen[entry.Key]:
			return nil, mismatch("duplicate %s %q", what, entry.Key)
		}
		seen[entry.Key] = true
		keys = append(keys, entry.Key)
	}
	return keys, nil
}

// orderEntries lays out entries in schema key order, filling declared keys
// the data omitted. Without declared keys the data order is kept.
func orderEntries(spec model.FieldSpec, dataOrder []string, entries map[string]string) []model.Entry {
	order := dataOrder
	if len(spec.Keys) > 0 {
		order = spec.Keys
	}
	if len(order) == 0 {
		return nil
	}
	out := make([]model.Entry, 0, len(order))
	for _, key := range order {
		out = append(out, model.Entry{Key: key, Value: entries[key]})
	}
	return out
}

func replaceEntry(spec model.FieldSpec, entries []model.Entry, intent model.EditIntent) ([]model.Entry, error) {
	key := intent.Path.Key
	if key == "" {
		return nil, mismatch("path key is required")
	}
	idx := -1
	for i, entry := range entries {
		if entry.Key == key {
			idx = i
			break
		}
	}
	if idx < 0 || !spec.HasKey(key) {
		return nil, model.Errorf(model.ErrUnknownField, "codec", "key %q is not part of %s", key, spec.Key)
	}
	s, err := stringValue(spec.Kind, intent.NewValue)
	if err != nil {
		return nil, err
	}
	out := make([]model.Entry, len(entries))
	copy(out, entries)
	out[idx].Value = s
	return out, nil
}

func displayItems(spec model.FieldSpec, entries []model.Entry) []Item {
	if len(entries) == 0 {
		return nil
	}
	items := make([]Item, len(entries))
	for idx, entry := range entries {
		items[idx] = Item{
			Key:   entry.Key,
			Label: schema.KeyLabel(spec, entry.Key),
			Value: entry.Value,
		}
	}
	return items
}

func summarizeItems(items []Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Label+": "+item.Value)
	}
	return strings.Join(parts, "; ")
}
