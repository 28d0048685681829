package model

import (
	"fmt"
	"strings"
)

// Value is the typed content of one record field. The concrete type matches
// the field's kind: Text, StringList, KeyedMap, FlagSet, ValidationTable or
// KeyValueRows. Values are treated as immutable once stored in a record.
type Value interface {
	value()
}

// Text backs Scalar and ScalarMultiline fields.
type Text string

// StringList backs StringList fields.
type StringList []string

// Entry is a single key/value pair.
type Entry struct {
	Key   string `json:"label"`
	Value string `json:"value"`
}

// KeyedMap backs KeyedScalarMap fields. Entry order is display order.
type KeyedMap []Entry

// KeyValueRows backs KeyValueRow fields, such as a form header.
type KeyValueRows []Entry

// Flag is one named checkbox.
type Flag struct {
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}

// FlagSet backs BooleanFlagSet fields. Flag order is display order.
type FlagSet []Flag

// Limit identifies which bound a validation row describes.
type Limit string

const (
	LimitUpper Limit = "upper"
	LimitLower Limit = "lower"
)

// ParseLimit accepts "upper" or "lower" in any case.
func ParseLimit(raw string) (Limit, error) {
	switch Limit(strings.ToLower(strings.TrimSpace(raw))) {
	case LimitUpper:
		return LimitUpper, nil
	case LimitLower:
		return LimitLower, nil
	default:
		return "", fmt.Errorf("model: unknown limit %q", raw)
	}
}

// ValidationRow is one descriptive validation criterion. The values are
// documentation and are never enforced against other fields.
type ValidationRow struct {
	Limit      Limit  `json:"limit"`
	Continuous string `json:"continuous,omitempty"`
	Discrete   string `json:"discrete"`
	Meaning    string `json:"meaning"`
}

// ValidationTable backs ValidationTable fields. Row order is display order and
// duplicates are permitted.
type ValidationTable []ValidationRow

func (Text) value()            {}
func (StringList) value()      {}
func (KeyedMap) value()        {}
func (KeyValueRows) value()    {}
func (FlagSet) value()         {}
func (ValidationTable) value() {}

// Lookup returns the value stored under key.
func (m KeyedMap) Lookup(key string) (string, bool) {
	if idx := entryIndex(m, key); idx >= 0 {
		return m[idx].Value, true
	}
	return "", false
}

// Index returns the position of key or -1.
func (m KeyedMap) Index(key string) int {
	return entryIndex(m, key)
}

// Lookup returns the value stored under the row label.
func (r KeyValueRows) Lookup(key string) (string, bool) {
	if idx := entryIndex(r, key); idx >= 0 {
		return r[idx].Value, true
	}
	return "", false
}

// Index returns the position of the row labelled key or -1.
func (r KeyValueRows) Index(key string) int {
	return entryIndex(r, key)
}

func entryIndex(entries []Entry, key string) int {
	for idx, entry := range entries {
		if entry.Key == key {
			return idx
		}
	}
	return -1
}

// Index returns the position of the named flag or -1.
func (f FlagSet) Index(name string) int {
	for idx, flag := range f {
		if flag.Name == name {
			return idx
		}
	}
	return -1
}

// Checked reports whether the named flag is set.
func (f FlagSet) Checked(name string) bool {
	if idx := f.Index(name); idx >= 0 {
		return f[idx].Checked
	}
	return false
}

// Positions returns the absolute row indexes carrying limit, in display order.
func (t ValidationTable) Positions(limit Limit) []int {
	var out []int
	for idx, row := range t {
		if row.Limit == limit {
			out = append(out, idx)
		}
	}
	return out
}

// Rows returns the rows carrying limit, in display order.
func (t ValidationTable) Rows(limit Limit) []ValidationRow {
	var out []ValidationRow
	for _, row := range t {
		if row.Limit == limit {
			out = append(out, row)
		}
	}
	return out
}

// ZeroValue returns the empty value for kind.
func ZeroValue(kind FieldKind) Value {
	switch kind {
	case KindStringList:
		return StringList(nil)
	case KindKeyedScalarMap:
		return KeyedMap(nil)
	case KindBooleanFlagSet:
		return FlagSet(nil)
	case KindValidationTable:
		return ValidationTable(nil)
	case KindKeyValueRow:
		return KeyValueRows(nil)
	default:
		return Text("")
	}
}

// ZeroValueFor returns the empty value for spec, pre-populating declared keys
// so keyed fields always expose their full key set.
func ZeroValueFor(spec FieldSpec) Value {
	switch spec.Kind {
	case KindKeyedScalarMap:
		if len(spec.Keys) == 0 {
			return KeyedMap(nil)
		}
		out := make(KeyedMap, len(spec.Keys))
		for idx, key := range spec.Keys {
			out[idx] = Entry{Key: key}
		}
		return out
	case KindKeyValueRow:
		if len(spec.Keys) == 0 {
			return KeyValueRows(nil)
		}
		out := make(KeyValueRows, len(spec.Keys))
		for idx, key := range spec.Keys {
			out[idx] = Entry{Key: key}
		}
		return out
	case KindBooleanFlagSet:
		if len(spec.Keys) == 0 {
			return FlagSet(nil)
		}
		out := make(FlagSet, len(spec.Keys))
		for idx, key := range spec.Keys {
			out[idx] = Flag{Name: key}
		}
		return out
	default:
		return ZeroValue(spec.Kind)
	}
}
