package model

import "sort"

// FormRecord is the current data of one form instance. Records are values:
// edits produce a new record whose Fields map is fresh while every untouched
// Value is shared with the previous record.
type FormRecord struct {
	FormID string
	Title  string
	Fields map[string]Value
}

// Value returns the stored value for key.
func (r FormRecord) Value(key string) (Value, bool) {
	if r.Fields == nil {
		return nil, false
	}
	v, ok := r.Fields[key]
	return v, ok
}

// With returns a copy of the record with key set to v. The receiver is left
// untouched and sibling values are reference-shared. The Fields map itself is
// copied, so each call costs O(fields in the form), not O(1).
func (r FormRecord) With(key string, v Value) FormRecord {
	fields := make(map[string]Value, len(r.Fields)+1)
	for k, existing := range r.Fields {
		fields[k] = existing
	}
	fields[key] = v
	return FormRecord{
		FormID: r.FormID,
		Title:  r.Title,
		Fields: fields,
	}
}

// RecordSet maps form types to their current record.
type RecordSet map[string]FormRecord

// Types returns the form types held by the set, sorted.
func (s RecordSet) Types() []string {
	types := make([]string, 0, len(s))
	for formType := range s {
		types = append(types, formType)
	}
	sort.Strings(types)
	return types
}

// With returns a copy of the set with formType replaced by record.
func (s RecordSet) With(formType string, record FormRecord) RecordSet {
	out := make(RecordSet, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[formType] = record
	return out
}
