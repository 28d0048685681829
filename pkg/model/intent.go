package model

import (
	"fmt"
	"strings"
)

// EditOp names the edit an intent performs.
type EditOp string

const (
	OpSet       EditOp = "set"
	OpToggle    EditOp = "toggle"
	OpInsert    EditOp = "insert"
	OpRemove    EditOp = "remove"
	OpAddRow    EditOp = "add-row"
	OpRemoveRow EditOp = "remove-row"
)

// ParseEditOp defaults to OpSet for an empty string.
func ParseEditOp(raw string) (EditOp, error) {
	op := EditOp(strings.ToLower(strings.TrimSpace(raw)))
	switch op {
	case "":
		return OpSet, nil
	case OpSet, OpToggle, OpInsert, OpRemove, OpAddRow, OpRemoveRow:
		return op, nil
	default:
		return "", fmt.Errorf("model: unknown edit op %q", raw)
	}
}

// Column names an editable validation row column.
type Column string

const (
	ColumnDiscrete   Column = "discrete"
	ColumnMeaning    Column = "meaning"
	ColumnContinuous Column = "continuous"
)

// Path addresses a location inside a field value: a list index, a map key or
// flag name, or a validation row (limit, index, column).
type Path struct {
	Index  *int   `json:"index,omitempty"`
	Key    string `json:"key,omitempty"`
	Limit  Limit  `json:"limit,omitempty"`
	Column Column `json:"column,omitempty"`
}

// IndexPath addresses position idx.
func IndexPath(idx int) Path {
	return Path{Index: &idx}
}

// KeyPath addresses a map key, flag name or row label.
func KeyPath(key string) Path {
	return Path{Key: key}
}

// RowPath addresses a validation row cell.
func RowPath(limit Limit, idx int, column Column) Path {
	return Path{Index: &idx, Limit: limit, Column: column}
}

// EditIntent describes one requested change before it is merged into a
// record. NewValue is a string for text edits and a bool when setting a flag.
type EditIntent struct {
	FormType string `json:"formType"`
	FieldKey string `json:"fieldKey"`
	Op       EditOp `json:"op,omitempty"`
	Path     Path   `json:"path,omitempty"`
	NewValue any    `json:"newValue,omitempty"`
}

// Operation returns the intent op, defaulting to OpSet.
func (i EditIntent) Operation() EditOp {
	if i.Op == "" {
		return OpSet
	}
	return i.Op
}

func (i EditIntent) String() string {
	var b strings.Builder
	b.WriteString(string(i.Operation()))
	b.WriteString(" ")
	b.WriteString(i.FormType)
	b.WriteString(".")
	b.WriteString(i.FieldKey)
	if i.Path.Limit != "" {
		b.WriteString("[")
		b.WriteString(string(i.Path.Limit))
		b.WriteString("]")
	}
	if i.Path.Index != nil {
		fmt.Fprintf(&b, "[%d]", *i.Path.Index)
	}
	if i.Path.Key != "" {
		b.WriteString("[")
		b.WriteString(i.Path.Key)
		b.WriteString("]")
	}
	if i.Path.Column != "" {
		b.WriteString(".")
		b.WriteString(string(i.Path.Column))
	}
	return b.String()
}
