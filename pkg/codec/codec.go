package codec

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// Codec converts between one FieldKind's typed value and its wire, display
// and edit representations. Implementations are pure: they never mutate the
// value they receive.
type Codec interface {
	// Decode converts the JSON fragment of a field into a typed value. A
	// fragment whose shape does not match the kind fails with
	// model.ErrSchemaMismatch.
	Decode(spec model.FieldSpec, raw json.RawMessage) (model.Value, error)
	// Encode returns the compact JSON fragment for v. Keyed values keep their
	// display order.
	Encode(spec model.FieldSpec, v model.Value) (json.RawMessage, error)
	// Display produces the read-only presentation of v.
	Display(spec model.FieldSpec, v model.Value) (Cell, error)
	// Apply returns a new value with the intent merged in.
	Apply(spec model.FieldSpec, v model.Value, intent model.EditIntent) (model.Value, error)
}

var codecs = map[model.FieldKind]Codec{
	model.KindScalar:          textCodec{multiline: false},
	model.KindScalarMultiline: textCodec{multiline: true},
	model.KindStringList:      listCodec{},
	model.KindKeyedScalarMap:  keyedCodec{},
	model.KindBooleanFlagSet:  flagCodec{},
	model.KindValidationTable: tableCodec{},
	model.KindKeyValueRow:     rowsCodec{},
}

// For returns the codec registered for kind.
func For(kind model.FieldKind) (Codec, error) {
	c, ok := codecs[kind]
	if !ok {
		return nil, model.Errorf(model.ErrSchemaMismatch, "codec", "no codec for kind %q", kind)
	}
	return c, nil
}

// Decode is a convenience wrapper dispatching on spec.Kind. Fragments that
// are absent or null decode to the zero value for the field.
func Decode(spec model.FieldSpec, raw json.RawMessage) (model.Value, error) {
	c, err := For(spec.Kind)
	if err != nil {
		return nil, model.Scope(err, "", spec.Key)
	}
	v, err := c.Decode(spec, raw)
	if err != nil {
		return nil, model.Scope(err, "", spec.Key)
	}
	return v, nil
}

// Encode dispatches on spec.Kind.
func Encode(spec model.FieldSpec, v model.Value) (json.RawMessage, error) {
	c, err := For(spec.Kind)
	if err != nil {
		return nil, model.Scope(err, "", spec.Key)
	}
	if v == nil {
		v = model.ZeroValueFor(spec)
	}
	out, err := c.Encode(spec, v)
	if err != nil {
		return nil, model.Scope(err, "", spec.Key)
	}
	return out, nil
}

// Display dispatches on spec.Kind. A nil value displays as the zero value.
func Display(spec model.FieldSpec, v model.Value) (Cell, error) {
	c, err := For(spec.Kind)
	if err != nil {
		return Cell{}, model.Scope(err, "", spec.Key)
	}
	if v == nil {
		v = model.ZeroValueFor(spec)
	}
	cell, err := c.Display(spec, v)
	if err != nil {
		return Cell{}, model.Scope(err, "", spec.Key)
	}
	return cell, nil
}

// Apply dispatches on spec.Kind. A nil value is edited as the zero value.
func Apply(spec model.FieldSpec, v model.Value, intent model.EditIntent) (model.Value, error) {
	c, err := For(spec.Kind)
	if err != nil {
		return nil, model.Scope(err, intent.FormType, spec.Key)
	}
	if v == nil {
		v = model.ZeroValueFor(spec)
	}
	out, err := c.Apply(spec, v, intent)
	if err != nil {
		return nil, model.Scope(err, intent.FormType, spec.Key)
	}
	return out, nil
}

func mismatch(format string, args ...any) error {
	return model.Errorf(model.ErrSchemaMismatch, "codec", format, args...)
}

func unsupportedOp(kind model.FieldKind, op model.EditOp) error {
	return mismatch("op %q is not supported by %s fields", op, kind)
}

func wrongValue(kind model.FieldKind, v model.Value) error {
	return mismatch("%s field holds %T", kind, v)
}

func outOfRange(index, length int) error {
	return model.Errorf(model.ErrIndexOutOfRange, "codec", "index %d not in [0,%d)", index, length)
}

func requireIndex(path model.Path) (int, error) {
	if path.Index == nil {
		return 0, mismatch("path index is required")
	}
	return *path.Index, nil
}

func stringValue(kind model.FieldKind, raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", mismatch("%s edit expects a string, got %s", kind, describe(raw))
	}
	return s, nil
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
