package codec

import (
	"encoding/json"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// textCodec handles Scalar and ScalarMultiline fields. Edits are identity
// string replacements.
type textCodec struct {
	multiline bool
}

func (c textCodec) kind() model.FieldKind {
	if c.multiline {
		return model.KindScalarMultiline
	}
	return model.KindScalar
}

func (c textCodec) Decode(_ model.FieldSpec, raw json.RawMessage) (model.Value, error) {
	s, err := decodeString(raw)
	if err != nil {
		return nil, err
	}
	return model.Text(s), nil
}

func (c textCodec) Encode(_ model.FieldSpec, v model.Value) (json.RawMessage, error) {
	text, ok := v.(model.Text)
	if !ok {
		return nil, wrongValue(c.kind(), v)
	}
	return json.Marshal(string(text))
}

func (c textCodec) Display(_ model.FieldSpec, v model.Value) (Cell, error) {
	text, ok := v.(model.Text)
	if !ok {
		return Cell{}, wrongValue(c.kind(), v)
	}
	cell := Cell{Kind: c.kind(), Text: string(text)}
	if c.multiline && text != "" {
		cell.Lines = strings.Split(strings.ReplaceAll(string(text), "\r\n", "\n"), "\n")
	}
	return cell, nil
}

func (c textCodec) Apply(_ model.FieldSpec, v model.Value, intent model.EditIntent) (model.Value, error) {
	if _, ok := v.(model.Text); !ok {
		return nil, wrongValue(c.kind(), v)
	}
	if op := intent.Operation(); op != model.OpSet {
		return nil, unsupportedOp(c.kind(), op)
	}
	s, err := stringValue(c.kind(), intent.NewValue)
	if err != nil {
		return nil, err
	}
	return model.Text(s), nil
}
