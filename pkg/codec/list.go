package codec

import (
	"encoding/json"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// listCodec handles StringList fields. set replaces the element at an index,
// insert appends (or inserts before an index) and remove deletes an index.
type listCodec struct{}

func (listCodec) Decode(_ model.FieldSpec, raw json.RawMessage) (model.Value, error) {
	if isNull(raw) {
		return model.StringList(nil), nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, mismatch("expected an array of strings")
	}
	if len(items) == 0 {
		return model.StringList(nil), nil
	}
	return model.StringList(items), nil
}

func (listCodec) Encode(_ model.FieldSpec, v model.Value) (json.RawMessage, error) {
	list, ok := v.(model.StringList)
	if !ok {
		return nil, wrongValue(model.KindStringList, v)
	}
	if list == nil {
		return json.RawMessage("[]"), nil
	}
	return json.Marshal([]string(list))
}

func (listCodec) Display(_ model.FieldSpec, v model.Value) (Cell, error) {
	list, ok := v.(model.StringList)
	if !ok {
		return Cell{}, wrongValue(model.KindStringList, v)
	}
	cell := Cell{Kind: model.KindStringList, Text: strings.Join(list, ", ")}
	if len(list) > 0 {
		cell.Lines = append([]string(nil), list...)
	}
	return cell, nil
}

func (listCodec) Apply(_ model.FieldSpec, v model.Value, intent model.EditIntent) (model.Value, error) {
	list, ok := v.(model.StringList)
	if !ok {
		return nil, wrongValue(model.KindStringList, v)
	}

	switch op := intent.Operation(); op {
	case model.OpSet:
		idx, err := requireIndex(intent.Path)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(list) {
			return nil, outOfRange(idx, len(list))
		}
		s, err := stringValue(model.KindStringList, intent.NewValue)
		if err != nil {
			return nil, err
		}
		out := make(model.StringList, len(list))
		copy(out, list)
		out[idx] = s
		return out, nil

	case model.OpInsert:
		s, err := stringValue(model.KindStringList, intent.NewValue)
		if err != nil {
			return nil, err
		}
		idx := len(list)
		if intent.Path.Index != nil {
			idx = *intent.Path.Index
			if idx < 0 || idx > len(list) {
				return nil, outOfRange(idx, len(list)+1)
			}
		}
		out := make(model.StringList, 0, len(list)+1)
		out = append(out, list[:idx]...)
		out = append(out, s)
		out = append(out, list[idx:]...)
		return out, nil

	case model.OpRemove:
		idx, err := requireIndex(intent.Path)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(list) {
			return nil, outOfRange(idx, len(list))
		}
		if len(list) == 1 {
			return model.StringList(nil), nil
		}
		out := make(model.StringList, 0, len(list)-1)
		out = append(out, list[:idx]...)
		out = append(out, list[idx+1:]...)
		return out, nil

	default:
		return nil, unsupportedOp(model.KindStringList, op)
	}
}
