package codec

import (
	"encoding/json"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

// flagCodec handles BooleanFlagSet fields. toggle flips a named flag and set
// assigns it explicitly, which keeps repeated intents idempotent.
type flagCodec struct{}

func (flagCodec) Decode(spec model.FieldSpec, raw json.RawMessage) (model.Value, error) {
	if isNull(raw) {
		return model.ZeroValueFor(spec), nil
	}
	names, values, err := orderedObject(raw)
	if err != nil {
		return nil, err
	}
	checked := make(map[string]bool, len(names))
	for _, name := range names {
		if !spec.HasKey(name) {
			return nil, mismatch("flag %q is not declared", name)
		}
		if isNull(values[name]) {
			checked[name] = false
			continue
		}
		var b bool
		if err := json.Unmarshal(values[name], &b); err != nil {
			return nil, mismatch("flag %q: expected a boolean", name)
		}
		checked[name] = b
	}

	order := names
	if len(spec.Keys) > 0 {
		order = spec.Keys
	}
	if len(order) == 0 {
		return model.FlagSet(nil), nil
	}
	out := make(model.FlagSet, 0, len(order))
	for _, name := range order {
		out = append(out, model.Flag{Name: name, Checked: checked[name]})
	}
	return out, nil
}

func (flagCodec) Encode(spec model.FieldSpec, v model.Value) (json.RawMessage, error) {
	flags, ok := v.(model.FlagSet)
	if !ok {
		return nil, wrongValue(model.KindBooleanFlagSet, v)
	}
	names := make([]string, len(flags))
	seen := make(map[string]bool, len(flags))
	for idx, flag := range flags {
		if !spec.HasKey(flag.Name) {
			return nil, mismatch("flag %q is not declared", flag.Name)
		}
		if seen[flag.Name] {
			return nil, mismatch("duplicate flag %q", flag.Name)
		}
		seen[flag.Name] = true
		names[idx] = flag.Name
	}
	return encodeObject(names, func(name string) any {
		return flags.Checked(name)
	})
}

func (flagCodec) Display(spec model.FieldSpec, v model.Value) (Cell, error) {
	flags, ok := v.(model.FlagSet)
	if !ok {
		return Cell{}, wrongValue(model.KindBooleanFlagSet, v)
	}
	cell := Cell{Kind: model.KindBooleanFlagSet}
	var selected []string
	for _, flag := range flags {
		label := schema.KeyLabel(spec, flag.Name)
		cell.Checks = append(cell.Checks, Check{Name: flag.Name, Label: label, Checked: flag.Checked})
		if flag.Checked {
			selected = append(selected, label)
		}
	}
	cell.Text = strings.Join(selected, ", ")
	return cell, nil
}

func (flagCodec) Apply(spec model.FieldSpec, v model.Value, intent model.EditIntent) (model.Value, error) {
	flags, ok := v.(model.FlagSet)
	if !ok {
		return nil, wrongValue(model.KindBooleanFlagSet, v)
	}
	name := intent.Path.Key
	if name == "" {
		return nil, mismatch("path key (flag name) is required")
	}
	idx := flags.Index(name)
	if idx < 0 || !spec.HasKey(name) {
		return nil, model.Errorf(model.ErrUnknownFlag, "codec", "flag %q is not part of %s", name, spec.Key)
	}

	var next bool
	switch op := intent.Operation(); op {
	case model.OpToggle:
		next = !flags[idx].Checked
	case model.OpSet:
		b, ok := intent.NewValue.(bool)
		if !ok {
			return nil, mismatch("flag edit expects a boolean, got %s", describe(intent.NewValue))
		}
		next = b
	default:
		return nil, unsupportedOp(model.KindBooleanFlagSet, op)
	}

	out := make(model.FlagSet, len(flags))
	copy(out, flags)
	out[idx].Checked = next
	return out, nil
}
