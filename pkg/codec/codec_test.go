package codec_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formdoc/pkg/codec"
	"github.com/goliatone/go-formdoc/pkg/model"
)

var (
	aliasesSpec = model.FieldSpec{Key: "aliases", Label: "Aliases", Kind: model.KindStringList}
	charsSpec   = model.FieldSpec{
		Key:   "characteristics",
		Label: "Characteristics",
		Kind:  model.KindKeyedScalarMap,
		Keys:  []string{"length", "inputFormat"},
	}
	flagsSpec = model.FieldSpec{
		Key:   "dataType",
		Label: "Data Type",
		Kind:  model.KindBooleanFlagSet,
		Keys:  []string{"Alphabetic", "Numeric"},
	}
	tableSpec  = model.FieldSpec{Key: "validation", Label: "Validation", Kind: model.KindValidationTable}
	headerSpec = model.FieldSpec{
		Key:   "header",
		Label: "Header",
		Kind:  model.KindKeyValueRow,
		Keys:  []string{"System", "Analyst"},
	}
	descSpec = model.FieldSpec{Key: "description", Label: "Description", Kind: model.KindScalarMultiline}
)

func intPtr(v int) *int { return &v }

func TestDecode_OrdersKeyedValuesBySchema(t *testing.T) {
	got, err := codec.Decode(charsSpec, json.RawMessage(`{"inputFormat":"9(6)"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := model.KeyedMap{{Key: "length", Value: ""}, {Key: "inputFormat", Value: "9(6)"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("keyed map mismatch (-want +got):\n%s", diff)
	}

	flags, err := codec.Decode(flagsSpec, json.RawMessage(`{"Numeric":true,"Alphabetic":false}`))
	if err != nil {
		t.Fatalf("decode flags: %v", err)
	}
	wantFlags := model.FlagSet{{Name: "Alphabetic"}, {Name: "Numeric", Checked: true}}
	if diff := cmp.Diff(wantFlags, flags); diff != "" {
		t.Fatalf("flag set mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_KeepsDataOrderWithoutDeclaredKeys(t *testing.T) {
	spec := model.FieldSpec{Key: "extra", Kind: model.KindKeyedScalarMap}
	got, err := codec.Decode(spec, json.RawMessage(`{"zeta":"1","alpha":"2"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := model.KeyedMap{{Key: "zeta", Value: "1"}, {Key: "alpha", Value: "2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("keyed map mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_RejectsWrongShapes(t *testing.T) {
	cases := []struct {
		name string
		spec model.FieldSpec
		raw  string
	}{
		{name: "scalar given number", spec: model.FieldSpec{Key: "name", Kind: model.KindScalar}, raw: `42`},
		{name: "list given object", spec: aliasesSpec, raw: `{"a":"b"}`},
		{name: "keyed map given array", spec: charsSpec, raw: `["length"]`},
		{name: "keyed map undeclared key", spec: charsSpec, raw: `{"colour":"red"}`},
		{name: "keyed map duplicate key", spec: charsSpec, raw: `{"length":"1","length":"2"}`},
		{name: "flag given string", spec: flagsSpec, raw: `{"Numeric":"yes"}`},
		{name: "flag undeclared", spec: flagsSpec, raw: `{"Binary":true}`},
		{name: "table unknown limit", spec: tableSpec, raw: `[{"limit":"middle","discrete":"","meaning":""}]`},
		{name: "table unknown column", spec: tableSpec, raw: `[{"limit":"upper","colour":"red"}]`},
		{name: "rows missing label", spec: headerSpec, raw: `[{"value":"x"}]`},
		{name: "rows duplicate label", spec: headerSpec, raw: `[{"label":"System","value":"a"},{"label":"System","value":"b"}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Decode(tc.spec, json.RawMessage(tc.raw))
			if !errors.Is(err, model.ErrSchemaMismatch) {
				t.Fatalf("expected ErrSchemaMismatch, got %v", err)
			}
			var typed *model.Error
			if !errors.As(err, &typed) || typed.Field != tc.spec.Key {
				t.Fatalf("expected error scoped to field %q, got %v", tc.spec.Key, err)
			}
		})
	}
}

func TestEncode_DecodeRoundTrip(t *testing.T) {
	values := []struct {
		spec  model.FieldSpec
		value model.Value
	}{
		{spec: descSpec, value: model.Text("line one\nline two")},
		{spec: aliasesSpec, value: model.StringList{"Member Number", "Member No."}},
		{spec: aliasesSpec, value: model.StringList(nil)},
		{spec: charsSpec, value: model.KeyedMap{{Key: "length", Value: "6"}, {Key: "inputFormat", Value: "9(6)"}}},
		{spec: flagsSpec, value: model.FlagSet{{Name: "Alphabetic"}, {Name: "Numeric", Checked: true}}},
		{spec: tableSpec, value: model.ValidationTable{
			{Limit: model.LimitUpper, Continuous: "999999", Discrete: "", Meaning: ""},
			{Limit: model.LimitLower, Discrete: "0", Meaning: "invalid"},
		}},
		{spec: headerSpec, value: model.KeyValueRows{{Key: "System", Value: "Membership"}, {Key: "Analyst", Value: "J. Doe"}}},
	}

	for _, tc := range values {
		t.Run(tc.spec.Key, func(t *testing.T) {
			raw, err := codec.Encode(tc.spec, tc.value)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := codec.Decode(tc.spec, raw)
			if err != nil {
				t.Fatalf("decode %s: %v", raw, err)
			}
			if diff := cmp.Diff(tc.value, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_KeepsDisplayOrder(t *testing.T) {
	raw, err := codec.Encode(flagsSpec, model.FlagSet{{Name: "Numeric", Checked: true}, {Name: "Alphabetic"}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got, want := string(raw), `{"Numeric":true,"Alphabetic":false}`; got != want {
		t.Fatalf("encoded flags = %s, want %s", got, want)
	}

	empty, err := codec.Encode(tableSpec, nil)
	if err != nil {
		t.Fatalf("encode nil table: %v", err)
	}
	if string(empty) != "[]" {
		t.Fatalf("nil table should encode as [], got %s", empty)
	}
}

func TestEncode_RejectsValuesDecodeWouldRefuse(t *testing.T) {
	tests := []struct {
		name  string
		spec  model.FieldSpec
		value model.Value
	}{
		{"undeclared map key", charsSpec, model.KeyedMap{{Key: "length", Value: "6"}, {Key: "notDeclared", Value: "v"}}},
		{"repeated map key", charsSpec, model.KeyedMap{{Key: "length", Value: "6"}, {Key: "length", Value: "7"}}},
		{"undeclared flag", flagsSpec, model.FlagSet{{Name: "Binary", Checked: true}}},
		{"repeated flag", flagsSpec, model.FlagSet{{Name: "Numeric"}, {Name: "Numeric", Checked: true}}},
		{"undeclared row label", headerSpec, model.KeyValueRows{{Key: "Reviewer", Value: "K. Lin"}}},
		{"blank row label", headerSpec, model.KeyValueRows{{Key: " ", Value: "x"}}},
		{"unknown limit", tableSpec, model.ValidationTable{{Limit: "middle", Discrete: "5"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := codec.Encode(tc.spec, tc.value)
			if !errors.Is(err, model.ErrSchemaMismatch) {
				t.Fatalf("expected ErrSchemaMismatch, got %v (encoded %s)", err, raw)
			}
		})
	}
}

func TestApply_StringList(t *testing.T) {
	base := model.StringList{"a", "b", "c"}

	cases := []struct {
		name   string
		intent model.EditIntent
		want   model.Value
		err    error
	}{
		{name: "set", intent: model.EditIntent{Op: model.OpSet, Path: model.IndexPath(1), NewValue: "B"}, want: model.StringList{"a", "B", "c"}},
		{name: "insert appends", intent: model.EditIntent{Op: model.OpInsert, NewValue: "d"}, want: model.StringList{"a", "b", "c", "d"}},
		{name: "insert at index", intent: model.EditIntent{Op: model.OpInsert, Path: model.IndexPath(0), NewValue: "z"}, want: model.StringList{"z", "a", "b", "c"}},
		{name: "remove", intent: model.EditIntent{Op: model.OpRemove, Path: model.IndexPath(2)}, want: model.StringList{"a", "b"}},
		{name: "set out of range", intent: model.EditIntent{Op: model.OpSet, Path: model.IndexPath(3), NewValue: "x"}, err: model.ErrIndexOutOfRange},
		{name: "remove negative", intent: model.EditIntent{Op: model.OpRemove, Path: model.IndexPath(-1)}, err: model.ErrIndexOutOfRange},
		{name: "insert past end", intent: model.EditIntent{Op: model.OpInsert, Path: model.IndexPath(5), NewValue: "x"}, err: model.ErrIndexOutOfRange},
		{name: "set non string", intent: model.EditIntent{Op: model.OpSet, Path: model.IndexPath(0), NewValue: 7}, err: model.ErrSchemaMismatch},
		{name: "toggle unsupported", intent: model.EditIntent{Op: model.OpToggle, Path: model.IndexPath(0)}, err: model.ErrSchemaMismatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := codec.Apply(aliasesSpec, base, tc.intent)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("list mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(model.StringList{"a", "b", "c"}, base); diff != "" {
				t.Fatalf("input list was mutated (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_RemovingLastElementLeavesEmptyList(t *testing.T) {
	got, err := codec.Apply(aliasesSpec, model.StringList{"only"}, model.EditIntent{Op: model.OpRemove, Path: model.IndexPath(0)})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if diff := cmp.Diff(model.StringList{}, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("expected empty list (-want +got):\n%s", diff)
	}
}

func TestApply_KeyedMapKeySetIsFixed(t *testing.T) {
	base := model.KeyedMap{{Key: "length", Value: "6"}, {Key: "inputFormat", Value: ""}}

	got, err := codec.Apply(charsSpec, base, model.EditIntent{Path: model.KeyPath("inputFormat"), NewValue: "9(6)"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := model.KeyedMap{{Key: "length", Value: "6"}, {Key: "inputFormat", Value: "9(6)"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("keyed map mismatch (-want +got):\n%s", diff)
	}
	if base[1].Value != "" {
		t.Fatalf("input map was mutated: %#v", base)
	}

	_, err = codec.Apply(charsSpec, base, model.EditIntent{Path: model.KeyPath("colour"), NewValue: "red"})
	if !errors.Is(err, model.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField for a new key, got %v", err)
	}
}

func TestApply_KeyValueRows(t *testing.T) {
	base := model.KeyValueRows{{Key: "System", Value: ""}, {Key: "Analyst", Value: ""}}

	got, err := codec.Apply(headerSpec, base, model.EditIntent{Path: model.KeyPath("System"), NewValue: "Membership"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if value, _ := got.(model.KeyValueRows).Lookup("System"); value != "Membership" {
		t.Fatalf("expected System to be replaced, got %#v", got)
	}

	_, err = codec.Apply(headerSpec, base, model.EditIntent{Path: model.KeyPath("Date"), NewValue: "today"})
	if !errors.Is(err, model.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestApply_FlagSet(t *testing.T) {
	base := model.FlagSet{{Name: "Alphabetic"}, {Name: "Numeric", Checked: true}}

	toggled, err := codec.Apply(flagsSpec, base, model.EditIntent{Op: model.OpToggle, Path: model.KeyPath("Alphabetic")})
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.(model.FlagSet).Checked("Alphabetic") {
		t.Fatalf("expected Alphabetic to be checked after toggle")
	}
	if base.Checked("Alphabetic") {
		t.Fatalf("input flag set was mutated")
	}

	set := model.EditIntent{Op: model.OpSet, Path: model.KeyPath("Numeric"), NewValue: false}
	once, err := codec.Apply(flagsSpec, base, set)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	twice, err := codec.Apply(flagsSpec, once, set)
	if err != nil {
		t.Fatalf("set again: %v", err)
	}
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("set should be idempotent (-once +twice):\n%s", diff)
	}

	_, err = codec.Apply(flagsSpec, base, model.EditIntent{Op: model.OpToggle, Path: model.KeyPath("Binary")})
	if !errors.Is(err, model.ErrUnknownFlag) {
		t.Fatalf("expected ErrUnknownFlag, got %v", err)
	}

	_, err = codec.Apply(flagsSpec, base, model.EditIntent{Op: model.OpSet, Path: model.KeyPath("Numeric"), NewValue: "true"})
	if !errors.Is(err, model.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch for non-bool set, got %v", err)
	}
}

func TestApply_ValidationTable(t *testing.T) {
	base := model.ValidationTable{
		{Limit: model.LimitUpper, Discrete: "9", Meaning: "max"},
		{Limit: model.LimitLower, Discrete: "0", Meaning: "min"},
		{Limit: model.LimitLower, Discrete: "1", Meaning: "first"},
	}

	t.Run("set addresses per-limit index", func(t *testing.T) {
		got, err := codec.Apply(tableSpec, base, model.EditIntent{
			Path:     model.RowPath(model.LimitLower, 1, model.ColumnMeaning),
			NewValue: "one",
		})
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if got.(model.ValidationTable)[2].Meaning != "one" {
			t.Fatalf("expected third row to change, got %#v", got)
		}
		if base[2].Meaning != "first" {
			t.Fatalf("input table was mutated")
		}
	})

	t.Run("add upper row lands before lower rows", func(t *testing.T) {
		lowerOnly := base[1:]
		got, err := codec.Apply(tableSpec, lowerOnly, model.EditIntent{
			Op:   model.OpAddRow,
			Path: model.Path{Limit: model.LimitUpper},
		})
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		table := got.(model.ValidationTable)
		if len(table) != 3 || table[0].Limit != model.LimitUpper {
			t.Fatalf("expected new upper row first, got %#v", table)
		}
	})

	t.Run("add row follows last row of its limit", func(t *testing.T) {
		got, err := codec.Apply(tableSpec, base, model.EditIntent{
			Op:   model.OpAddRow,
			Path: model.Path{Limit: model.LimitUpper},
		})
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		table := got.(model.ValidationTable)
		want := model.ValidationRow{Limit: model.LimitUpper}
		if diff := cmp.Diff(want, table[1]); diff != "" {
			t.Fatalf("new row mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("remove row", func(t *testing.T) {
		got, err := codec.Apply(tableSpec, base, model.EditIntent{
			Op:   model.OpRemoveRow,
			Path: model.RowPath(model.LimitLower, 0, ""),
		})
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		want := model.ValidationTable{base[0], base[2]}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("table mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := codec.Apply(tableSpec, base, model.EditIntent{
			Path:     model.RowPath(model.LimitUpper, 0, "colour"),
			NewValue: "red",
		})
		if !errors.Is(err, model.ErrSchemaMismatch) {
			t.Fatalf("expected ErrSchemaMismatch, got %v", err)
		}
	})

	t.Run("unknown limit", func(t *testing.T) {
		_, err := codec.Apply(tableSpec, base, model.EditIntent{
			Op:   model.OpAddRow,
			Path: model.Path{Limit: "middle"},
		})
		if !errors.Is(err, model.ErrSchemaMismatch) {
			t.Fatalf("expected ErrSchemaMismatch, got %v", err)
		}
	})
}

func TestApply_ValidationTableBoundaries(t *testing.T) {
	_, err := codec.Apply(tableSpec, model.ValidationTable(nil), model.EditIntent{
		Op:   model.OpRemoveRow,
		Path: model.RowPath(model.LimitUpper, 0, ""),
	})
	if !errors.Is(err, model.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange on empty table, got %v", err)
	}

	got, err := codec.Apply(tableSpec, model.ValidationTable(nil), model.EditIntent{
		Op:   model.OpAddRow,
		Path: model.Path{Limit: model.LimitLower},
	})
	if err != nil {
		t.Fatalf("add-row: %v", err)
	}
	want := model.ValidationTable{{Limit: model.LimitLower, Discrete: "", Meaning: ""}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("add-row on empty lower list (-want +got):\n%s", diff)
	}
}

func TestDisplay_Cells(t *testing.T) {
	cell, err := codec.Display(flagsSpec, model.FlagSet{{Name: "Alphabetic"}, {Name: "Numeric", Checked: true}})
	if err != nil {
		t.Fatalf("display flags: %v", err)
	}
	wantChecks := []codec.Check{
		{Name: "Alphabetic", Label: "Alphabetic"},
		{Name: "Numeric", Label: "Numeric", Checked: true},
	}
	if diff := cmp.Diff(wantChecks, cell.Checks); diff != "" {
		t.Fatalf("checks mismatch (-want +got):\n%s", diff)
	}
	if cell.Text != "Numeric" {
		t.Fatalf("flag summary = %q", cell.Text)
	}

	table, err := codec.Display(tableSpec, model.ValidationTable{
		{Limit: model.LimitUpper, Discrete: "9"},
		{Limit: model.LimitLower, Discrete: "0"},
		{Limit: model.LimitLower, Discrete: "1"},
	})
	if err != nil {
		t.Fatalf("display table: %v", err)
	}
	indexes := make([]int, len(table.Rows))
	for idx, row := range table.Rows {
		indexes[idx] = row.Index
	}
	if diff := cmp.Diff([]int{0, 0, 1}, indexes); diff != "" {
		t.Fatalf("per-limit indexes mismatch (-want +got):\n%s", diff)
	}

	chars, err := codec.Display(charsSpec, nil)
	if err != nil {
		t.Fatalf("display nil map: %v", err)
	}
	if len(chars.Items) != 2 || chars.Items[1].Label != "Input Format" {
		t.Fatalf("expected declared keys with derived labels, got %#v", chars.Items)
	}

	desc, err := codec.Display(descSpec, model.Text("a\r\nb"))
	if err != nil {
		t.Fatalf("display text: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, desc.Lines); diff != "" {
		t.Fatalf("multiline split mismatch (-want +got):\n%s", diff)
	}
}

func TestFor_UnknownKind(t *testing.T) {
	if _, err := codec.For("matrix"); !errors.Is(err, model.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
