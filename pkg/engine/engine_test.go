package engine_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdoc/pkg/engine"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/schema"
	"github.com/goliatone/go-formdoc/pkg/testsupport"
)

func TestRender_ViewAndEditListSameKeys(t *testing.T) {
	reg := schema.MustDefault()
	set := testsupport.SampleRecords(t)

	for _, formType := range reg.Types() {
		s := reg.MustGet(formType)
		view, err := engine.Render(s, set[formType], model.ModeView)
		if err != nil {
			t.Fatalf("render view %s: %v", formType, err)
		}
		edit, err := engine.Render(s, set[formType], model.ModeEdit)
		if err != nil {
			t.Fatalf("render edit %s: %v", formType, err)
		}

		if diff := cmp.Diff(s.Keys(), keysOf(view)); diff != "" {
			t.Fatalf("%s view keys mismatch (-want +got):\n%s", formType, diff)
		}
		if diff := cmp.Diff(keysOf(view), keysOf(edit)); diff != "" {
			t.Fatalf("%s edit keys differ from view (-view +edit):\n%s", formType, diff)
		}
		for idx := range view {
			if view[idx].Editable || !edit[idx].Editable {
				t.Fatalf("%s field %s editable flags wrong", formType, view[idx].Key)
			}
			if diff := cmp.Diff(view[idx].Display, edit[idx].Display); diff != "" {
				t.Fatalf("%s field %s display differs between modes:\n%s", formType, view[idx].Key, diff)
			}
		}
	}
}

func TestRender_IsDeterministic(t *testing.T) {
	reg := schema.MustDefault()
	s := reg.MustGet("A")
	record := testsupport.SampleRecords(t)["A"]

	first, err := engine.Render(s, record, model.ModeView)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := engine.Render(s, record, model.ModeView)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("render output differs between calls")
	}
}

func TestRender_MissingValuesUseZeroValue(t *testing.T) {
	s := schema.MustDefault().MustGet("C")

	out, err := engine.Render(s, model.FormRecord{FormID: "DS-9"}, model.ModeView)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, inst := range out {
		if inst.Key != "organization" {
			continue
		}
		if len(inst.Display.Checks) != 4 {
			t.Fatalf("expected all declared flags unchecked, got %#v", inst.Display.Checks)
		}
		for _, check := range inst.Display.Checks {
			if check.Checked {
				t.Fatalf("flag %s should be unchecked", check.Name)
			}
		}
		return
	}
	t.Fatalf("organization field missing from render")
}

func TestRender_RejectsRawMode(t *testing.T) {
	s := schema.MustDefault().MustGet("A")
	if _, err := engine.Render(s, model.FormRecord{}, model.ModeRaw); !errors.Is(err, model.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestApplyIntent_ReplacesOnlyTargetField(t *testing.T) {
	s := schema.MustDefault().MustGet("A")
	record := testsupport.SampleRecords(t)["A"]

	if got, _ := record.Value("name"); got != model.Text("Member ID") {
		t.Fatalf("sample name = %#v", got)
	}

	next, err := engine.ApplyIntent(s, record, model.EditIntent{
		FormType: "A",
		FieldKey: "name",
		NewValue: "Member Code",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if got, _ := next.Value("name"); got != model.Text("Member Code") {
		t.Fatalf("name = %#v, want Member Code", got)
	}
	if got, _ := record.Value("name"); got != model.Text("Member ID") {
		t.Fatalf("input record was mutated: %#v", got)
	}
	for _, key := range s.Keys() {
		if key == "name" {
			continue
		}
		before, _ := record.Value(key)
		after, _ := next.Value(key)
		if !testsupport.SameValue(before, after) {
			t.Fatalf("sibling field %s was copied or changed", key)
		}
	}
}

func TestApplyIntent_IsIdempotent(t *testing.T) {
	s := schema.MustDefault().MustGet("A")
	record := testsupport.SampleRecords(t)["A"]

	intents := []model.EditIntent{
		{FieldKey: "name", NewValue: "Member Code"},
		{FieldKey: "characteristics", Path: model.KeyPath("length"), NewValue: "8"},
		{FieldKey: "dataType", Path: model.KeyPath("Alphabetic"), NewValue: true},
		{FieldKey: "validation", Path: model.RowPath(model.LimitLower, 0, model.ColumnMeaning), NewValue: "lowest id"},
		{FieldKey: "header", Path: model.KeyPath("Analyst"), NewValue: "K. Lin"},
	}
	for _, intent := range intents {
		t.Run(intent.FieldKey, func(t *testing.T) {
			once, err := engine.ApplyIntent(s, record, intent)
			if err != nil {
				t.Fatalf("apply once: %v", err)
			}
			twice, err := engine.ApplyIntent(s, once, intent)
			if err != nil {
				t.Fatalf("apply twice: %v", err)
			}
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Fatalf("second apply changed the record (-once +twice):\n%s", diff)
			}
		})
	}
}

func TestApplyIntent_Errors(t *testing.T) {
	s := schema.MustDefault().MustGet("A")
	record := testsupport.SampleRecords(t)["A"]

	cases := []struct {
		name   string
		intent model.EditIntent
		want   error
	}{
		{name: "unknown field", intent: model.EditIntent{FieldKey: "colour", NewValue: "red"}, want: model.ErrUnknownField},
		{name: "unknown flag", intent: model.EditIntent{FieldKey: "dataType", Op: model.OpToggle, Path: model.KeyPath("Binary")}, want: model.ErrUnknownFlag},
		{name: "alias out of range", intent: model.EditIntent{FieldKey: "aliases", Path: model.IndexPath(9), NewValue: "x"}, want: model.ErrIndexOutOfRange},
		{name: "wrong value type", intent: model.EditIntent{FieldKey: "name", NewValue: 12}, want: model.ErrSchemaMismatch},
		{name: "foreign form type", intent: model.EditIntent{FormType: "B", FieldKey: "name", NewValue: "x"}, want: model.ErrSchemaMismatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.ApplyIntent(s, record, tc.intent)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEngine_ResolvesFormTypes(t *testing.T) {
	eng := engine.New(nil)
	record := testsupport.SampleRecords(t)["B"]

	next, err := eng.Apply(record, model.EditIntent{
		FormType: "B",
		FieldKey: "flowType",
		Op:       model.OpToggle,
		Path:     model.KeyPath("Report"),
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	flags, _ := next.Value("flowType")
	if !flags.(model.FlagSet).Checked("Report") {
		t.Fatalf("expected Report to be checked")
	}

	if _, err := eng.Apply(record, model.EditIntent{FormType: "Z", FieldKey: "name"}); !errors.Is(err, model.ErrUnknownFormType) {
		t.Fatalf("expected ErrUnknownFormType, got %v", err)
	}
	if _, err := eng.Render("Z", record, model.ModeView); !errors.Is(err, model.ErrUnknownFormType) {
		t.Fatalf("expected ErrUnknownFormType, got %v", err)
	}
}

func keysOf(instructions []engine.RenderInstruction) []string {
	keys := make([]string, len(instructions))
	for idx, inst := range instructions {
		keys[idx] = inst.Key
	}
	return keys
}
