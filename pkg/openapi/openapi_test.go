package openapi_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/openapi"
	"github.com/goliatone/go-formdoc/pkg/sample"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

func describe(t *testing.T, options ...openapi.Option) *openapi3.T {
	t.Helper()

	doc, err := openapi.Describe(schema.MustDefault(), options...)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	return doc
}

func sampleSet(t *testing.T) map[string]any {
	t.Helper()

	var raw map[string]any
	if err := json.Unmarshal(sample.JSON(), &raw); err != nil {
		t.Fatalf("decode sample: %v", err)
	}
	return raw
}

func TestDescribe_ComponentsAndPaths(t *testing.T) {
	doc := describe(t, openapi.WithInfo("Data Dictionary", "2.1.0"), openapi.WithServerURL("http://localhost:8080"))

	if doc.Info.Title != "Data Dictionary" || doc.Info.Version != "2.1.0" {
		t.Fatalf("unexpected info %+v", doc.Info)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "http://localhost:8080" {
		t.Fatalf("unexpected servers %+v", doc.Servers)
	}

	var names []string
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	want := []string{"A", "B", "C", "EditIntent", "Error", "RecordSet"}
	if diff := cmp.Diff(want, names, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("component schemas mismatch (-want +got):\n%s", diff)
	}

	for _, path := range []string{"/raw", "/forms/{type}", "/forms/{type}/intents", "/forms/{type}/export"} {
		if doc.Paths.Find(path) == nil {
			t.Fatalf("missing path %s", path)
		}
	}

	record := doc.Components.Schemas["A"].Value
	fields := record.Properties["fields"].Value
	flags := fields.Properties["dataType"].Value
	if len(flags.Properties) != 8 {
		t.Fatalf("expected 8 data type flags, got %d", len(flags.Properties))
	}
	if got := fields.Properties["aliases"].Value.Extensions["x-formdoc-kind"]; got != string(model.KindStringList) {
		t.Fatalf("aliases kind extension = %v", got)
	}
}

func TestValidateRecordSet_AcceptsSample(t *testing.T) {
	doc := describe(t)

	if err := openapi.ValidateRecordSetJSON(doc, sample.JSON()); err != nil {
		t.Fatalf("sample should validate: %v", err)
	}
}

func TestValidateRecordSet_RejectsShapeErrors(t *testing.T) {
	doc := describe(t)

	tests := []struct {
		name   string
		mutate func(set map[string]any)
		detail string
	}{
		{
			name: "list of numbers",
			mutate: func(set map[string]any) {
				fields(set, "A")["aliases"] = []any{1.0}
			},
			detail: "aliases",
		},
		{
			name: "unknown limit",
			mutate: func(set map[string]any) {
				fields(set, "A")["validation"] = []any{map[string]any{"limit": "middle"}}
			},
			detail: "validation",
		},
		{
			name: "undeclared flag",
			mutate: func(set map[string]any) {
				fields(set, "A")["dataType"] = map[string]any{"Binary": true}
			},
			detail: "dataType",
		},
		{
			name: "unknown form type",
			mutate: func(set map[string]any) {
				set["D"] = map[string]any{"fields": map[string]any{}}
			},
			detail: "D",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			set := sampleSet(t)
			tc.mutate(set)

			err := openapi.ValidateRecordSet(doc, set)
			if !errors.Is(err, model.ErrSchemaMismatch) {
				t.Fatalf("expected ErrSchemaMismatch, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.detail) {
				t.Fatalf("error %q does not mention %q", err, tc.detail)
			}
		})
	}
}

func TestValidateRecordSet_NullFieldsAllowed(t *testing.T) {
	doc := describe(t)
	set := sampleSet(t)
	fields(set, "B")["header"] = nil

	if err := openapi.ValidateRecordSet(doc, set); err != nil {
		t.Fatalf("null field should validate: %v", err)
	}
}

func TestValidateRecordSet_LimitCaseInsensitive(t *testing.T) {
	doc := describe(t)
	set := sampleSet(t)
	fields(set, "A")["validation"] = []any{
		map[string]any{"limit": "UPPER", "discrete": "9"},
		map[string]any{"limit": " Lower ", "discrete": "0"},
	}

	if err := openapi.ValidateRecordSet(doc, set); err != nil {
		t.Fatalf("limits accepted by the bridge should validate: %v", err)
	}
}

func TestDescribe_EditIntentSchema(t *testing.T) {
	intent := describe(t).Components.Schemas["EditIntent"].Value

	if diff := cmp.Diff([]string{"fieldKey"}, intent.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	var ops []string
	for _, op := range intent.Properties["op"].Value.Enum {
		ops = append(ops, op.(string))
	}
	want := []string{"set", "toggle", "insert", "remove", "add-row", "remove-row"}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Fatalf("op enum mismatch (-want +got):\n%s", diff)
	}
	if err := intent.VisitJSON(map[string]any{"fieldKey": "dataType", "op": "toggle", "path": map[string]any{"key": "Numeric"}}); err != nil {
		t.Fatalf("toggle intent without formType should validate: %v", err)
	}
}

func TestValidateRecordSetJSON_ParseError(t *testing.T) {
	if err := openapi.ValidateRecordSetJSON(describe(t), []byte("{")); !errors.Is(err, model.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestDescribe_NilRegistry(t *testing.T) {
	if _, err := openapi.Describe(nil); err == nil {
		t.Fatalf("expected error for nil registry")
	}
}

func fields(set map[string]any, formType string) map[string]any {
	return set[formType].(map[string]any)["fields"].(map[string]any)
}
