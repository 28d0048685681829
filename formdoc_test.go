package formdoc

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/renderers/html"
	"github.com/goliatone/go-formdoc/pkg/sample"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

func TestAssetsFSContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), html.StylesheetName)
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("stylesheet is empty")
	}
}

func TestEmbeddedSchemasListFormTypes(t *testing.T) {
	matches, err := fs.Glob(EmbeddedSchemas(), "*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 schema files, got %v", matches)
	}
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(context.Background(), "A", model.ModeView)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "Member ID") {
		t.Fatalf("expected record value in output")
	}
}

func TestApplyIntents(t *testing.T) {
	set := sample.MustRecords(schema.MustDefault())

	updated, err := ApplyIntents(set, EditIntent{FormType: "C", FieldKey: "name", NewValue: "Members"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, _ := updated["C"].Value("name"); got != model.Text("Members") {
		t.Fatalf("name = %v", got)
	}
	if got, _ := set["C"].Value("name"); got == model.Text("Members") {
		t.Fatalf("input set was modified")
	}

	if _, err := ApplyIntents(set, EditIntent{FormType: "Z", FieldKey: "name"}); err == nil {
		t.Fatalf("expected unknown form type to fail")
	}
}
