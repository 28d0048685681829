package text_test

import (
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/renderers/text"
	"github.com/goliatone/go-formdoc/pkg/schema"
	"github.com/goliatone/go-formdoc/pkg/testsupport"
)

func renderSample(t *testing.T, formType string, opts render.RenderOptions) string {
	t.Helper()

	doc, err := render.NewDocument(schema.MustDefault().MustGet(formType), testsupport.SampleRecords(t)[formType])
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	out, err := text.New().Render(testsupport.Context(), doc, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderer_Preview(t *testing.T) {
	out := renderSample(t, "A", render.RenderOptions{})

	for _, want := range []string{
		"ED-001",
		"Element Description",
		"ELEMENT CHARACTERISTICS",
		"\u2022 Member Number",
		"\u2611 Numeric",
		"\u2610 Alphabetic",
		"Upper Limit",
		"999999",
		"Check digit is computed with modulus 11.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("preview missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("default renderer should not emit escape codes")
	}
}

func TestRenderer_FieldOrder(t *testing.T) {
	out := renderSample(t, "B", render.RenderOptions{})

	previous := -1
	for _, s := range schema.MustDefault().MustGet("B").Fields {
		idx := strings.Index(out, "\n"+s.Label+"\n")
		if idx < 0 {
			t.Fatalf("label %q missing:\n%s", s.Label, out)
		}
		if idx < previous {
			t.Fatalf("label %q out of order", s.Label)
		}
		previous = idx
	}
}

func TestRenderer_ErrorsAndSubset(t *testing.T) {
	out := renderSample(t, "C", render.RenderOptions{
		Subset:     render.ParseSubset("secondaryKeys"),
		Errors:     map[string][]string{"secondaryKeys": {"index out of range"}},
		FormErrors: []string{"edit rejected"},
		Theme:      &theme.RendererConfig{Tokens: map[string]string{"brand": "#ff0000"}},
	})

	if strings.Contains(out, "Comments") {
		t.Fatalf("subset should hide other fields:\n%s", out)
	}
	for _, want := range []string{"! edit rejected", "! index out of range", "\u2022 Postal Code"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderer_EmptyValues(t *testing.T) {
	doc, err := render.NewDocument(schema.MustDefault().MustGet("A"), model.FormRecord{FormID: "ED-9"})
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	out, err := text.New(text.WithWidth(40)).Render(testsupport.Context(), doc, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"(none)", "(empty)", "(no criteria)"} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
