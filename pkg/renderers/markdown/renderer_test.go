package markdown_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/renderers/markdown"
	"github.com/goliatone/go-formdoc/pkg/schema"
	"github.com/goliatone/go-formdoc/pkg/testsupport"
)

func renderSample(t *testing.T, formType string) string {
	t.Helper()

	renderer, err := markdown.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	doc, err := render.NewDocument(schema.MustDefault().MustGet(formType), testsupport.SampleRecords(t)[formType])
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	out, err := renderer.Render(testsupport.Context(), doc, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderer_ConvertsPage(t *testing.T) {
	out := renderSample(t, "A")

	for _, want := range []string{
		"ED-001",
		"# Element Description",
		"## Element Characteristics",
		"Member ID",
		"999999",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("markdown missing %q:\n%s", want, out)
		}
	}
	if got := taskMarker(out, "Numeric"); got != "[x]" {
		t.Fatalf("Numeric marker = %q:\n%s", got, out)
	}
	if got := taskMarker(out, "Alphabetic"); got != "[ ]" {
		t.Fatalf("Alphabetic marker = %q:\n%s", got, out)
	}
	if strings.Contains(out, "<style") || strings.Contains(out, "--formdoc-ink") {
		t.Fatalf("stylesheet leaked into markdown:\n%s", out)
	}
	if !strings.HasSuffix(out, "\n") || strings.Contains(out, "\n\n\n") {
		t.Fatalf("markdown not normalised")
	}
}

func TestRenderer_FieldOrder(t *testing.T) {
	out := renderSample(t, "C")

	previous := -1
	for _, label := range []string{"Name", "Description", "File Organization", "Secondary Keys", "Comments"} {
		idx := strings.Index(out, "### "+label)
		if idx < 0 {
			t.Fatalf("heading %q missing:\n%s", label, out)
		}
		if idx < previous {
			t.Fatalf("heading %q out of order", label)
		}
		previous = idx
	}
}

type failingPage struct{}

func (failingPage) Name() string        { return "html" }
func (failingPage) ContentType() string { return "text/html" }
func (failingPage) Render(_ context.Context, _ render.Document, _ render.RenderOptions) ([]byte, error) {
	return nil, errors.New("template missing")
}

func TestRenderer_PageFailure(t *testing.T) {
	renderer, err := markdown.New(markdown.WithPageRenderer(failingPage{}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	_, err = renderer.Render(testsupport.Context(), render.Document{FormType: "A", Mode: model.ModeView}, render.RenderOptions{})
	if err == nil || !strings.Contains(err.Error(), "template missing") {
		t.Fatalf("expected page error, got %v", err)
	}
}

// taskMarker returns the checkbox marker of the task list item labelled
// label, or "" when there is none.
func taskMarker(markdown, label string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- [x]") && !strings.HasPrefix(line, "- [ ]") {
			continue
		}
		if strings.TrimSpace(line[5:]) == label {
			return line[2:5]
		}
	}
	return ""
}
