package template_test

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formdoc/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formdoc/pkg/testsupport"
)

var templatesFS = fstest.MapFS{
	"badge.tpl":      {Data: []byte(`<span class="badge">{{ formId }}</span> {{ title|trim }}`)},
	"use-global.tpl": {Data: []byte(`env={{ settings.env }}`)},
	"use-filter.tpl": {Data: []byte(`{{ name|shout }}`)},
	"checks.tpl":     {Data: []byte(`{% for c in checks %}{{ c.checked|checkmark }} {{ c.label }};{% endfor %}`)},
	"theme.tpl":      {Data: []byte(`{{ vars|cssvars|safe }}`)},
}

func TestEngine_RenderTemplateWritesOutput(t *testing.T) {
	engine := newEngine(t)

	var result string
	written := testsupport.CaptureOutput(t, func(w io.Writer) error {
		var err error
		result, err = engine.RenderTemplate("badge", map[string]any{"formId": "ED-001", "title": "  Element Description "}, w)
		return err
	})

	want := `<span class="badge">ED-001</span> Element Description`
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=staging" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}

	result, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ADA!" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestEngine_DefaultFilters(t *testing.T) {
	engine := newEngine(t)

	checks, err := engine.RenderTemplate("checks", map[string]any{
		"checks": []map[string]any{
			{"label": "Numeric", "checked": true},
			{"label": "Date", "checked": false},
		},
	})
	if err != nil {
		t.Fatalf("render checks: %v", err)
	}
	if checks != "☑ Numeric;☐ Date;" {
		t.Fatalf("unexpected checkmarks %q", checks)
	}

	theme, err := engine.RenderTemplate("theme", map[string]any{
		"vars": map[string]string{"--brand": "#123456", "--accent": "#abcdef"},
	})
	if err != nil {
		t.Fatalf("render theme: %v", err)
	}
	want := ":root {\n  --accent: #abcdef;\n  --brand: #123456;\n}"
	if theme != want {
		t.Fatalf("css vars mismatch\nwant: %q\n got: %q", want, theme)
	}
}

func TestEngine_RenderString(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.Render("{{ a }}-{{ b }}", map[string]any{"a": 1, "b": "two"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if result != "1-two" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without base dir or fs")
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
