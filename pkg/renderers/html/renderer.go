package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-formdoc/pkg/render"
	rendertemplate "github.com/goliatone/go-formdoc/pkg/render/template"
	"github.com/goliatone/go-formdoc/pkg/render/template/gotemplate"
)

// Name is the registry name of the HTML backend.
const Name = "html"

const pageTemplate = "templates/document"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	inlineStyles     bool
	stylesheet       string
	action           string
	chrome           Chrome
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide templates/document.tpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithoutDefaultStyles stops the embedded stylesheet from being inlined.
func WithoutDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = false
	}
}

// WithStylesheet links an external stylesheet in the page head.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		cfg.stylesheet = href
	}
}

// WithFormAction sets where edit-mode controls post intents. The default is
// the relative path "<formType>/intents".
func WithFormAction(action string) Option {
	return func(cfg *config) {
		cfg.action = action
	}
}

// WithChrome adds classes to the page chrome.
func WithChrome(chrome Chrome) Option {
	return func(cfg *config) {
		cfg.chrome = chrome
	}
}

// Renderer produces a self-contained, print-ready HTML page for one form.
// Edit-mode documents get one small form per editable value so the page
// works without JavaScript.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	cfg       config
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), inlineStyles: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, cfg: cfg}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes doc as a complete HTML page.
func (r *Renderer) Render(ctx context.Context, doc render.Document, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page := buildPage(render.ApplySubset(doc, opts.Subset), opts)
	page.Classes = r.cfg.chrome.classes()
	page.Action = r.cfg.action
	if page.Action == "" {
		page.Action = doc.FormType + "/intents"
	}
	if r.cfg.inlineStyles {
		page.Styles = defaultStylesheet()
	}
	page.Stylesheet = r.cfg.stylesheet
	if opts.Theme != nil {
		page.Theme = themeView{
			Name:    opts.Theme.Theme,
			Variant: opts.Theme.Variant,
			CSSVars: cssVars(opts.Theme.CSSVars),
		}
		if page.Stylesheet == "" && opts.Theme.AssetURL != nil {
			page.Stylesheet = opts.Theme.AssetURL(StylesheetAsset)
		}
	}

	result, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"page": page,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func cssVars(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		if cleaned := cssValue(value); cleaned != "" {
			out[cssValue(key)] = cleaned
		}
	}
	return out
}
