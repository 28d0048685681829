// Package markdown exports forms as GitHub-flavoured markdown by converting
// the HTML page.
package markdown

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/renderers/html"
)

// Name is the registry name of the markdown backend.
const Name = "markdown"

var excessiveLines = regexp.MustCompile(`\n{3,}`)

type Option func(*config)

type config struct {
	page render.Renderer
}

// WithPageRenderer replaces the HTML backend whose output is converted.
func WithPageRenderer(renderer render.Renderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.page = renderer
		}
	}
}

// Renderer converts the HTML export into markdown. Flag sets become task
// lists and the validation criteria a pipe table.
type Renderer struct {
	page      render.Renderer
	converter *md.Converter
}

var _ render.Renderer = (*Renderer)(nil)

// New builds the markdown renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.page == nil {
		page, err := html.New(html.WithoutDefaultStyles())
		if err != nil {
			return nil, fmt.Errorf("markdown renderer: %w", err)
		}
		cfg.page = page
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	converter.Remove("head", "style", "script", "form")

	return &Renderer{page: cfg.page, converter: converter}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/markdown; charset=utf-8"
}

// Render always converts a view-mode page; edit controls have no markdown
// form.
func (r *Renderer) Render(ctx context.Context, doc render.Document, opts render.RenderOptions) ([]byte, error) {
	page, err := r.page.Render(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: layout page: %w", err)
	}
	out, err := r.converter.ConvertBytes(page)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: convert: %w", err)
	}
	return []byte(clean(string(out))), nil
}

func clean(markdown string) string {
	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")
	markdown = excessiveLines.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(markdown) + "\n"
}
