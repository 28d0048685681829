// Package image rasterises the HTML export into a PNG through headless
// Chrome.
package image

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/renderers/html"
)

// Name is the registry name of the image backend.
const Name = "image"

// Capturer turns an HTML page into PNG bytes.
type Capturer interface {
	Capture(ctx context.Context, document []byte) ([]byte, error)
}

type Option func(*config)

type config struct {
	page     render.Renderer
	capturer Capturer
	chrome   ChromeConfig
	logger   *zap.Logger
}

// WithPageRenderer replaces the HTML backend used to lay out the page.
func WithPageRenderer(renderer render.Renderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.page = renderer
		}
	}
}

// WithCapturer replaces the browser capturer.
func WithCapturer(capturer Capturer) Option {
	return func(cfg *config) {
		if capturer != nil {
			cfg.capturer = capturer
		}
	}
}

// WithChrome configures the default rod capturer.
func WithChrome(chrome ChromeConfig) Option {
	return func(cfg *config) {
		cfg.chrome = chrome
	}
}

// WithLogger sets the logger handed to the default capturer.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Renderer exports a form as a PNG screenshot of its HTML page.
type Renderer struct {
	page     render.Renderer
	capturer Capturer
}

var _ render.Renderer = (*Renderer)(nil)

// New builds the image renderer. Without WithCapturer a RodCapturer is used;
// Chrome is only started on the first export.
func New(options ...Option) (*Renderer, error) {
	cfg := config{chrome: DefaultChromeConfig(), logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.page == nil {
		page, err := html.New()
		if err != nil {
			return nil, fmt.Errorf("image renderer: %w", err)
		}
		cfg.page = page
	}
	if cfg.capturer == nil {
		cfg.capturer = NewRodCapturer(cfg.chrome, cfg.logger)
	}
	return &Renderer{page: cfg.page, capturer: cfg.capturer}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "image/png"
}

func (r *Renderer) Render(ctx context.Context, doc render.Document, opts render.RenderOptions) ([]byte, error) {
	page, err := r.page.Render(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("image renderer: layout page: %w", err)
	}
	shot, err := r.capturer.Capture(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("image renderer: %w", err)
	}
	return shot, nil
}

// Close releases the capturer when it holds a browser.
func (r *Renderer) Close() error {
	if closer, ok := r.capturer.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
