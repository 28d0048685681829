package orchestrator

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/renderers/html"
	"github.com/goliatone/go-formdoc/pkg/renderers/image"
	"github.com/goliatone/go-formdoc/pkg/renderers/markdown"
	"github.com/goliatone/go-formdoc/pkg/renderers/text"
)

// RendererConfig tunes the built-in backends.
type RendererConfig struct {
	Chrome     image.ChromeConfig
	Stylesheet string
	FormAction string
	TextWidth  int
}

// DefaultRenderers registers the html, image, markdown and text backends with
// their defaults. The image backend starts Chrome on first use only.
func DefaultRenderers(logger *zap.Logger) (*render.Registry, error) {
	return NewRenderers(RendererConfig{Chrome: image.DefaultChromeConfig()}, logger)
}

// NewRenderers registers the built-in backends configured by cfg.
func NewRenderers(cfg RendererConfig, logger *zap.Logger) (*render.Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := image.DefaultChromeConfig()
	if cfg.Chrome.Width <= 0 || cfg.Chrome.Height <= 0 {
		cfg.Chrome.Width, cfg.Chrome.Height = defaults.Width, defaults.Height
	}
	var htmlOptions []html.Option
	if cfg.Stylesheet != "" {
		htmlOptions = append(htmlOptions, html.WithStylesheet(cfg.Stylesheet))
	}
	if cfg.FormAction != "" {
		htmlOptions = append(htmlOptions, html.WithFormAction(cfg.FormAction))
	}
	page, err := html.New(htmlOptions...)
	if err != nil {
		return nil, err
	}

	// Exports never carry edit controls, so the derived backends share a
	// plain page renderer.
	plain, err := html.New(html.WithoutDefaultStyles())
	if err != nil {
		return nil, err
	}
	md, err := markdown.New(markdown.WithPageRenderer(plain))
	if err != nil {
		return nil, err
	}
	img, err := image.New(
		image.WithPageRenderer(page),
		image.WithChrome(cfg.Chrome),
		image.WithLogger(logger.Named("image")),
	)
	if err != nil {
		return nil, err
	}
	var textOptions []text.Option
	if cfg.TextWidth > 0 {
		textOptions = append(textOptions, text.WithWidth(cfg.TextWidth))
	}

	return render.NewRegistry(page, img, md, text.New(textOptions...)), nil
}
