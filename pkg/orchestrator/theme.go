package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// WithThemeSelector resolves the theme handed to every backend.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithTheme picks the theme and variant requested from the selector.
func WithTheme(name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeName = name
		o.themeVariant = variant
	}
}

// WithThemeFallbacks supplies tokens used when the selected manifest does not
// define them.
func WithThemeFallbacks(tokens map[string]string) Option {
	return func(o *Orchestrator) {
		if len(tokens) == 0 {
			return
		}
		if o.themeFallbacks == nil {
			o.themeFallbacks = make(map[string]string, len(tokens))
		}
		for key, value := range tokens {
			o.themeFallbacks[key] = value
		}
	}
}

// ThemeConfig resolves the current theme into renderer configuration. It
// returns nil when no selector or fallback tokens are configured.
func (o *Orchestrator) ThemeConfig() (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		if len(o.themeFallbacks) == 0 {
			return nil, nil
		}
		return rendererConfig(nil, o.themeFallbacks), nil
	}
	selection, err := o.themeSelector.Select(o.themeName, o.themeVariant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme %q: %w", o.themeName, err)
	}
	return rendererConfig(selection, o.themeFallbacks), nil
}

// rendererConfig merges fallback, manifest and variant tokens in that order.
// Templates and asset files follow the same precedence, and every token is
// exposed as a "--name" CSS variable.
func rendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Tokens:   merge(fallbacks),
		Partials: map[string]string{},
	}
	prefix := ""
	files := map[string]string{}

	if selection != nil {
		cfg.Theme = selection.Theme
		cfg.Variant = selection.Variant
		if manifest := selection.Manifest; manifest != nil {
			cfg.Tokens = merge(cfg.Tokens, manifest.Tokens)
			cfg.Partials = merge(cfg.Partials, manifest.Templates)
			prefix = manifest.Assets.Prefix
			files = merge(files, manifest.Assets.Files)
			if variant, ok := manifest.Variants[selection.Variant]; ok {
				cfg.Tokens = merge(cfg.Tokens, variant.Tokens)
				cfg.Partials = merge(cfg.Partials, variant.Templates)
				if variant.Assets.Prefix != "" {
					prefix = variant.Assets.Prefix
				}
				files = merge(files, variant.Assets.Files)
			}
		}
	}

	cfg.CSSVars = make(map[string]string, len(cfg.Tokens))
	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+key] = value
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if prefix == "" || strings.Contains(file, "://") {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

func merge(maps ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, m := range maps {
		for key, value := range m {
			out[key] = value
		}
	}
	return out
}

// StaticSelector serves themes from manifests held in memory.
type StaticSelector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*StaticSelector)(nil)

// NewStaticSelector indexes manifests by name. The first manifest is the
// default theme unless defaultTheme names another.
func NewStaticSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*StaticSelector, error) {
	s := &StaticSelector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   defaultTheme,
		defaultVariant: defaultVariant,
	}
	for _, manifest := range manifests {
		if manifest == nil || manifest.Name == "" {
			return nil, fmt.Errorf("orchestrator: theme manifest requires a name")
		}
		if _, exists := s.manifests[manifest.Name]; exists {
			return nil, fmt.Errorf("orchestrator: theme %q registered twice", manifest.Name)
		}
		s.manifests[manifest.Name] = manifest
		if s.defaultTheme == "" {
			s.defaultTheme = manifest.Name
		}
	}
	return s, nil
}

// Select returns the named theme and variant, falling back to the defaults
// for empty arguments. An unknown variant is an error.
func (s *StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name == "" {
		name = s.defaultTheme
	}
	if variant == "" {
		variant = s.defaultVariant
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("theme %q not found (have %s)", name, strings.Join(s.names(), ", "))
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

func (s *StaticSelector) names() []string {
	out := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
