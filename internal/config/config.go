package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formdoc/pkg/orchestrator"
	"github.com/goliatone/go-formdoc/pkg/renderers/image"
)

// Backends lists the export backends a config may select.
var Backends = []string{"html", "image", "markdown", "text"}

// Config is the application configuration loaded from YAML.
type Config struct {
	Export ExportConfig `yaml:"export"`
	Theme  ThemeConfig  `yaml:"theme"`
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	Schema SchemaConfig `yaml:"schema"`
}

type ExportConfig struct {
	Backend string       `yaml:"backend"`
	OutDir  string       `yaml:"outDir"`
	Chrome  ChromeConfig `yaml:"chrome"`
	// TextWidth wraps the text backend; zero keeps lines unwrapped.
	TextWidth int `yaml:"textWidth"`
}

type ChromeConfig struct {
	Bin        string `yaml:"bin"`
	ControlURL string `yaml:"controlURL"`
	Headless   *bool  `yaml:"headless"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
}

type ThemeConfig struct {
	Name      string            `yaml:"name"`
	Variant   string            `yaml:"variant"`
	Tokens    map[string]string `yaml:"tokens"`
	Manifests []ManifestConfig  `yaml:"manifests"`
}

type ManifestConfig struct {
	Name      string                   `yaml:"name"`
	Version   string                   `yaml:"version"`
	Tokens    map[string]string        `yaml:"tokens"`
	Templates map[string]string        `yaml:"templates"`
	Assets    AssetsConfig             `yaml:"assets"`
	Variants  map[string]VariantConfig `yaml:"variants"`
}

type VariantConfig struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
	Assets    AssetsConfig      `yaml:"assets"`
}

type AssetsConfig struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DataConfig struct {
	// Path is the record set JSON file. Empty uses the embedded sample.
	Path     string        `yaml:"path"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

type SchemaConfig struct {
	// Dir holds extra schema files. Empty uses the embedded schemas.
	Dir string `yaml:"dir"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	chrome := image.DefaultChromeConfig()
	headless := chrome.Headless
	return Config{
		Export: ExportConfig{
			Backend: "html",
			OutDir:  "exports",
			Chrome: ChromeConfig{
				Headless: &headless,
				Width:    chrome.Width,
				Height:   chrome.Height,
			},
		},
		Server: ServerConfig{Addr: ":8080"},
		Data:   DataConfig{Debounce: 300 * time.Millisecond},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := cfg.decode(data); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode: %w", err)
	}
	return c.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !contains(Backends, c.Export.Backend) {
		return fmt.Errorf("export.backend %q is not one of %s", c.Export.Backend, strings.Join(Backends, ", "))
	}
	if c.Export.Chrome.Width < 0 || c.Export.Chrome.Height < 0 {
		return errors.New("export.chrome width and height must not be negative")
	}
	if c.Export.TextWidth < 0 {
		return errors.New("export.textWidth must not be negative")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}
	if c.Data.Debounce < 0 {
		return errors.New("data.debounce must not be negative")
	}
	if c.Data.Watch && c.Data.Path == "" {
		return errors.New("data.watch requires data.path")
	}
	seen := map[string]bool{}
	for idx, manifest := range c.Theme.Manifests {
		if manifest.Name == "" {
			return fmt.Errorf("theme.manifests[%d].name is required", idx)
		}
		if seen[manifest.Name] {
			return fmt.Errorf("theme manifest %q declared twice", manifest.Name)
		}
		seen[manifest.Name] = true
	}
	if c.Theme.Name != "" && len(c.Theme.Manifests) > 0 && !seen[c.Theme.Name] {
		return fmt.Errorf("theme.name %q has no manifest", c.Theme.Name)
	}
	return nil
}

// ChromeConfig converts the browser settings for the image backend.
func (c ExportConfig) ChromeConfig() image.ChromeConfig {
	out := image.DefaultChromeConfig()
	out.Bin = c.Chrome.Bin
	out.ControlURL = c.Chrome.ControlURL
	if c.Chrome.Headless != nil {
		out.Headless = *c.Chrome.Headless
	}
	if c.Chrome.Width > 0 {
		out.Width = c.Chrome.Width
	}
	if c.Chrome.Height > 0 {
		out.Height = c.Chrome.Height
	}
	return out
}

// Renderers converts the export settings for the built-in backends.
func (c ExportConfig) Renderers() orchestrator.RendererConfig {
	return orchestrator.RendererConfig{
		Chrome:    c.ChromeConfig(),
		TextWidth: c.TextWidth,
	}
}

// ManifestList converts the declared themes into go-theme manifests.
func (c ThemeConfig) ManifestList() []*theme.Manifest {
	out := make([]*theme.Manifest, 0, len(c.Manifests))
	for _, m := range c.Manifests {
		manifest := &theme.Manifest{
			Name:      m.Name,
			Version:   m.Version,
			Tokens:    m.Tokens,
			Templates: m.Templates,
			Assets:    theme.Assets{Prefix: m.Assets.Prefix, Files: m.Assets.Files},
		}
		if len(m.Variants) > 0 {
			manifest.Variants = make(map[string]theme.Variant, len(m.Variants))
			for name, v := range m.Variants {
				manifest.Variants[name] = theme.Variant{
					Tokens:    v.Tokens,
					Templates: v.Templates,
					Assets:    theme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
				}
			}
		}
		out = append(out, manifest)
	}
	return out
}

// Options turns the theme settings into orchestrator options. Without
// manifests only the fallback tokens apply.
func (c ThemeConfig) Options() ([]orchestrator.Option, error) {
	opts := []orchestrator.Option{orchestrator.WithThemeFallbacks(c.Tokens)}
	if len(c.Manifests) == 0 {
		return opts, nil
	}
	selector, err := orchestrator.NewStaticSelector(c.Name, c.Variant, c.ManifestList()...)
	if err != nil {
		return nil, fmt.Errorf("config: theme: %w", err)
	}
	return append(opts,
		orchestrator.WithThemeSelector(selector),
		orchestrator.WithTheme(c.Name, c.Variant),
	), nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
