package text

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	theme "github.com/goliatone/go-theme"
)

const (
	defaultAccent = lipgloss.Color("#2f5d8a")
	defaultMuted  = lipgloss.Color("#7b8794")
	errorColor    = lipgloss.Color("#e53935")
)

// Styles holds the lipgloss styles used for one render.
type Styles struct {
	Badge   lipgloss.Style
	Title   lipgloss.Style
	Section lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles derives styles from r. The theme "brand" and "muted" tokens
// override the default colours when present.
func NewStyles(r *lipgloss.Renderer, cfg *theme.RendererConfig) Styles {
	if r == nil {
		r = lipgloss.NewRenderer(io.Discard)
	}
	accent, muted := lipgloss.Color(defaultAccent), lipgloss.Color(defaultMuted)
	if cfg != nil {
		if brand := cfg.Tokens["brand"]; brand != "" {
			accent = lipgloss.Color(brand)
		}
		if value := cfg.Tokens["muted"]; value != "" {
			muted = lipgloss.Color(value)
		}
	}

	return Styles{
		Badge: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Foreground(accent).
			Padding(0, 1),
		Title:   r.NewStyle().Bold(true).MarginLeft(1),
		Section: r.NewStyle().Bold(true).Underline(true).Foreground(accent).MarginTop(1),
		Label:   r.NewStyle().Bold(true),
		Value:   r.NewStyle().PaddingLeft(2),
		Muted:   r.NewStyle().Foreground(muted).PaddingLeft(2),
		Error:   r.NewStyle().Foreground(errorColor).PaddingLeft(2),
	}
}
