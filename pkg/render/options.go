package render

import theme "github.com/goliatone/go-theme"

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the document.
type RenderOptions struct {
	// Theme carries resolved tokens, CSS variables and asset URLs. Nil keeps
	// the renderer's built-in look.
	Theme *theme.RendererConfig
	// Errors surfaces feedback keyed by field key, typically produced by
	// MapErrors after a rejected edit.
	Errors map[string][]string
	// FormErrors holds messages not tied to a single field.
	FormErrors []string
	// Hidden lists extra inputs emitted inside edit-mode forms.
	Hidden []HiddenField
	// Subset limits output to matching sections or field keys.
	Subset FieldSubset
}
