package render

import (
	"context"
)

// Renderer converts a Document into a static byte representation (HTML,
// markdown, PNG, terminal text).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, doc Document, options RenderOptions) ([]byte, error)
}

// Extension returns the file extension conventionally used for a renderer's
// content type, without the leading dot.
func Extension(r Renderer) string {
	switch r.ContentType() {
	case "text/html", "text/html; charset=utf-8":
		return "html"
	case "text/markdown", "text/markdown; charset=utf-8":
		return "md"
	case "image/png":
		return "png"
	case "application/json":
		return "json"
	default:
		return "txt"
	}
}
