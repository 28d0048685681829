package formdoc

import (
	"io/fs"

	"github.com/goliatone/go-formdoc/pkg/renderers/html"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or override them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// EmbeddedSchemas exposes the built-in form schema files.
func EmbeddedSchemas() fs.FS {
	return schema.EmbeddedFS()
}

// AssetsFS exposes the default stylesheet so Go applications can serve it
// next to pages rendered with WithoutDefaultStyles.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formdoc.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}
