package schema

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed schemas/*.yaml
var embeddedSchemas embed.FS

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// EmbeddedFS exposes the built-in schema files (Element, Data Flow and Data
// Store descriptions) so callers can extend or override them.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedSchemas, "schemas")
	if err != nil {
		return embeddedSchemas
	}
	return sub
}

// Default returns the registry built from the embedded schema files. It is
// loaded once per process.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = LoadFS(EmbeddedFS())
	})
	return defaultRegistry, defaultErr
}

// MustDefault panics if the embedded schemas fail to load.
func MustDefault() *Registry {
	reg, err := Default()
	if err != nil {
		panic(err)
	}
	return reg
}
