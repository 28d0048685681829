// Package config loads the YAML application configuration of the formdoc
// command: export backend and browser settings, theme manifests, the HTTP
// address and the record set file to load and watch.
package config
