// Package schema is the form schema registry. Schemas are declared in JSON or
// YAML files, loaded once at startup through LoadFS and frozen inside a
// Registry. New form types are added by dropping another schema file into the
// filesystem handed to LoadFS; no rendering code changes are needed.
package schema
