// Package orchestrator is the session facade over the schema registry, the
// form engine, the config bridge and the export backends. The current record
// set lives behind an atomic pointer and is replaced wholesale on every edit
// or load, so readers never observe a half-applied change.
package orchestrator
