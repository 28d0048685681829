// Package model defines the schema and record types shared by every layer of
// go-formdoc. A FormSchema is an ordered list of FieldSpecs, each tagged with a
// FieldKind; a FormRecord holds one typed Value per field key. Records are
// never mutated in place: FormRecord.With and RecordSet.With return fresh
// containers that share every untouched value with their source, which keeps
// edits cheap and makes reference-equality checks on siblings meaningful.
//
// The error taxonomy (ErrUnknownFormType, ErrUnknownField, ErrUnknownFlag,
// ErrIndexOutOfRange, ErrSchemaMismatch, ErrParse, ErrExportFailure) lives
// here as well so codecs, the engine, the config bridge and export backends
// report failures with a common vocabulary. Wrap them in *Error to attach the
// form type and field they refer to.
package model
