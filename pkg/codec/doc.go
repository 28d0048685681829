// Package codec holds one Codec per model.FieldKind. Codecs decode JSON
// fragments into typed values, encode them back in display order, produce
// read-only Cells for renderers and merge EditIntents into new values without
// touching the old ones. Dispatch happens on the kind tag through For, so a
// new form type never needs new codec code.
package codec
