package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// ValidateRecordSet checks decoded JSON (maps, slices, strings, bools,
// float64) against the RecordSet schema of doc. Violations are reported as
// ErrSchemaMismatch with every failing location in the detail.
func ValidateRecordSet(doc *openapi3.T, raw any) error {
	if doc == nil || doc.Components == nil {
		return errors.New("openapi: document has no components")
	}
	ref := doc.Components.Schemas[RecordSetSchema]
	if ref == nil || ref.Value == nil {
		return fmt.Errorf("openapi: document has no %s schema", RecordSetSchema)
	}

	err := ref.Value.VisitJSON(raw, openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	return &model.Error{
		Kind:   model.ErrSchemaMismatch,
		Op:     "openapi",
		Detail: describeViolations(err),
		Err:    err,
	}
}

// ValidateRecordSetJSON decodes data and validates it.
func ValidateRecordSetJSON(doc *openapi3.T, data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return &model.Error{Kind: model.ErrParse, Op: "openapi", Detail: "record set is not valid JSON", Err: err}
	}
	return ValidateRecordSet(doc, raw)
}

func describeViolations(err error) string {
	var multi openapi3.MultiError
	if !errors.As(err, &multi) || len(multi) == 0 {
		return violation(err)
	}
	out := violation(multi[0])
	if len(multi) > 1 {
		out = fmt.Sprintf("%s (and %d more)", out, len(multi)-1)
	}
	return out
}

func violation(err error) string {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			return fmt.Sprintf("/%s: %s", strings.Join(pointer, "/"), schemaErr.Reason)
		}
		return schemaErr.Reason
	}
	return err.Error()
}
