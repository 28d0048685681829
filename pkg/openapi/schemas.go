package openapi

import (
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

type object = map[string]any

// Component names shared by every generated document.
const (
	RecordSetSchema  = "RecordSet"
	EditIntentSchema = "EditIntent"
	ErrorSchema      = "Error"
)

func ref(name string) object {
	return object{"$ref": "#/components/schemas/" + name}
}

func stringSchema() object {
	return object{"type": "string"}
}

// valueSchema mirrors the JSON shape accepted by the field codecs. Every field
// may be null, which decodes to the zero value of its kind.
func valueSchema(spec model.FieldSpec) object {
	var out object
	switch spec.Kind {
	case model.KindScalar, model.KindScalarMultiline:
		out = stringSchema()
	case model.KindStringList:
		out = object{"type": "array", "items": stringSchema()}
	case model.KindKeyedScalarMap:
		out = keyedObject(spec, stringSchema())
	case model.KindBooleanFlagSet:
		out = keyedObject(spec, object{"type": "boolean", "nullable": true})
	case model.KindKeyValueRow:
		label := stringSchema()
		if len(spec.Keys) > 0 {
			label["enum"] = stringsToAny(spec.Keys)
		}
		out = object{
			"type": "array",
			"items": object{
				"type":                 "object",
				"required":             []string{"label"},
				"additionalProperties": false,
				"properties": object{
					"label": label,
					"value": stringSchema(),
				},
			},
		}
	case model.KindValidationTable:
		out = object{
			"type": "array",
			"items": object{
				"type":                 "object",
				"required":             []string{"limit"},
				"additionalProperties": false,
				"properties": object{
					"limit":      limitSchema(),
					"continuous": stringSchema(),
					"discrete":   stringSchema(),
					"meaning":    stringSchema(),
				},
			},
		}
	default:
		out = object{}
	}
	out["nullable"] = true
	if spec.Label != "" {
		out["title"] = spec.Label
	}
	if spec.Help != "" {
		out["description"] = spec.Help
	}
	out["x-formdoc-kind"] = string(spec.Kind)
	return out
}

// keyedObject declares the fixed key set when one exists and otherwise accepts
// any key carrying values of the given shape.
func keyedObject(spec model.FieldSpec, value object) object {
	out := object{"type": "object"}
	if len(spec.Keys) == 0 {
		out["additionalProperties"] = value
		return out
	}
	props := make(object, len(spec.Keys))
	for _, key := range spec.Keys {
		prop := make(object, len(value)+1)
		for k, v := range value {
			prop[k] = v
		}
		prop["title"] = schema.KeyLabel(spec, key)
		props[key] = prop
	}
	out["properties"] = props
	out["additionalProperties"] = false
	return out
}

func formSchema(s model.FormSchema) object {
	fields := make(object, len(s.Fields))
	order := make([]any, 0, len(s.Fields))
	for _, spec := range s.Fields {
		fields[spec.Key] = valueSchema(spec)
		order = append(order, spec.Key)
	}
	return object{
		"type":                  "object",
		"title":                 s.Name,
		"required":              []string{"fields"},
		"additionalProperties":  false,
		"x-formdoc-field-order": order,
		"properties": object{
			"formId": stringSchema(),
			"title":  stringSchema(),
			"fields": object{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           fields,
			},
		},
	}
}

func recordSetSchema(reg *schema.Registry) object {
	props := make(object, reg.Len())
	for _, formType := range reg.Types() {
		props[formType] = ref(formType)
	}
	return object{
		"type":                 "object",
		"description":          "Every form record keyed by form type.",
		"additionalProperties": false,
		"properties":           props,
	}
}

// limitSchema matches what model.ParseLimit accepts: upper or lower in any
// case, surrounding blanks allowed.
func limitSchema() object {
	return object{
		"type":    "string",
		"pattern": `^\s*(?i:upper|lower)\s*$`,
	}
}

// editIntentSchema leaves formType optional: the intents route fills it from
// the URL.
func editIntentSchema() object {
	ops := []any{
		string(model.OpSet), string(model.OpToggle), string(model.OpInsert),
		string(model.OpRemove), string(model.OpAddRow), string(model.OpRemoveRow),
	}
	return object{
		"type":     "object",
		"required": []string{"fieldKey"},
		"properties": object{
			"formType": stringSchema(),
			"fieldKey": stringSchema(),
			"op":       object{"type": "string", "enum": ops},
			"path": object{
				"type": "object",
				"properties": object{
					"index":  object{"type": "integer", "minimum": 0},
					"key":    stringSchema(),
					"limit":  limitSchema(),
					"column": object{"type": "string", "enum": []any{string(model.ColumnContinuous), string(model.ColumnDiscrete), string(model.ColumnMeaning)}},
				},
			},
			"newValue": object{"description": "A string for text edits or a boolean for flags."},
		},
	}
}

func errorSchema() object {
	return object{
		"type":     "object",
		"required": []string{"error"},
		"properties": object{
			"error":  stringSchema(),
			"kind":   stringSchema(),
			"field":  stringSchema(),
			"fields": object{"type": "object", "additionalProperties": object{"type": "array", "items": stringSchema()}},
		},
	}
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
