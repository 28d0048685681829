package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formdoc/pkg/schema"
)

const openAPIVersion = "3.0.3"

type Option func(*config)

type config struct {
	title   string
	version string
	server  string
}

// WithInfo overrides the document title and version.
func WithInfo(title, version string) Option {
	return func(cfg *config) {
		if title != "" {
			cfg.title = title
		}
		if version != "" {
			cfg.version = version
		}
	}
}

// WithServerURL lists url as the document server.
func WithServerURL(url string) Option {
	return func(cfg *config) {
		cfg.server = url
	}
}

// Describe builds and validates the OpenAPI document for reg: one component
// schema per form type, the RecordSet schema that ties them together and the
// HTTP operations served over them.
func Describe(reg *schema.Registry, options ...Option) (*openapi3.T, error) {
	if reg == nil {
		return nil, errors.New("openapi: registry is nil")
	}
	cfg := config{title: "formdoc", version: "1.0.0"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	raw, err := json.Marshal(build(reg, cfg))
	if err != nil {
		return nil, fmt.Errorf("openapi: encode document: %w", err)
	}

	ctx := context.Background()
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return doc, nil
}

func build(reg *schema.Registry, cfg config) object {
	schemas := object{
		RecordSetSchema:  recordSetSchema(reg),
		EditIntentSchema: editIntentSchema(),
		ErrorSchema:      errorSchema(),
	}
	types := make([]any, 0, reg.Len())
	for _, s := range reg.Schemas() {
		schemas[s.Type] = formSchema(s)
		types = append(types, s.Type)
	}

	doc := object{
		"openapi": openAPIVersion,
		"info": object{
			"title":   cfg.title,
			"version": cfg.version,
		},
		"paths": paths(types),
		"components": object{
			"schemas": schemas,
		},
	}
	if cfg.server != "" {
		doc["servers"] = []any{object{"url": cfg.server}}
	}
	return doc
}

func jsonBody(schemaName string) object {
	return object{"content": object{"application/json": object{"schema": ref(schemaName)}}}
}

func response(description string, content object) object {
	out := object{"description": description}
	for k, v := range content {
		out[k] = v
	}
	return out
}

func paths(types []any) object {
	formType := object{
		"name":     "type",
		"in":       "path",
		"required": true,
		"schema":   object{"type": "string", "enum": types},
	}
	failure := func(description string) object {
		return response(description, jsonBody(ErrorSchema))
	}

	return object{
		"/raw": object{
			"get": object{
				"operationId": "getRecordSet",
				"summary":     "Serialize every form record",
				"responses": object{
					"200": response("Current record set", jsonBody(RecordSetSchema)),
				},
			},
			"put": object{
				"operationId": "replaceRecordSet",
				"summary":     "Replace every form record",
				"requestBody": object{"required": true, "content": jsonBody(RecordSetSchema)["content"]},
				"responses": object{
					"200": response("Record set accepted", jsonBody(RecordSetSchema)),
					"400": failure("Malformed or mismatched record set; state is unchanged"),
				},
			},
		},
		"/forms/{type}": object{
			"get": object{
				"operationId": "viewForm",
				"summary":     "Render one form",
				"parameters": []any{
					formType,
					object{"name": "mode", "in": "query", "schema": object{"type": "string", "enum": []any{"view", "edit", "raw"}}},
				},
				"responses": object{
					"200": object{
						"description": "HTML page, or the record JSON in raw mode",
						"content": object{
							"text/html":        object{"schema": stringSchema()},
							"application/json": object{"schema": object{"type": "object"}},
						},
					},
					"404": failure("Unknown form type"),
				},
			},
		},
		"/forms/{type}/intents": object{
			"post": object{
				"operationId": "applyIntent",
				"summary":     "Apply one edit intent",
				"parameters":  []any{formType},
				"requestBody": object{
					"required": true,
					"content": object{
						"application/json":                  object{"schema": ref(EditIntentSchema)},
						"application/x-www-form-urlencoded": object{"schema": object{"type": "object"}},
					},
				},
				"responses": object{
					"200": object{"description": "Updated record", "content": object{"application/json": object{"schema": object{"type": "object"}}}},
					"303": object{"description": "Redirect back to the edit page for form posts"},
					"400": failure("Malformed intent"),
					"404": failure("Unknown form type"),
					"422": failure("Intent does not fit the field"),
				},
			},
		},
		"/forms/{type}/export": object{
			"get": object{
				"operationId": "exportForm",
				"summary":     "Export one form",
				"parameters": []any{
					formType,
					object{"name": "backend", "in": "query", "schema": object{"type": "string", "enum": []any{"html", "image", "markdown", "text"}}},
				},
				"responses": object{
					"200": object{"description": "Export output in the backend content type"},
					"404": failure("Unknown form type or backend"),
					"502": failure("Export backend failed"),
				},
			},
		},
	}
}
