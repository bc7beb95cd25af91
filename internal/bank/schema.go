package bank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

var bankSchemaDef = map[string]any{
	"type":     "object",
	"required": []string{"version", "bank", "subjects"},
	"properties": map[string]any{
		"version": map[string]any{"type": "string"},
		"bank":    map[string]any{"type": "string", "minLength": 1},
		"subjects": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"name", "items"},
				"properties": map[string]any{
					"name": map[string]any{"type": "string", "minLength": 1},
					"items": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []string{"prompt", "options", "answer"},
							"properties": map[string]any{
								"prompt": map[string]any{"type": "string", "minLength": 1},
								"options": map[string]any{
									"type":     "array",
									"minItems": 2,
									"items":    map[string]any{"type": "string"},
								},
								"answer":     map[string]any{"type": "integer", "minimum": 0},
								"topic":      map[string]any{"type": "string"},
								"difficulty": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
	},
}

var marksSchemaDef = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"correct": map[string]any{"type": "number", "minimum": 0},
		"wrong":   map[string]any{"type": "number", "minimum": 0},
	},
}

var examsSchemaDef = map[string]any{
	"type":     "object",
	"required": []string{"version", "exams"},
	"properties": map[string]any{
		"version": map[string]any{"type": "string"},
		"exams": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"id", "name", "bank", "duration", "sections"},
				"properties": map[string]any{
					"id":       map[string]any{"type": "string", "pattern": "^[a-z0-9][a-z0-9-]*$"},
					"name":     map[string]any{"type": "string", "minLength": 1},
					"bank":     map[string]any{"type": "string", "minLength": 1},
					"duration": map[string]any{"type": "string"},
					"marks":    marksSchemaDef,
					"sections": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items": map[string]any{
							"type":     "object",
							"required": []string{"subject", "quota"},
							"properties": map[string]any{
								"subject": map[string]any{"type": "string", "minLength": 1},
								"quota":   map[string]any{"type": "integer", "minimum": 0},
								"marks":   marksSchemaDef,
							},
						},
					},
				},
			},
		},
	},
}

var (
	schemaOnce    sync.Once
	bankSchema    *jsonschema.Schema
	examsSchema   *jsonschema.Schema
	schemaInitErr error
)

func compiledSchemas() (*jsonschema.Schema, *jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		for url, def := range map[string]map[string]any{
			"schema://bank.json":  bankSchemaDef,
			"schema://exams.json": examsSchemaDef,
		} {
			parsed, err := toJSONValue(def)
			if err != nil {
				schemaInitErr = err
				return
			}
			if err := c.AddResource(url, parsed); err != nil {
				schemaInitErr = fmt.Errorf("add resource %s: %w", url, err)
				return
			}
		}
		if bankSchema, schemaInitErr = c.Compile("schema://bank.json"); schemaInitErr != nil {
			return
		}
		examsSchema, schemaInitErr = c.Compile("schema://exams.json")
	})
	return bankSchema, examsSchema, schemaInitErr
}

// toJSONValue round-trips v through JSON so the validator sees the same
// value shapes it would get from a parsed JSON document.
func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return parsed, nil
}

// validateDoc checks a YAML document against a compiled schema.
func validateDoc(schema *jsonschema.Schema, raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	v, err := toJSONValue(doc)
	if err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
