package parser

import (
	"fmt"
	"path"
	"strings"

	"github.com/gregcmartin/doppel/internal/models"
	"gopkg.in/yaml.v3"
)

// parseGeneric is the best-effort extractor for structured documents that
// a dedicated loader rejected or that carry no recognizable version
// marker. It walks the raw document for the operations and schema
// sections, tolerating both components.schemas and definitions layouts,
// and omits anything unrecoverable.
func (p *Parser) parseGeneric(raw []byte, apiName string) (*models.ApiModel, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("document is not a structured specification: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document is empty")
	}

	api := &models.ApiModel{
		Identity: models.Identity{Name: apiName},
	}

	if info, ok := doc["info"].(map[string]interface{}); ok {
		api.Title, _ = info["title"].(string)
		api.Description, _ = info["description"].(string)
		api.Identity.Version, _ = info["version"].(string)
	}

	if paths, ok := doc["paths"].(map[string]interface{}); ok {
		for pathTemplate, item := range paths {
			operations, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			for method, op := range operations {
				// Non-operation keys like "parameters" fail the
				// known-method check during normalization.
				api.Endpoints = append(api.Endpoints, models.Endpoint{
					Method:     method,
					Path:       pathTemplate,
					Parameters: genericParameters(op),
				})
			}
		}
	}

	for name, schema := range genericSchemaSection(doc) {
		schemaMap, ok := schema.(map[string]interface{})
		if !ok {
			continue
		}
		api.Schemas = append(api.Schemas, models.Schema{
			Name:       name,
			Properties: genericProperties(schemaMap),
		})
	}

	return api, nil
}

// genericSchemaSection locates the schema definitions regardless of the
// structural version: components.schemas (OpenAPI 3) or definitions
// (Swagger 2)
func genericSchemaSection(doc map[string]interface{}) map[string]interface{} {
	if components, ok := doc["components"].(map[string]interface{}); ok {
		if schemas, ok := components["schemas"].(map[string]interface{}); ok {
			return schemas
		}
	}
	if definitions, ok := doc["definitions"].(map[string]interface{}); ok {
		return definitions
	}
	return nil
}

// genericParameters extracts parameter records from a raw operation object
func genericParameters(op interface{}) []models.Parameter {
	opMap, ok := op.(map[string]interface{})
	if !ok {
		return nil
	}

	var params []models.Parameter
	if rawParams, ok := opMap["parameters"].([]interface{}); ok {
		for _, rawParam := range rawParams {
			paramMap, ok := rawParam.(map[string]interface{})
			if !ok {
				continue
			}
			name, _ := paramMap["name"].(string)
			in, _ := paramMap["in"].(string)
			if name == "" || in == "" {
				continue
			}
			required, _ := paramMap["required"].(bool)
			params = append(params, models.Parameter{Name: name, In: in, Required: required})
		}
	}

	if _, ok := opMap["requestBody"]; ok {
		params = append(params, models.Parameter{Name: "body", In: models.InBody})
	}

	return params
}

// genericProperties maps schema properties to type names, resolving $ref
// values to the referenced schema name
func genericProperties(schema map[string]interface{}) map[string]string {
	rawProps, ok := schema["properties"].(map[string]interface{})
	if !ok || len(rawProps) == 0 {
		return nil
	}
	props := make(map[string]string, len(rawProps))
	for name, value := range rawProps {
		props[name] = genericTypeName(value)
	}
	return props
}

// genericTypeName resolves a raw property schema to a type name
func genericTypeName(value interface{}) string {
	prop, ok := value.(map[string]interface{})
	if !ok {
		return "object"
	}
	if ref, ok := prop["$ref"].(string); ok && ref != "" {
		return path.Base(strings.TrimSuffix(ref, "/"))
	}
	if t, ok := prop["type"].(string); ok && t != "" {
		return t
	}
	return "object"
}
