package parser

import (
	"fmt"
	"path"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gregcmartin/doppel/internal/models"
)

// parseOpenAPI3 extracts an ApiModel from an OpenAPI 3.x document. The
// loader is used without a validation pass so incomplete documents still
// yield their recoverable parts.
func (p *Parser) parseOpenAPI3(raw []byte, apiName string) (*models.ApiModel, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI 3.x spec: %w", err)
	}

	api := &models.ApiModel{
		Identity: models.Identity{Name: apiName},
	}
	if doc.Info != nil {
		api.Title = doc.Info.Title
		api.Description = doc.Info.Description
		api.Identity.Version = doc.Info.Version
	}

	if doc.Paths != nil {
		for pathTemplate, pathItem := range doc.Paths.Map() {
			if pathItem == nil {
				continue
			}
			for method, op := range pathItem.Operations() {
				if op == nil {
					continue
				}
				api.Endpoints = append(api.Endpoints, models.Endpoint{
					Method:     method,
					Path:       pathTemplate,
					Parameters: extractOperationParameters(pathItem, op),
				})
			}
		}
	}

	if doc.Components != nil {
		for name, schemaRef := range doc.Components.Schemas {
			api.Schemas = append(api.Schemas, models.Schema{
				Name:       name,
				Properties: extractSchemaProperties(schemaRef),
			})
		}
	}

	return api, nil
}

// extractOperationParameters merges path-level and operation-level
// parameters; a request body is recorded as a single "body" parameter
func extractOperationParameters(pathItem *openapi3.PathItem, op *openapi3.Operation) []models.Parameter {
	var params []models.Parameter

	appendParam := func(ref *openapi3.ParameterRef) {
		if ref == nil || ref.Value == nil {
			return
		}
		params = append(params, models.Parameter{
			Name:     ref.Value.Name,
			In:       ref.Value.In,
			Required: ref.Value.Required,
		})
	}

	for _, ref := range pathItem.Parameters {
		appendParam(ref)
	}
	for _, ref := range op.Parameters {
		appendParam(ref)
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		params = append(params, models.Parameter{
			Name:     "body",
			In:       models.InBody,
			Required: op.RequestBody.Value.Required,
		})
	}

	return params
}

// extractSchemaProperties maps property names to type names, resolving
// references to the referenced schema name
func extractSchemaProperties(schemaRef *openapi3.SchemaRef) map[string]string {
	if schemaRef == nil || schemaRef.Value == nil || len(schemaRef.Value.Properties) == 0 {
		return nil
	}
	props := make(map[string]string, len(schemaRef.Value.Properties))
	for name, propRef := range schemaRef.Value.Properties {
		props[name] = schemaTypeName(propRef)
	}
	return props
}

// schemaTypeName resolves a property schema to a primitive or declared
// type name
func schemaTypeName(ref *openapi3.SchemaRef) string {
	if ref == nil {
		return "object"
	}
	if ref.Ref != "" {
		return path.Base(ref.Ref)
	}
	if ref.Value == nil {
		return "object"
	}
	if ref.Value.Type != "" {
		return ref.Value.Type
	}
	return "object"
}
