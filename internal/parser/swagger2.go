package parser

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/go-openapi/loads"
	"github.com/go-openapi/spec"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
	"github.com/gregcmartin/doppel/internal/models"
	"gopkg.in/yaml.v3"
)

// parseSwagger2 extracts an ApiModel from a Swagger 2.0 document.
// Structural validation findings are logged but never fail extraction.
func (p *Parser) parseSwagger2(raw []byte, apiName string) (*models.ApiModel, error) {
	jsonDoc, err := toJSONDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Swagger 2.0 spec: %w", err)
	}

	doc, err := loads.Analyzed(jsonDoc, "2.0")
	if err != nil {
		return nil, fmt.Errorf("failed to load Swagger 2.0 spec: %w", err)
	}

	// Surface validation findings for debugging without rejecting the
	// document; detection works on whatever structure is present.
	validator := validate.NewSpecValidator(doc.Schema(), strfmt.Default)
	if result, _ := validator.Validate(doc); result != nil && result.HasErrors() {
		for _, validationError := range result.Errors {
			p.logger.Debugf("Swagger 2.0 validation finding for %s: %v", apiName, validationError)
		}
	}

	swagger := doc.Spec()
	api := &models.ApiModel{
		Identity: models.Identity{Name: apiName},
	}
	if swagger.Info != nil {
		api.Title = swagger.Info.Title
		api.Description = swagger.Info.Description
		api.Identity.Version = swagger.Info.Version
	}

	if swagger.Paths != nil {
		for pathTemplate, pathItem := range swagger.Paths.Paths {
			for method, op := range swagger2Operations(pathItem) {
				api.Endpoints = append(api.Endpoints, models.Endpoint{
					Method:     method,
					Path:       pathTemplate,
					Parameters: swagger2Parameters(pathItem, op),
				})
			}
		}
	}

	for name, schema := range swagger.Definitions {
		api.Schemas = append(api.Schemas, models.Schema{
			Name:       name,
			Properties: swagger2Properties(schema),
		})
	}

	return api, nil
}

// swagger2Operations collects the operations defined on a path item
func swagger2Operations(pathItem spec.PathItem) map[string]*spec.Operation {
	ops := make(map[string]*spec.Operation)
	if pathItem.Get != nil {
		ops["GET"] = pathItem.Get
	}
	if pathItem.Put != nil {
		ops["PUT"] = pathItem.Put
	}
	if pathItem.Post != nil {
		ops["POST"] = pathItem.Post
	}
	if pathItem.Delete != nil {
		ops["DELETE"] = pathItem.Delete
	}
	if pathItem.Options != nil {
		ops["OPTIONS"] = pathItem.Options
	}
	if pathItem.Head != nil {
		ops["HEAD"] = pathItem.Head
	}
	if pathItem.Patch != nil {
		ops["PATCH"] = pathItem.Patch
	}
	return ops
}

// swagger2Parameters merges path-level and operation-level parameters
func swagger2Parameters(pathItem spec.PathItem, op *spec.Operation) []models.Parameter {
	var params []models.Parameter
	for _, param := range pathItem.Parameters {
		params = append(params, models.Parameter{
			Name:     param.Name,
			In:       param.In,
			Required: param.Required,
		})
	}
	for _, param := range op.Parameters {
		params = append(params, models.Parameter{
			Name:     param.Name,
			In:       param.In,
			Required: param.Required,
		})
	}
	return params
}

// swagger2Properties maps definition properties to type names
func swagger2Properties(schema spec.Schema) map[string]string {
	if len(schema.Properties) == 0 {
		return nil
	}
	props := make(map[string]string, len(schema.Properties))
	for name, prop := range schema.Properties {
		props[name] = swagger2TypeName(prop)
	}
	return props
}

// swagger2TypeName resolves a property schema to a primitive or declared
// type name
func swagger2TypeName(schema spec.Schema) string {
	if ref := schema.Ref.String(); ref != "" {
		return path.Base(ref)
	}
	if len(schema.Type) > 0 {
		return schema.Type[0]
	}
	return "object"
}

// toJSONDocument returns the document as JSON, converting from YAML when
// necessary
func toJSONDocument(raw []byte) (json.RawMessage, error) {
	if json.Valid(raw) {
		return json.RawMessage(raw), nil
	}
	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("document is neither valid JSON nor valid YAML: %w", err)
	}
	converted, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML document to JSON: %w", err)
	}
	return converted, nil
}
