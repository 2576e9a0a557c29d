package parser

import (
	"fmt"

	"github.com/graphql-go/graphql/language/ast"
	gqlparser "github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
	"github.com/gregcmartin/doppel/internal/models"
)

// parseGraphQL extracts an ApiModel from a GraphQL schema document.
// Object type definitions become schemas; root Query and Mutation fields
// become GET /query/<field> and POST /mutation/<field> endpoints so
// GraphQL APIs participate in endpoint overlap rather than scoring zero.
func (p *Parser) parseGraphQL(raw []byte, apiName string) (*models.ApiModel, error) {
	src := source.NewSource(&source.Source{
		Body: raw,
		Name: apiName,
	})
	doc, err := gqlparser.Parse(gqlparser.ParseParams{Source: src})
	if err != nil {
		return nil, fmt.Errorf("failed to parse GraphQL schema: %w", err)
	}

	api := &models.ApiModel{
		Identity: models.Identity{Name: apiName},
	}

	for _, def := range doc.Definitions {
		objDef, ok := def.(*ast.ObjectDefinition)
		if !ok || objDef.Name == nil {
			continue
		}
		switch objDef.Name.Value {
		case "Query":
			for _, field := range objDef.Fields {
				if field.Name == nil {
					continue
				}
				api.Endpoints = append(api.Endpoints, models.Endpoint{
					Method: "GET",
					Path:   "/query/" + field.Name.Value,
				})
			}
		case "Mutation":
			for _, field := range objDef.Fields {
				if field.Name == nil {
					continue
				}
				api.Endpoints = append(api.Endpoints, models.Endpoint{
					Method: "POST",
					Path:   "/mutation/" + field.Name.Value,
				})
			}
		default:
			api.Schemas = append(api.Schemas, models.Schema{
				Name:       objDef.Name.Value,
				Properties: graphqlFieldTypes(objDef.Fields),
			})
		}
	}

	return api, nil
}

// graphqlFieldTypes maps object fields to their named type
func graphqlFieldTypes(fields []*ast.FieldDefinition) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	props := make(map[string]string, len(fields))
	for _, field := range fields {
		if field.Name == nil {
			continue
		}
		props[field.Name.Value] = graphqlTypeName(field.Type)
	}
	return props
}

// graphqlTypeName unwraps non-null and list wrappers to the underlying
// type name
func graphqlTypeName(t ast.Type) string {
	switch typed := t.(type) {
	case *ast.Named:
		if typed.Name != nil {
			return typed.Name.Value
		}
	case *ast.NonNull:
		return graphqlTypeName(typed.Type)
	case *ast.List:
		return "array"
	}
	return "object"
}
