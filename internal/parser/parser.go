package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gregcmartin/doppel/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// SpecFormat represents the API specification format
type SpecFormat string

const (
	FormatSwagger2 SpecFormat = "swagger2"
	FormatOpenAPI3 SpecFormat = "openapi3"
	FormatAsyncAPI SpecFormat = "asyncapi"
	FormatGraphQL  SpecFormat = "graphql"

	// FormatUnknown marks structured documents without a recognizable
	// version marker; these go through the best-effort generic extractor.
	FormatUnknown SpecFormat = "unknown"
)

// knownMethods is the set of HTTP verbs recognized on endpoints.
// Operations with any other method are discarded during normalization.
var knownMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"HEAD":    true,
	"OPTIONS": true,
	"TRACE":   true,
}

// Parser turns raw API specification documents into ApiModels
type Parser struct {
	logger *logrus.Logger
}

// New creates a new Parser instance
func New(logger *logrus.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseFile reads and parses a specification file. The API name defaults
// to the file name without its extension.
func (p *Parser) ParseFile(path string) (*models.ApiModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}
	return p.Parse(data, NameFromPath(path))
}

// Parse interprets a raw specification document as an ApiModel. It fails
// with *models.MalformedSpecError only when the input is not structured
// text at all; incomplete documents yield whatever endpoints and schemas
// are recoverable.
func (p *Parser) Parse(raw []byte, apiName string) (*models.ApiModel, error) {
	format, err := p.DetectFormat(raw)
	if err != nil {
		return nil, &models.MalformedSpecError{
			ApiName: apiName,
			Reason:  "unrecognized specification format",
			Err:     err,
		}
	}
	p.logger.Debugf("Detected specification format for %s: %s", apiName, format)

	var api *models.ApiModel
	switch format {
	case FormatOpenAPI3:
		api, err = p.parseOpenAPI3(raw, apiName)
	case FormatSwagger2:
		api, err = p.parseSwagger2(raw, apiName)
	case FormatAsyncAPI:
		api, err = p.parseAsyncAPI(raw, apiName)
	case FormatGraphQL:
		api, err = p.parseGraphQL(raw, apiName)
	default:
		api, err = p.parseGeneric(raw, apiName)
	}

	// Dedicated loaders reject documents the generic walk can still mine,
	// so an incomplete OpenAPI document degrades to best-effort extraction
	// instead of failing the parse.
	if err != nil && (format == FormatOpenAPI3 || format == FormatSwagger2) {
		p.logger.WithError(err).Debugf("Loader failed for %s, retrying with generic extraction", apiName)
		api, err = p.parseGeneric(raw, apiName)
	}
	if err != nil {
		return nil, &models.MalformedSpecError{
			ApiName: apiName,
			Reason:  "specification could not be interpreted",
			Err:     err,
		}
	}

	api.RawContent = string(raw)
	normalizeModel(api)
	return api, nil
}

// DetectFormat determines the API specification format from raw content
func (p *Parser) DetectFormat(raw []byte) (SpecFormat, error) {
	content := strings.TrimSpace(string(raw))
	if content == "" {
		return "", fmt.Errorf("empty document")
	}

	// Check for GraphQL schema markers before structured parsing
	if strings.Contains(content, "type Query") || strings.Contains(content, "schema {") {
		return FormatGraphQL, nil
	}

	var probe struct {
		Swagger  string `json:"swagger" yaml:"swagger"`
		OpenAPI  string `json:"openapi" yaml:"openapi"`
		AsyncAPI string `json:"asyncapi" yaml:"asyncapi"`
	}

	// Try JSON first, then YAML
	if err := json.Unmarshal(raw, &probe); err != nil {
		if err := yaml.Unmarshal(raw, &probe); err != nil {
			return "", fmt.Errorf("document is neither valid JSON nor valid YAML")
		}
	}

	switch {
	case probe.Swagger == "2.0":
		return FormatSwagger2, nil
	case strings.HasPrefix(probe.OpenAPI, "3."):
		return FormatOpenAPI3, nil
	case probe.AsyncAPI != "":
		return FormatAsyncAPI, nil
	}

	return FormatUnknown, nil
}

// NameFromPath derives an API name from a specification file path
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// normalizeModel enforces the ApiModel invariants: methods uppercased and
// restricted to known verbs, (method, path-shape) pairs unique, schema
// names unique, deterministic element order.
func normalizeModel(api *models.ApiModel) {
	seen := make(map[string]bool, len(api.Endpoints))
	endpoints := api.Endpoints[:0]
	for _, ep := range api.Endpoints {
		ep.Method = strings.ToUpper(strings.TrimSpace(ep.Method))
		if !knownMethods[ep.Method] {
			continue
		}
		key := ep.ShapeKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		endpoints = append(endpoints, ep)
	}
	api.Endpoints = endpoints
	sort.Slice(api.Endpoints, func(i, j int) bool {
		if api.Endpoints[i].Path != api.Endpoints[j].Path {
			return api.Endpoints[i].Path < api.Endpoints[j].Path
		}
		return api.Endpoints[i].Method < api.Endpoints[j].Method
	})

	seenSchemas := make(map[string]bool, len(api.Schemas))
	schemas := api.Schemas[:0]
	for _, s := range api.Schemas {
		if s.Name == "" || seenSchemas[strings.ToLower(s.Name)] {
			continue
		}
		seenSchemas[strings.ToLower(s.Name)] = true
		schemas = append(schemas, s)
	}
	api.Schemas = schemas
	sort.Slice(api.Schemas, func(i, j int) bool {
		return api.Schemas[i].Name < api.Schemas[j].Name
	})
}
