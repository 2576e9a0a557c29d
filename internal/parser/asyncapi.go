package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gregcmartin/doppel/internal/models"
	"gopkg.in/yaml.v3"
)

// asyncAPIDocument captures the parts of an AsyncAPI 2.x specification
// relevant to duplicate detection
type asyncAPIDocument struct {
	AsyncAPI string `json:"asyncapi" yaml:"asyncapi"`
	Info     struct {
		Title       string `json:"title" yaml:"title"`
		Version     string `json:"version" yaml:"version"`
		Description string `json:"description,omitempty" yaml:"description,omitempty"`
	} `json:"info" yaml:"info"`
	Channels   map[string]asyncAPIChannel `json:"channels" yaml:"channels"`
	Components *struct {
		Messages map[string]asyncAPIMessage `json:"messages,omitempty" yaml:"messages,omitempty"`
	} `json:"components,omitempty" yaml:"components,omitempty"`
}

type asyncAPIChannel struct {
	Subscribe *asyncAPIOperation `json:"subscribe,omitempty" yaml:"subscribe,omitempty"`
	Publish   *asyncAPIOperation `json:"publish,omitempty" yaml:"publish,omitempty"`
}

type asyncAPIOperation struct {
	Message *asyncAPIMessage `json:"message,omitempty" yaml:"message,omitempty"`
}

type asyncAPIMessage struct {
	Name    string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// parseAsyncAPI extracts an ApiModel from an AsyncAPI 2.x document.
// Channel operations map onto endpoints (subscribe as GET, publish as
// POST over the channel path) so event APIs participate in endpoint
// overlap scoring; component messages become schemas.
func (p *Parser) parseAsyncAPI(raw []byte, apiName string) (*models.ApiModel, error) {
	var doc asyncAPIDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse AsyncAPI spec: %w", err)
		}
	}

	api := &models.ApiModel{
		Identity:    models.Identity{Name: apiName, Version: doc.Info.Version},
		Title:       doc.Info.Title,
		Description: doc.Info.Description,
	}

	for channel, item := range doc.Channels {
		channelPath := channel
		if !strings.HasPrefix(channelPath, "/") {
			channelPath = "/" + channelPath
		}
		if item.Subscribe != nil {
			api.Endpoints = append(api.Endpoints, models.Endpoint{Method: "GET", Path: channelPath})
		}
		if item.Publish != nil {
			api.Endpoints = append(api.Endpoints, models.Endpoint{Method: "POST", Path: channelPath})
		}
	}

	if doc.Components != nil {
		for name, message := range doc.Components.Messages {
			api.Schemas = append(api.Schemas, models.Schema{
				Name:       name,
				Properties: payloadProperties(message.Payload),
			})
		}
	}

	return api, nil
}

// payloadProperties extracts property type names from a message payload
// schema object
func payloadProperties(payload map[string]interface{}) map[string]string {
	raw, ok := payload["properties"].(map[string]interface{})
	if !ok || len(raw) == 0 {
		return nil
	}
	props := make(map[string]string, len(raw))
	for name, value := range raw {
		typeName := "object"
		if prop, ok := value.(map[string]interface{}); ok {
			if t, ok := prop["type"].(string); ok && t != "" {
				typeName = t
			}
		}
		props[name] = typeName
	}
	return props
}
