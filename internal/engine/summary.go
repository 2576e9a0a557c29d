package engine

import (
	"sort"
	"strings"

	"github.com/gregcmartin/doppel/internal/models"
)

// SummaryText builds the deterministic text an API is embedded from:
// title, description and the sorted method/path list. Identical ApiModels
// always produce identical summaries, so a deterministic provider embeds
// them to the same vector.
func SummaryText(api *models.ApiModel) string {
	var lines []string
	if api.Title != "" {
		lines = append(lines, api.Title)
	}
	if api.Description != "" {
		lines = append(lines, api.Description)
	}

	endpoints := make([]string, 0, len(api.Endpoints))
	for _, ep := range api.Endpoints {
		endpoints = append(endpoints, ep.Display())
	}
	sort.Strings(endpoints)

	return strings.Join(append(lines, endpoints...), "\n")
}
