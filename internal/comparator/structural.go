// Package comparator computes deterministic structural similarity between
// two ApiModels. All functions are pure: no side effects, no shared state,
// safe to call concurrently.
package comparator

import (
	"sort"
	"strings"
	"unicode"

	"github.com/gregcmartin/doppel/internal/models"
)

// Signal weights for the structural score. Fixed constants, not
// configurable per call.
const (
	endpointWeight = 0.50
	schemaWeight   = 0.35
	textWeight     = 0.15
)

// CompareStructural computes a similarity score in [0,1] between two APIs
// from their declared endpoints, schemas and descriptive text, along with
// the overlapping elements found. The score is symmetric, and weights are
// renormalized over the signals actually present on either side so that
// an API without schemas still scores 1.0 against itself.
func CompareStructural(a, b *models.ApiModel) (float64, []string, []string) {
	endpointScore, endpointUnion, matchedEndpoints := compareEndpoints(a.Endpoints, b.Endpoints)
	schemaScore, schemaUnion, matchedSchemas := compareSchemas(a.Schemas, b.Schemas)
	textScore, textUnion := tokenSetJaccard(a.Title+" "+a.Description, b.Title+" "+b.Description)

	// An API with nothing declared matches nothing.
	if len(a.Endpoints) == 0 && len(a.Schemas) == 0 {
		return 0, nil, nil
	}
	if len(b.Endpoints) == 0 && len(b.Schemas) == 0 {
		return 0, nil, nil
	}

	var score, totalWeight float64
	if endpointUnion > 0 {
		score += endpointWeight * endpointScore
		totalWeight += endpointWeight
	}
	if schemaUnion > 0 {
		score += schemaWeight * schemaScore
		totalWeight += schemaWeight
	}
	if textUnion > 0 {
		score += textWeight * textScore
		totalWeight += textWeight
	}
	if totalWeight == 0 {
		return 0, nil, nil
	}

	return clamp01(score / totalWeight), matchedEndpoints, matchedSchemas
}

// compareEndpoints computes the Jaccard index over normalized
// (method, path-shape) pairs. Placeholder variable names are ignored;
// literal segments and segment count must match exactly.
func compareEndpoints(a, b []models.Endpoint) (float64, int, []string) {
	shapesA := make(map[string]models.Endpoint, len(a))
	for _, ep := range a {
		shapesA[ep.ShapeKey()] = ep
	}
	shapesB := make(map[string]bool, len(b))
	for _, ep := range b {
		shapesB[ep.ShapeKey()] = true
	}

	var matched []string
	intersection := 0
	for shape, ep := range shapesA {
		if shapesB[shape] {
			intersection++
			matched = append(matched, ep.Display())
		}
	}
	union := len(shapesA) + len(shapesB) - intersection
	if union == 0 {
		return 0, 0, nil
	}
	sort.Strings(matched)
	return float64(intersection) / float64(union), union, matched
}

// compareSchemas computes the Jaccard index over case-insensitive schema
// names, with each matched pair weighted by the overlap of its property
// name sets. Unmatched schemas contribute only to the union.
func compareSchemas(a, b []models.Schema) (float64, int, []string) {
	namesA := make(map[string]models.Schema, len(a))
	for _, s := range a {
		namesA[strings.ToLower(s.Name)] = s
	}
	namesB := make(map[string]models.Schema, len(b))
	for _, s := range b {
		namesB[strings.ToLower(s.Name)] = s
	}

	var matched []string
	var overlapSum float64
	intersection := 0
	for name, schemaA := range namesA {
		schemaB, ok := namesB[name]
		if !ok {
			continue
		}
		intersection++
		overlapSum += propertyOverlap(schemaA.Properties, schemaB.Properties)
		matched = append(matched, schemaA.Name)
	}
	union := len(namesA) + len(namesB) - intersection
	if union == 0 {
		return 0, 0, nil
	}
	sort.Strings(matched)
	return overlapSum / float64(union), union, matched
}

// propertyOverlap is the Jaccard index over property name sets. Two
// schemas that both declare no properties are treated as fully
// overlapping since their declared shapes are identical.
func propertyOverlap(a, b map[string]string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	intersection := 0
	for name := range a {
		if _, ok := b[name]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 1
	}
	return float64(intersection) / float64(union)
}

// tokenSetJaccard computes the Jaccard index over lower-cased word tokens
// of two text fragments, returning the union size so callers can tell an
// absent signal from a zero-overlap one
func tokenSetJaccard(a, b string) (float64, int) {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)

	intersection := 0
	for token := range tokensA {
		if tokensB[token] {
			intersection++
		}
	}
	union := len(tokensA) + len(tokensB) - intersection
	if union == 0 {
		return 0, 0
	}
	return float64(intersection) / float64(union), union
}

// tokenSet splits text into a set of lower-cased alphanumeric tokens
func tokenSet(text string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(fields))
	for _, field := range fields {
		set[field] = true
	}
	return set
}

// clamp01 bounds a score to [0,1] against floating point drift
func clamp01(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
