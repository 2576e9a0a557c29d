package models

import (
	"strings"
	"time"
)

// Parameter locations within an HTTP operation
const (
	InPath   = "path"
	InQuery  = "query"
	InHeader = "header"
	InBody   = "body"
)

// SemanticNotComputed marks a SimilarityResult whose semantic score was
// never produced (semantic mode disabled or unavailable for that pair).
const SemanticNotComputed = -1

// Identity is the stable external identifier of an API (name/version pair)
type Identity struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// String returns the canonical "name@version" form used for index keys
// and deterministic ordering
func (id Identity) String() string {
	if id.Version == "" {
		return id.Name
	}
	return id.Name + "@" + id.Version
}

// Parameter is one input accepted by an endpoint
type Parameter struct {
	Name     string `json:"name"`
	In       string `json:"in"`
	Required bool   `json:"required,omitempty"`
}

// Endpoint is one HTTP operation exposed by an API
type Endpoint struct {
	Method     string      `json:"method"`
	Path       string      `json:"path"`
	Parameters []Parameter `json:"parameters,omitempty"`
}

// ShapeKey returns the normalized "METHOD path-shape" key under which two
// endpoints are considered equal
func (e Endpoint) ShapeKey() string {
	return e.Method + " " + PathShape(e.Path)
}

// Display returns the human-readable form of the endpoint, with original
// placeholder variable names preserved
func (e Endpoint) Display() string {
	return e.Method + " " + e.Path
}

// PathShape normalizes a path template so that placeholder variable names
// do not affect equality: /users/{id} and /users/{userId} share one shape.
// Literal segments and segment count are preserved exactly.
func PathShape(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			segments[i] = "{}"
		}
	}
	return strings.Join(segments, "/")
}

// Schema is one named data type defined by an API. Properties map
// property names to primitive or declared type names.
type Schema struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
}

// ApiModel is the structured form of one API specification. Instances are
// immutable after construction; the comparator and engine only read them.
type ApiModel struct {
	Identity    Identity   `json:"identity"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Endpoints   []Endpoint `json:"endpoints,omitempty"`
	Schemas     []Schema   `json:"schemas,omitempty"`

	// RawContent retains the original specification text for audit and
	// debugging. It is never consulted during comparison.
	RawContent string `json:"-"`
}

// SimilarityResult is the outcome of comparing a candidate API against one
// existing API
type SimilarityResult struct {
	CandidateApi     Identity `json:"candidate_api"`
	ComparedApi      Identity `json:"compared_api"`
	StructuralScore  float64  `json:"structural_score"`
	SemanticScore    float64  `json:"semantic_score"`
	CombinedScore    float64  `json:"combined_score"`
	MatchedEndpoints []string `json:"matched_endpoints,omitempty"`
	MatchedSchemas   []string `json:"matched_schemas,omitempty"`
}

// HasSemantic reports whether a semantic score was computed for this pair
func (r SimilarityResult) HasSemantic() bool {
	return r.SemanticScore != SemanticNotComputed
}

// DuplicateReport is the output artifact of one detection run. Candidates
// are ordered descending by combined score, ties broken by compared
// identity ascending, and filtered to combined score >= Threshold.
type DuplicateReport struct {
	TriggeringApi Identity           `json:"triggering_api"`
	Candidates    []SimilarityResult `json:"candidates"`
	TotalCompared int                `json:"total_compared"`
	Threshold     float64            `json:"threshold"`
	Mode          string             `json:"mode"`
	Warnings      []string           `json:"warnings,omitempty"`
	Timestamp     time.Time          `json:"timestamp"`
}

// Detection modes recorded on a report
const (
	ModeStructural = "structural"
	ModeCombined   = "combined"
)
