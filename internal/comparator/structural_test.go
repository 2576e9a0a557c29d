package comparator

import (
	"testing"

	"github.com/gregcmartin/doppel/internal/models"
)

func paymentsV2() *models.ApiModel {
	return &models.ApiModel{
		Identity: models.Identity{Name: "PaymentsV2", Version: "2.0"},
		Title:    "Payments API",
		Endpoints: []models.Endpoint{
			{Method: "GET", Path: "/payments"},
			{Method: "POST", Path: "/payments"},
		},
		Schemas: []models.Schema{
			{Name: "Payment", Properties: map[string]string{"amount": "number", "currency": "string"}},
		},
	}
}

func payments() *models.ApiModel {
	return &models.ApiModel{
		Identity: models.Identity{Name: "Payments", Version: "1.0"},
		Title:    "Payments API",
		Endpoints: []models.Endpoint{
			{Method: "GET", Path: "/payments/{id}"},
			{Method: "POST", Path: "/payments"},
		},
		Schemas: []models.Schema{
			{Name: "Payment", Properties: map[string]string{"amount": "number", "currency": "string"}},
		},
	}
}

func ordersAPI() *models.ApiModel {
	return &models.ApiModel{
		Identity: models.Identity{Name: "Orders", Version: "1.0"},
		Title:    "Order management",
		Endpoints: []models.Endpoint{
			{Method: "GET", Path: "/orders"},
			{Method: "DELETE", Path: "/orders/{orderId}"},
		},
		Schemas: []models.Schema{
			{Name: "Order", Properties: map[string]string{"total": "number"}},
		},
	}
}

func TestSelfSimilarity(t *testing.T) {
	tests := []struct {
		name string
		api  *models.ApiModel
	}{
		{"full model", paymentsV2()},
		{"endpoints only", &models.ApiModel{
			Endpoints: []models.Endpoint{{Method: "GET", Path: "/a"}},
		}},
		{"schemas only", &models.ApiModel{
			Schemas: []models.Schema{{Name: "A"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _, _ := CompareStructural(tt.api, tt.api)
			if score != 1.0 {
				t.Errorf("self-similarity = %v, want 1.0", score)
			}
		})
	}
}

func TestSymmetry(t *testing.T) {
	pairs := [][2]*models.ApiModel{
		{paymentsV2(), payments()},
		{paymentsV2(), ordersAPI()},
		{payments(), ordersAPI()},
	}

	for _, pair := range pairs {
		ab, _, _ := CompareStructural(pair[0], pair[1])
		ba, _, _ := CompareStructural(pair[1], pair[0])
		if ab != ba {
			t.Errorf("score(%s,%s) = %v but score(%s,%s) = %v",
				pair[0].Identity, pair[1].Identity, ab,
				pair[1].Identity, pair[0].Identity, ba)
		}
	}
}

func TestScoreBounds(t *testing.T) {
	// Duplicate endpoint entries must not push the score past 1.
	a := &models.ApiModel{
		Title: "Bounds",
		Endpoints: []models.Endpoint{
			{Method: "GET", Path: "/x/{id}"},
			{Method: "GET", Path: "/x/{other}"},
			{Method: "GET", Path: "/x/{id}"},
		},
		Schemas: []models.Schema{{Name: "X"}},
	}
	b := &models.ApiModel{
		Title: "Bounds",
		Endpoints: []models.Endpoint{
			{Method: "GET", Path: "/x/{name}"},
		},
		Schemas: []models.Schema{{Name: "x"}},
	}

	score, _, _ := CompareStructural(a, b)
	if score < 0 || score > 1 {
		t.Errorf("score = %v, want within [0,1]", score)
	}
	if score != 1.0 {
		t.Errorf("score = %v, want 1.0 for models equal after normalization", score)
	}
}

func TestEmptyModel(t *testing.T) {
	empty := &models.ApiModel{Identity: models.Identity{Name: "Empty"}, Title: "Payments API"}

	score, matchedEndpoints, matchedSchemas := CompareStructural(empty, paymentsV2())
	if score != 0 {
		t.Errorf("empty vs non-empty score = %v, want 0", score)
	}
	if len(matchedEndpoints) != 0 || len(matchedSchemas) != 0 {
		t.Error("empty model must not produce matches")
	}
}

func TestDisjointModels(t *testing.T) {
	score, matchedEndpoints, matchedSchemas := CompareStructural(paymentsV2(), ordersAPI())
	if len(matchedEndpoints) != 0 || len(matchedSchemas) != 0 {
		t.Errorf("disjoint APIs produced matches: %v %v", matchedEndpoints, matchedSchemas)
	}
	if score >= 0.5 {
		t.Errorf("disjoint APIs scored %v", score)
	}
}

func TestPaymentsScenario(t *testing.T) {
	score, matchedEndpoints, matchedSchemas := CompareStructural(paymentsV2(), payments())

	if score <= 0 {
		t.Fatalf("score = %v, want > 0", score)
	}
	if score < 0.3 {
		t.Errorf("score = %v, want >= 0.3 so the entry clears a 0.3 threshold", score)
	}
	if len(matchedEndpoints) != 1 || matchedEndpoints[0] != "POST /payments" {
		t.Errorf("matched endpoints = %v, want only POST /payments", matchedEndpoints)
	}
	if len(matchedSchemas) != 1 || matchedSchemas[0] != "Payment" {
		t.Errorf("matched schemas = %v, want Payment", matchedSchemas)
	}
}

func TestEndpointsMatchSchemasDiffer(t *testing.T) {
	// Identical endpoint sets with disjoint schema names: the score must
	// land strictly between the all-match and endpoint-only extremes.
	endpoints := []models.Endpoint{
		{Method: "GET", Path: "/items"},
		{Method: "POST", Path: "/items"},
	}
	a := &models.ApiModel{
		Endpoints: endpoints,
		Schemas:   []models.Schema{{Name: "Item"}},
	}
	b := &models.ApiModel{
		Endpoints: endpoints,
		Schemas:   []models.Schema{{Name: "Product"}},
	}

	score, matchedEndpoints, matchedSchemas := CompareStructural(a, b)
	if len(matchedEndpoints) != 2 {
		t.Fatalf("matched endpoints = %v, want both", matchedEndpoints)
	}
	if len(matchedSchemas) != 0 {
		t.Fatalf("matched schemas = %v, want none", matchedSchemas)
	}
	if score <= 0.35 || score >= 1.0 {
		t.Errorf("score = %v, want strictly between the schema-only and full-match extremes", score)
	}
}

func TestPlaceholderNamesIgnored(t *testing.T) {
	a := &models.ApiModel{Endpoints: []models.Endpoint{{Method: "GET", Path: "/users/{id}"}}}
	b := &models.ApiModel{Endpoints: []models.Endpoint{{Method: "GET", Path: "/users/{userId}"}}}
	c := &models.ApiModel{Endpoints: []models.Endpoint{{Method: "GET", Path: "/users/{id}/posts"}}}

	if score, _, _ := CompareStructural(a, b); score != 1.0 {
		t.Errorf("placeholder rename scored %v, want 1.0", score)
	}
	if score, _, _ := CompareStructural(a, c); score != 0 {
		t.Errorf("different segment count scored %v, want 0", score)
	}
}

func TestSchemaPropertyOverlapRefinement(t *testing.T) {
	a := &models.ApiModel{
		Schemas: []models.Schema{
			{Name: "User", Properties: map[string]string{"id": "string", "name": "string", "email": "string"}},
		},
	}
	full := &models.ApiModel{
		Schemas: []models.Schema{
			{Name: "User", Properties: map[string]string{"id": "string", "name": "string", "email": "string"}},
		},
	}
	partial := &models.ApiModel{
		Schemas: []models.Schema{
			{Name: "User", Properties: map[string]string{"id": "string", "age": "number"}},
		},
	}

	fullScore, _, _ := CompareStructural(a, full)
	partialScore, _, _ := CompareStructural(a, partial)
	if partialScore >= fullScore {
		t.Errorf("partial property overlap (%v) must score below full overlap (%v)", partialScore, fullScore)
	}
	if partialScore <= 0 {
		t.Errorf("matched schema with partial properties scored %v, want > 0", partialScore)
	}
}
