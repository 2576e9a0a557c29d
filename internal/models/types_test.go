package models

import "testing"

func TestPathShape(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"no placeholders", "/users", "/users"},
		{"single placeholder", "/users/{id}", "/users/{}"},
		{"renamed placeholder", "/users/{userId}", "/users/{}"},
		{"mixed segments", "/users/{id}/posts/{postId}", "/users/{}/posts/{}"},
		{"root", "/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PathShape(tt.path); got != tt.want {
				t.Errorf("PathShape(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestEndpointShapeKey(t *testing.T) {
	a := Endpoint{Method: "GET", Path: "/users/{id}"}
	b := Endpoint{Method: "GET", Path: "/users/{userId}"}
	c := Endpoint{Method: "POST", Path: "/users/{id}"}

	if a.ShapeKey() != b.ShapeKey() {
		t.Error("placeholder names must not affect shape keys")
	}
	if a.ShapeKey() == c.ShapeKey() {
		t.Error("method must be part of the shape key")
	}
}

func TestIdentityString(t *testing.T) {
	if got := (Identity{Name: "payments", Version: "1.0"}).String(); got != "payments@1.0" {
		t.Errorf("String() = %q, want payments@1.0", got)
	}
	if got := (Identity{Name: "payments"}).String(); got != "payments" {
		t.Errorf("String() = %q, want bare name without version", got)
	}
}

func TestHasSemantic(t *testing.T) {
	r := SimilarityResult{SemanticScore: SemanticNotComputed}
	if r.HasSemantic() {
		t.Error("sentinel value must report no semantic score")
	}
	r.SemanticScore = 0
	if !r.HasSemantic() {
		t.Error("a computed zero score is still a computed score")
	}
}
