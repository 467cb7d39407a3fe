package memory

import (
	"context"
	"testing"

	"dog-breed-predictor/internal/ports/docstore"
)

func TestStore_ReturnedDocsAreIsolated(t *testing.T) {
	s := New()

	id, err := s.Insert(context.Background(), "feedback", docstore.Document{
		"message":  "great app",
		"metadata": map[string]any{"source": "web"},
		"tags":     []any{"a", "b"},
	})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	// Mutar lo que devuelve Get no puede tocar el estado interno.
	got, err := s.Get(context.Background(), "feedback", id)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	got["message"] = "tampered"
	got["metadata"].(map[string]any)["source"] = "tampered"
	got["tags"].([]any)[0] = "tampered"

	fresh, err := s.Get(context.Background(), "feedback", id)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if fresh["message"] != "great app" {
		t.Fatalf("stored top-level field mutated: %v", fresh["message"])
	}
	if fresh["metadata"].(map[string]any)["source"] != "web" {
		t.Fatalf("stored nested map mutated: %#v", fresh["metadata"])
	}
	if fresh["tags"].([]any)[0] != "a" {
		t.Fatalf("stored nested slice mutated: %#v", fresh["tags"])
	}
}

func TestStore_InsertedDocIsIsolated(t *testing.T) {
	s := New()

	meta := map[string]any{"source": "web"}
	doc := docstore.Document{"message": "hola", "metadata": meta}

	id, err := s.Insert(context.Background(), "feedback", doc)
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	// Mutar el documento original después del Insert tampoco puede filtrar.
	doc["message"] = "tampered"
	meta["source"] = "tampered"

	fresh, err := s.Get(context.Background(), "feedback", id)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if fresh["message"] != "hola" {
		t.Fatalf("stored field shares memory with caller: %v", fresh["message"])
	}
	if fresh["metadata"].(map[string]any)["source"] != "web" {
		t.Fatalf("stored nested map shares memory with caller: %#v", fresh["metadata"])
	}
}
