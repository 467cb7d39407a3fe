package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"dog-breed-predictor/internal/ports/docstore"

	"github.com/google/uuid"
)

// Store es el adapter in-memory (dev y tests).
// Guarda copias de los documentos para que el caller no pueda mutar el estado interno.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]docstore.Document
}

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]docstore.Document),
	}
}

func (s *Store) coll(name string) map[string]docstore.Document {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]docstore.Document)
		s.collections[name] = c
	}
	return c
}

func (s *Store) Insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.coll(collection)[id] = cloneDoc(doc)
	return id, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.coll(collection)[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}

	out := cloneDoc(doc)
	out["id"] = id
	return out, nil
}

func (s *Store) Query(ctx context.Context, collection string, filters []docstore.Filter, order docstore.Order, limit int) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]docstore.Document, 0)
	for id, doc := range s.coll(collection) {
		if !matches(doc, filters) {
			continue
		}
		d := cloneDoc(doc)
		d["id"] = id
		out = append(out, d)
	}

	if strings.TrimSpace(order.Field) != "" {
		sort.SliceStable(out, func(i, j int) bool {
			less := compareValues(out[i][order.Field], out[j][order.Field]) < 0
			if order.Desc {
				return !less && compareValues(out[i][order.Field], out[j][order.Field]) != 0
			}
			return less
		})
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, match []docstore.Filter, partial docstore.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.coll(collection)[id]
	if !ok || !matches(doc, match) {
		return docstore.ErrNotFound
	}

	for k, v := range partial {
		doc[k] = cloneValue(v)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string, match []docstore.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.coll(collection)[id]
	if !ok || !matches(doc, match) {
		return docstore.ErrNotFound
	}

	delete(s.coll(collection), id)
	return nil
}

func (s *Store) Set(ctx context.Context, collection, id string, doc docstore.Document, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.coll(collection)[id]
	if !ok || !merge {
		s.coll(collection)[id] = cloneDoc(doc)
		return nil
	}

	for k, v := range doc {
		existing[k] = cloneValue(v)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}

func matches(doc docstore.Document, filters []docstore.Filter) bool {
	for _, f := range filters {
		if compareValues(doc[f.Field], f.Value) != 0 {
			return false
		}
	}
	return true
}

// cloneDoc copia en profundidad: los maps y slices anidados (metadata,
// top_predictions, preferences) no pueden quedar compartidos con el caller.
func cloneDoc(doc docstore.Document) docstore.Document {
	out := make(docstore.Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case docstore.Document:
		return cloneDoc(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// compareValues ordena valores heterogéneos: nil primero, luego por tipo.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			default:
				return 0
			}
		}
	case bool:
		if bv, ok := b.(bool); ok {
			if av == bv {
				return 0
			}
			if !av {
				return -1
			}
			return 1
		}
	default:
		an, aok := asFloat(a)
		bn, bok := asFloat(b)
		if aok && bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}

	// Tipos incomparables: tratarlos como distintos pero con orden estable.
	return strings.Compare(typeName(a), typeName(b))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case time.Time:
		return "time"
	default:
		return "other"
	}
}
