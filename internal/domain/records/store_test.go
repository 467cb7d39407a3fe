package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"dog-breed-predictor/internal/adapters/docstore/memory"
	"dog-breed-predictor/internal/ports/docstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(memory.New(), "test_records")
}

func TestStore_CreateAndGet_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	id, err := s.Create(context.Background(), "u1", docstore.Document{
		"name":     "Rabies",
		"due_date": "2025-06-01",
		"status":   "pending",
		"required": true,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if id == "" {
		t.Fatalf("expected non-empty id")
	}

	doc, err := s.Get(context.Background(), id, "u1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if AsString(doc["name"]) != "Rabies" || AsString(doc["due_date"]) != "2025-06-01" {
		t.Fatalf("round trip lost fields: %#v", doc)
	}
	if AsString(doc[FieldStatus]) != "pending" || !AsBool(doc["required"]) {
		t.Fatalf("round trip lost status/required: %#v", doc)
	}
	if AsString(doc[FieldOwner]) != "u1" {
		t.Fatalf("expected owner u1, got %v", doc[FieldOwner])
	}
	if !AsTime(doc[FieldCreatedAt]).Equal(now) || !AsTime(doc[FieldUpdatedAt]).Equal(now) {
		t.Fatalf("expected created_at == updated_at == now")
	}
}

func TestStore_Get_OtherOwner_IsNotFound(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Create(context.Background(), "owner-a", docstore.Document{"name": "x"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// El registro de otro owner debe ser indistinguible de uno inexistente.
	if _, err := s.Get(context.Background(), id, "owner-b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if _, err := s.Get(context.Background(), "no-such-id", "owner-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for absent id, got %v", err)
	}
}

func TestStore_Update_EmptyPartial_AdvancesUpdatedAtOnly(t *testing.T) {
	s := newTestStore(t)

	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	s.now = func() time.Time { return t0 }
	id, err := s.Create(context.Background(), "u1", docstore.Document{"name": "Rabies", "status": "pending"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	s.now = func() time.Time { return t1 }
	if err := s.Update(context.Background(), id, "u1", docstore.Document{}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	doc, err := s.Get(context.Background(), id, "u1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !AsTime(doc[FieldUpdatedAt]).Equal(t1) {
		t.Fatalf("expected updated_at advanced to %v, got %v", t1, doc[FieldUpdatedAt])
	}
	if !AsTime(doc[FieldCreatedAt]).Equal(t0) {
		t.Fatalf("created_at must not move")
	}
	if AsString(doc["name"]) != "Rabies" || AsString(doc[FieldStatus]) != "pending" {
		t.Fatalf("empty partial must not touch fields: %#v", doc)
	}
}

func TestStore_Update_CannotChangeOwnerOrID(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Create(context.Background(), "u1", docstore.Document{"name": "x"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	err = s.Update(context.Background(), id, "u1", docstore.Document{
		FieldOwner: "attacker",
		"id":       "other-id",
		"name":     "y",
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	doc, err := s.Get(context.Background(), id, "u1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if AsString(doc[FieldOwner]) != "u1" {
		t.Fatalf("owner must be immutable, got %v", doc[FieldOwner])
	}
	if AsString(doc["name"]) != "y" {
		t.Fatalf("legit field should update, got %v", doc["name"])
	}
}

func TestStore_Update_ForeignOwner_IsNotFound(t *testing.T) {
	s := newTestStore(t)

	id, _ := s.Create(context.Background(), "u1", docstore.Document{"name": "x"})

	err := s.Update(context.Background(), id, "u2", docstore.Document{"name": "pwned"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	doc, _ := s.Get(context.Background(), id, "u1")
	if AsString(doc["name"]) != "x" {
		t.Fatalf("foreign update must not apply")
	}
}

func TestStore_Delete_SecondTimeIsNotFound(t *testing.T) {
	s := newTestStore(t)

	id, _ := s.Create(context.Background(), "u1", docstore.Document{"name": "x"})

	if err := s.Delete(context.Background(), id, "u1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete(context.Background(), id, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_List_FiltersAndOrders(t *testing.T) {
	s := newTestStore(t)

	mk := func(owner, status, due string) {
		if _, err := s.Create(context.Background(), owner, docstore.Document{"status": status, "due_date": due}); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	mk("u1", "pending", "2025-03-01")
	mk("u1", "completed", "2025-01-01")
	mk("u1", "pending", "2025-02-01")
	mk("u2", "pending", "2025-01-15")

	docs, err := s.List(context.Background(), "u1", Filter{Status: "pending"}, docstore.Order{Field: "due_date"}, 10)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 pending docs for u1, got %d", len(docs))
	}
	if AsString(docs[0]["due_date"]) != "2025-02-01" || AsString(docs[1]["due_date"]) != "2025-03-01" {
		t.Fatalf("expected due_date ascending, got %v then %v", docs[0]["due_date"], docs[1]["due_date"])
	}

	limited, err := s.List(context.Background(), "u1", Filter{}, docstore.Order{Field: "due_date"}, 1)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit respected, got %d", len(limited))
	}
}

// deadlineStore simula un backend donde toda operación agota su deadline.
type deadlineStore struct{}

func (deadlineStore) Insert(context.Context, string, docstore.Document) (string, error) {
	return "", context.DeadlineExceeded
}

func (deadlineStore) Get(context.Context, string, string) (docstore.Document, error) {
	return nil, context.DeadlineExceeded
}

func (deadlineStore) Query(context.Context, string, []docstore.Filter, docstore.Order, int) ([]docstore.Document, error) {
	return nil, context.DeadlineExceeded
}

func (deadlineStore) Update(context.Context, string, string, []docstore.Filter, docstore.Document) error {
	return context.DeadlineExceeded
}

func (deadlineStore) Delete(context.Context, string, string, []docstore.Filter) error {
	return context.DeadlineExceeded
}

func (deadlineStore) Set(context.Context, string, string, docstore.Document, bool) error {
	return context.DeadlineExceeded
}

func (deadlineStore) Close(context.Context) error { return nil }

func TestStore_BackendTimeout_IsUnavailable(t *testing.T) {
	s := NewStore(deadlineStore{}, "test_records")

	// Un deadline vencido es fallo transitorio, nunca ErrNotFound ni un
	// error crudo de contexto.
	if _, err := s.Create(context.Background(), "u1", docstore.Document{"name": "x"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Create: expected ErrUnavailable, got %v", err)
	}
	if _, err := s.Get(context.Background(), "some-id", "u1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Get: expected ErrUnavailable, got %v", err)
	}
	if _, err := s.List(context.Background(), "u1", Filter{}, docstore.Order{}, 10); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("List: expected ErrUnavailable, got %v", err)
	}
	if err := s.Update(context.Background(), "some-id", "u1", docstore.Document{"name": "y"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Update: expected ErrUnavailable, got %v", err)
	}
	if err := s.Delete(context.Background(), "some-id", "u1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Delete: expected ErrUnavailable, got %v", err)
	}

	if _, err := s.Get(context.Background(), "some-id", "u1"); errors.Is(err, ErrNotFound) {
		t.Fatalf("timeout must not be reported as ErrNotFound")
	}
}
