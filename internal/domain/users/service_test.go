package users

import (
	"context"
	"testing"
	"time"

	"dog-breed-predictor/internal/adapters/docstore/memory"
	"dog-breed-predictor/internal/ports/auth"
	"dog-breed-predictor/internal/ports/docstore"
)

func newTestService(now func() time.Time) *Service {
	svc := NewService(memory.New())
	if now != nil {
		svc.now = now
	}
	return svc
}

func TestEnsureExists_CreatesThenTouches(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	now := t0
	svc := newTestService(func() time.Time { return now })

	claims := auth.Claims{UserID: "u1", Email: "ana@example.com", Name: "Ana"}
	if err := svc.EnsureExists(context.Background(), claims); err != nil {
		t.Fatalf("EnsureExists error: %v", err)
	}

	p, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if p.Name != "Ana" || p.Email != "ana@example.com" {
		t.Fatalf("profile = %+v", p)
	}
	if p.TotalPredictions != 0 {
		t.Fatalf("total_predictions = %d, want 0", p.TotalPredictions)
	}
	if !p.CreatedAt.Equal(t0) || !p.LastActive.Equal(t0) {
		t.Fatalf("timestamps = %v / %v, want %v", p.CreatedAt, p.LastActive, t0)
	}

	// Segunda llamada: solo avanza last_active.
	now = t0.Add(time.Hour)
	if err := svc.EnsureExists(context.Background(), claims); err != nil {
		t.Fatalf("EnsureExists error: %v", err)
	}
	p, err = svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !p.CreatedAt.Equal(t0) {
		t.Fatal("created_at must not move on subsequent calls")
	}
	if !p.LastActive.Equal(now) {
		t.Fatalf("last_active = %v, want %v", p.LastActive, now)
	}
}

func TestEnsureExists_NameFallsBackToEmail(t *testing.T) {
	svc := newTestService(nil)

	claims := auth.Claims{UserID: "u2", Email: "bruno@example.com"}
	if err := svc.EnsureExists(context.Background(), claims); err != nil {
		t.Fatalf("EnsureExists error: %v", err)
	}

	p, err := svc.Get(context.Background(), "u2")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if p.Name != "bruno" {
		t.Fatalf("name = %q, want bruno", p.Name)
	}
}

func TestTouchPrediction_IncrementsCounter(t *testing.T) {
	svc := newTestService(nil)

	claims := auth.Claims{UserID: "u1", Email: "ana@example.com"}
	if err := svc.EnsureExists(context.Background(), claims); err != nil {
		t.Fatalf("EnsureExists error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.TouchPrediction(context.Background(), "u1"); err != nil {
			t.Fatalf("TouchPrediction error: %v", err)
		}
	}

	p, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if p.TotalPredictions != 3 {
		t.Fatalf("total_predictions = %d, want 3", p.TotalPredictions)
	}
}

func TestUpdate_ProtectsIdentityFields(t *testing.T) {
	svc := newTestService(nil)

	claims := auth.Claims{UserID: "u1", Email: "ana@example.com", Name: "Ana"}
	if err := svc.EnsureExists(context.Background(), claims); err != nil {
		t.Fatalf("EnsureExists error: %v", err)
	}
	before, _ := svc.Get(context.Background(), "u1")

	err := svc.Update(context.Background(), "u1", docstore.Document{
		"user_id":    "intruso",
		"created_at": time.Now().Add(time.Hour),
		"name":       "Ana María",
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	p, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if p.UserID != "u1" {
		t.Fatalf("user_id = %q, must stay u1", p.UserID)
	}
	if !p.CreatedAt.Equal(before.CreatedAt) {
		t.Fatal("created_at must not change")
	}
	if p.Name != "Ana María" {
		t.Fatalf("name = %q, want Ana María", p.Name)
	}
}
