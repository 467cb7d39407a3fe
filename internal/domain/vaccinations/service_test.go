package vaccinations

import (
	"context"
	"errors"
	"testing"
	"time"

	"dog-breed-predictor/internal/adapters/docstore/memory"
	"dog-breed-predictor/internal/domain/records"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(records.NewStore(memory.New(), Collection))
}

func TestService_Create_DefaultsAndValidation(t *testing.T) {
	svc := newTestService(t)

	v, err := svc.Create(context.Background(), "u1", CreateInput{
		Name:     "Rabies",
		DueDate:  "2025-06-01",
		Required: true,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if v.ID == "" {
		t.Fatalf("expected non-empty id")
	}
	if v.Status != StatusPending {
		t.Fatalf("expected default status pending, got %s", v.Status)
	}
	if !v.Required || v.Name != "Rabies" || v.DueDate != "2025-06-01" {
		t.Fatalf("round trip lost fields: %#v", v)
	}

	cases := []CreateInput{
		{Name: "", DueDate: "2025-06-01"},
		{Name: "Rabies", DueDate: "not-a-date"},
		{Name: "Rabies", DueDate: "2025-06-01", Status: "bogus"},
		{Name: "Rabies", DueDate: "2025-06-01", LastDate: strPtr("01/06/2025")},
	}
	for i, in := range cases {
		if _, err := svc.Create(context.Background(), "u1", in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestService_OwnershipScenario(t *testing.T) {
	// Escenario completo: crear como u1, leer como u1 y u2, actualizar status.
	svc := newTestService(t)

	t0 := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	now := t0
	svc.store = records.NewStore(memory.New(), Collection).WithClock(func() time.Time { return now })

	v, err := svc.Create(context.Background(), "u1", CreateInput{
		Name: "Rabies", DueDate: "2025-06-01", Status: StatusPending, Required: true,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := svc.Get(context.Background(), v.ID, "u1")
	if err != nil || got.Status != StatusPending {
		t.Fatalf("owner get: err=%v status=%s", err, got.Status)
	}

	if _, err := svc.Get(context.Background(), v.ID, "u2"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for u2, got %v", err)
	}

	now = t1
	updated, err := svc.Update(context.Background(), v.ID, "u1", UpdateInput{
		Status:   strPtr("completed"),
		LastDate: strPtr("2025-05-30"),
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}
	if updated.LastDate == nil || *updated.LastDate != "2025-05-30" {
		t.Fatalf("expected last_date 2025-05-30, got %v", updated.LastDate)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected updated_at > created_at (%v vs %v)", updated.UpdatedAt, updated.CreatedAt)
	}
}

func TestService_List_OrderedByDueDate(t *testing.T) {
	svc := newTestService(t)

	for _, due := range []string{"2025-09-01", "2025-07-01", "2025-08-01"} {
		if _, err := svc.Create(context.Background(), "u1", CreateInput{Name: "v", DueDate: due}); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	items, err := svc.List(context.Background(), "u1", "", 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].DueDate > items[i].DueDate {
			t.Fatalf("expected due_date ascending: %v", items)
		}
	}
}

func TestComputeStats_CompletionRate(t *testing.T) {
	st := ComputeStats([]Vaccination{
		{Status: StatusCompleted, Required: true},
		{Status: StatusCompleted},
		{Status: StatusPending, Required: true},
		{Status: StatusOverdue},
	})

	if st.Total != 4 || st.Completed != 2 || st.Pending != 1 || st.Overdue != 1 {
		t.Fatalf("unexpected counts: %+v", st)
	}
	if st.Required != 2 || st.Optional != 2 {
		t.Fatalf("unexpected required/optional: %+v", st)
	}
	if st.CompletionRate != 50.0 {
		t.Fatalf("expected completion_rate 50.0, got %v", st.CompletionRate)
	}
}

func TestComputeStats_EmptyIsZeroNotDivisionFault(t *testing.T) {
	st := ComputeStats(nil)
	if st.Total != 0 || st.CompletionRate != 0 {
		t.Fatalf("expected zero stats, got %+v", st)
	}
}

func TestFilterUpcoming_WindowAndBadDates(t *testing.T) {
	today := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)

	items := []Vaccination{
		{Name: "in-window", DueDate: "2025-06-06"},  // 5 días
		{Name: "too-far", DueDate: "2025-07-11"},    // 40 días
		{Name: "past", DueDate: "2025-05-20"},       // vencida
		{Name: "bad-date", DueDate: "not-a-date"},   // se excluye en silencio
		{Name: "edge-today", DueDate: "2025-06-01"}, // 0 días
		{Name: "edge-limit", DueDate: "2025-07-01"}, // 30 días justos
	}

	out := FilterUpcoming(items, today, 30)
	if len(out) != 3 {
		t.Fatalf("expected 3 upcoming, got %d: %#v", len(out), out)
	}
	if out[0].Name != "edge-today" || out[0].DaysUntilDue != 0 {
		t.Fatalf("expected edge-today first with 0 days, got %+v", out[0])
	}
	if out[1].Name != "in-window" || out[1].DaysUntilDue != 5 {
		t.Fatalf("expected in-window with 5 days, got %+v", out[1])
	}
	if out[2].Name != "edge-limit" || out[2].DaysUntilDue != 30 {
		t.Fatalf("expected edge-limit with 30 days, got %+v", out[2])
	}
}

func TestService_StatusIsCallerAsserted(t *testing.T) {
	// El store no deriva overdue aunque due_date ya haya pasado.
	svc := newTestService(t)

	v, err := svc.Create(context.Background(), "u1", CreateInput{
		Name:    "Parvo",
		DueDate: "2000-01-01",
		Status:  StatusPending,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := svc.Get(context.Background(), v.ID, "u1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Status != StatusPending {
		t.Fatalf("status must stay caller-asserted, got %s", got.Status)
	}
}

func strPtr(s string) *string { return &s }
