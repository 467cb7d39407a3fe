package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"dog-breed-predictor/internal/adapters/docstore/memory"
	"dog-breed-predictor/internal/domain/records"
)

func newTestService() *Service {
	return NewService(records.NewStore(memory.New(), Collection))
}

func TestSubmit_DefaultsAndValidation(t *testing.T) {
	svc := newTestService()

	f, err := svc.Submit(context.Background(), "u1", SubmitInput{
		Type:    TypeGeneral,
		Message: "great app",
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if f.ID == "" {
		t.Fatal("expected assigned id")
	}
	if f.Status != StatusPending {
		t.Fatalf("status = %s, want pending", f.Status)
	}
	if f.HelpfulCount != 0 {
		t.Fatalf("helpful_count = %d, want 0", f.HelpfulCount)
	}
	if f.Rating != nil {
		t.Fatalf("rating = %v, want nil", *f.Rating)
	}
	if f.Metadata == nil {
		t.Fatal("metadata must default to empty map, not nil")
	}
	if f.AdminResponse != nil || f.AdminRespondedAt != nil {
		t.Fatal("admin fields must start empty")
	}

	cases := []struct {
		name string
		in   SubmitInput
	}{
		{"unknown type", SubmitInput{Type: "rant", Message: "x"}},
		{"empty type", SubmitInput{Message: "x"}},
		{"empty message", SubmitInput{Type: TypeBug}},
		{"rating too low", SubmitInput{Type: TypeBug, Message: "x", Rating: intPtr(0)}},
		{"rating too high", SubmitInput{Type: TypeBug, Message: "x", Rating: intPtr(6)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Submit(context.Background(), "u1", tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestListPublic_RedactsAndExcludesPrivate(t *testing.T) {
	svc := newTestService()

	mustSubmit(t, svc, "u1", SubmitInput{Type: TypeGeneral, Message: "public from u1"})
	mustSubmit(t, svc, "u2", SubmitInput{Type: TypeBug, Message: "secret", IsPrivate: true})
	mustSubmit(t, svc, "u2", SubmitInput{Type: TypeFeature, Message: "public from u2"})

	items, err := svc.ListPublic(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("ListPublic error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	for _, f := range items {
		if f.IsPrivate {
			t.Fatalf("private feedback %s leaked into public listing", f.ID)
		}
		if f.OwnerUserID != RedactedOwner {
			t.Fatalf("owner = %q, want %q", f.OwnerUserID, RedactedOwner)
		}
	}

	// El listado propio sí expone el owner real.
	mine, err := svc.ListMine(context.Background(), "u2", "", 0)
	if err != nil {
		t.Fatalf("ListMine error: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("len = %d, want 2", len(mine))
	}
	for _, f := range mine {
		if f.OwnerUserID != "u2" {
			t.Fatalf("owner = %q, want u2", f.OwnerUserID)
		}
	}
}

func TestListMine_OrderAndTypeFilter(t *testing.T) {
	svc := newTestService()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.store = records.NewStore(memory.New(), Collection).WithClock(func() time.Time { return now })

	first := mustSubmit(t, svc, "u1", SubmitInput{Type: TypeBug, Message: "older"})
	now = now.Add(time.Minute)
	second := mustSubmit(t, svc, "u1", SubmitInput{Type: TypeGeneral, Message: "newer"})

	items, err := svc.ListMine(context.Background(), "u1", "", 0)
	if err != nil {
		t.Fatalf("ListMine error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Fatal("expected newest first")
	}

	bugs, err := svc.ListMine(context.Background(), "u1", string(TypeBug), 0)
	if err != nil {
		t.Fatalf("ListMine error: %v", err)
	}
	if len(bugs) != 1 || bugs[0].ID != first.ID {
		t.Fatal("type filter must keep only the bug report")
	}

	if _, err := svc.ListMine(context.Background(), "u1", "rant", 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestUpdatePrivacy_OwnerOnly(t *testing.T) {
	svc := newTestService()

	f := mustSubmit(t, svc, "u1", SubmitInput{Type: TypeGeneral, Message: "mine"})

	if err := svc.UpdatePrivacy(context.Background(), f.ID, "u2", true); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("foreign privacy update: err = %v, want ErrNotFound", err)
	}
	if err := svc.UpdatePrivacy(context.Background(), f.ID, "u1", true); err != nil {
		t.Fatalf("owner privacy update error: %v", err)
	}

	got, err := svc.get(context.Background(), f.ID, "u1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if !got.IsPrivate {
		t.Fatal("is_private must be true after owner update")
	}
}

func TestUpdateStatus_AdminResponse(t *testing.T) {
	svc := newTestService()

	respondedAt := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return respondedAt }

	f := mustSubmit(t, svc, "u1", SubmitInput{Type: TypePredictionWrong, Message: "missed the breed"})

	// Sin respuesta: solo cambia el status.
	if err := svc.UpdateStatus(context.Background(), f.ID, StatusReviewed, ""); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	got, err := svc.get(context.Background(), f.ID, "u1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Status != StatusReviewed {
		t.Fatalf("status = %s, want reviewed", got.Status)
	}
	if got.AdminResponse != nil || got.AdminRespondedAt != nil {
		t.Fatal("admin response must stay empty without a response")
	}

	// Con respuesta: queda registrada junto con su timestamp.
	if err := svc.UpdateStatus(context.Background(), f.ID, StatusResolved, "we retrained the model"); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	got, err = svc.get(context.Background(), f.ID, "u1")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.Status != StatusResolved {
		t.Fatalf("status = %s, want resolved", got.Status)
	}
	if got.AdminResponse == nil || *got.AdminResponse != "we retrained the model" {
		t.Fatalf("admin_response = %v", got.AdminResponse)
	}
	if got.AdminRespondedAt == nil || !got.AdminRespondedAt.Equal(respondedAt) {
		t.Fatalf("admin_responded_at = %v, want %v", got.AdminRespondedAt, respondedAt)
	}

	if err := svc.UpdateStatus(context.Background(), f.ID, "archived", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestComputeStats(t *testing.T) {
	st := ComputeStats(nil)
	if st.Total != 0 || st.AverageRating != 0 || st.PredictionAccuracy != 0 {
		t.Fatalf("empty stats must be all zero: %+v", st)
	}
	// Las claves fijas existen aunque no haya datos.
	for _, k := range []string{"prediction_correct", "prediction_wrong", "feature", "bug", "general"} {
		if _, ok := st.ByType[k]; !ok {
			t.Fatalf("by_type missing fixed key %q", k)
		}
	}
	for _, k := range []string{"pending", "reviewed", "resolved"} {
		if _, ok := st.ByStatus[k]; !ok {
			t.Fatalf("by_status missing fixed key %q", k)
		}
	}

	items := []Feedback{
		{Type: TypePredictionCorrect, Status: StatusPending, Rating: intPtr(5)},
		{Type: TypePredictionCorrect, Status: StatusReviewed, Rating: intPtr(4)},
		{Type: TypePredictionWrong, Status: StatusPending, IsPrivate: true},
		{Type: TypeBug, Status: StatusResolved, Rating: intPtr(2)},
	}
	st = ComputeStats(items)

	if st.Total != 4 {
		t.Fatalf("total = %d, want 4", st.Total)
	}
	if st.PublicFeedback != 3 || st.PrivateFeedback != 1 {
		t.Fatalf("public/private = %d/%d, want 3/1", st.PublicFeedback, st.PrivateFeedback)
	}
	if st.ByType["prediction_correct"] != 2 || st.ByType["prediction_wrong"] != 1 || st.ByType["bug"] != 1 {
		t.Fatalf("by_type = %v", st.ByType)
	}
	if st.ByStatus["pending"] != 2 || st.ByStatus["reviewed"] != 1 || st.ByStatus["resolved"] != 1 {
		t.Fatalf("by_status = %v", st.ByStatus)
	}
	if st.TotalRatings != 3 {
		t.Fatalf("total_ratings = %d, want 3", st.TotalRatings)
	}
	if st.AverageRating != 3.67 {
		t.Fatalf("average_rating = %v, want 3.67", st.AverageRating)
	}
	// 2 correctas de 3 predicciones con feedback.
	if st.PredictionAccuracy != 66.67 {
		t.Fatalf("prediction_accuracy = %v, want 66.67", st.PredictionAccuracy)
	}
}

func mustSubmit(t *testing.T, svc *Service, owner string, in SubmitInput) Feedback {
	t.Helper()
	f, err := svc.Submit(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	return f
}

func intPtr(n int) *int { return &n }
