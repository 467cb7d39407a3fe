package predictions

import (
	"context"
	"testing"
	"time"

	"dog-breed-predictor/internal/adapters/docstore/memory"
	"dog-breed-predictor/internal/domain/records"
)

func TestSaveAndHistory(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store := records.NewStore(memory.New(), Collection).WithClock(func() time.Time { return now })
	svc := NewService(store)

	name := "rex.jpg"
	id, err := svc.Save(context.Background(), "u1", SaveInput{
		Breed:      "Golden Retriever",
		Confidence: 0.91,
		Percentage: 91.0,
		ImageName:  &name,
		TopPredictions: []TopPrediction{
			{Breed: "Golden Retriever", Confidence: 0.91, Percentage: 91.0},
			{Breed: "Labrador Retriever", Confidence: 0.06, Percentage: 6.0},
		},
	})
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if id == "" {
		t.Fatal("expected assigned id")
	}

	now = now.Add(time.Minute)
	if _, err := svc.Save(context.Background(), "u1", SaveInput{Breed: "Beagle", Confidence: 0.77}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	items, err := svc.History(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Breed != "Beagle" {
		t.Fatal("expected newest prediction first")
	}
	if items[1].ImageName == nil || *items[1].ImageName != "rex.jpg" {
		t.Fatalf("image_name = %v", items[1].ImageName)
	}
	if len(items[1].TopPredictions) != 2 || items[1].TopPredictions[1].Breed != "Labrador Retriever" {
		t.Fatalf("top_predictions = %v", items[1].TopPredictions)
	}

	total, err := svc.Count(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if total != 2 {
		t.Fatalf("count = %d, want 2", total)
	}
	// El historial es por owner.
	other, err := svc.Count(context.Background(), "u2")
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if other != 0 {
		t.Fatalf("count = %d, want 0", other)
	}
}

func TestSave_Validation(t *testing.T) {
	svc := NewService(records.NewStore(memory.New(), Collection))

	if _, err := svc.Save(context.Background(), "u1", SaveInput{Confidence: 0.5}); err != ErrInvalidInput {
		t.Fatalf("missing breed: err = %v", err)
	}
	if _, err := svc.Save(context.Background(), "u1", SaveInput{Breed: "Pug", Confidence: 1.2}); err != ErrInvalidInput {
		t.Fatalf("confidence out of range: err = %v", err)
	}
}

func TestComputeBreedStats(t *testing.T) {
	if got := ComputeBreedStats(nil); len(got) != 0 {
		t.Fatalf("empty input: got %v", got)
	}

	items := []Prediction{
		{Breed: "Beagle", Confidence: 0.8},
		{Breed: "Beagle", Confidence: 0.6},
		{Breed: "Pug", Confidence: 0.9},
		{Breed: "", Confidence: 0.5},
	}
	stats := ComputeBreedStats(items)

	if len(stats) != 3 {
		t.Fatalf("len = %d, want 3", len(stats))
	}
	if stats[0].Breed != "Beagle" || stats[0].Count != 2 {
		t.Fatalf("stats[0] = %+v", stats[0])
	}
	if stats[0].AvgConfidence != 0.7 {
		t.Fatalf("avg = %v, want 0.7", stats[0].AvgConfidence)
	}
	// Las predicciones sin raza caen en Unknown.
	found := false
	for _, s := range stats {
		if s.Breed == "Unknown" && s.Count == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Unknown bucket: %v", stats)
	}
}

func TestComputeBreedStats_TopCap(t *testing.T) {
	var items []Prediction
	for i := 0; i < 15; i++ {
		items = append(items, Prediction{Breed: string(rune('A' + i)), Confidence: 0.5})
	}
	if got := ComputeBreedStats(items); len(got) != TopBreeds {
		t.Fatalf("len = %d, want %d", len(got), TopBreeds)
	}
}

func TestTopK(t *testing.T) {
	probs := []float64{0.1, 0.5, 0.2, 0.15, 0.05}

	got := TopK(probs, 3)
	want := []int{1, 2, 3}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TopK = %v, want %v", got, want)
		}
	}

	if got := TopK(probs, 10); len(got) != len(probs) {
		t.Fatalf("k mayor al vector: len = %d", len(got))
	}
}
