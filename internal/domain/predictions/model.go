package predictions

import (
	"time"

	"dog-breed-predictor/internal/domain/records"
	"dog-breed-predictor/internal/ports/docstore"
)

// TopPrediction es una de las mejores candidatas de una inferencia.
type TopPrediction struct {
	Breed      string  `json:"breed"`
	Confidence float64 `json:"confidence"`
	Percentage float64 `json:"percentage"`
}

// Prediction es una inferencia persistida de un usuario autenticado.
type Prediction struct {
	ID          string
	OwnerUserID string

	Breed      string
	Confidence float64
	Percentage float64

	ImageName      *string
	TopPredictions []TopPrediction
	ImageURL       *string
	ThumbnailURL   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func fromDoc(doc docstore.Document) Prediction {
	return Prediction{
		ID:             records.AsString(doc["id"]),
		OwnerUserID:    records.AsString(doc[records.FieldOwner]),
		Breed:          records.AsString(doc["breed"]),
		Confidence:     records.AsFloat(doc["confidence"]),
		Percentage:     records.AsFloat(doc["percentage"]),
		ImageName:      records.AsStringPtr(doc["image_name"]),
		TopPredictions: topPredictionsFromDoc(doc["top_predictions"]),
		ImageURL:       records.AsStringPtr(doc["image_url"]),
		ThumbnailURL:   records.AsStringPtr(doc["thumbnail_url"]),
		CreatedAt:      records.AsTime(doc[records.FieldCreatedAt]),
		UpdatedAt:      records.AsTime(doc[records.FieldUpdatedAt]),
	}
}

func topPredictionsFromDoc(v any) []TopPrediction {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]TopPrediction, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, TopPrediction{
			Breed:      records.AsString(m["breed"]),
			Confidence: records.AsFloat(m["confidence"]),
			Percentage: records.AsFloat(m["percentage"]),
		})
	}
	return out
}

func topPredictionsToDoc(items []TopPrediction) []any {
	out := make([]any, 0, len(items))
	for _, p := range items {
		out = append(out, map[string]any{
			"breed":      p.Breed,
			"confidence": p.Confidence,
			"percentage": p.Percentage,
		})
	}
	return out
}
