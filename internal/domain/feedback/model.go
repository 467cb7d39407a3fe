package feedback

import (
	"time"

	"dog-breed-predictor/internal/domain/records"
	"dog-breed-predictor/internal/ports/docstore"
)

// Type clasifica el feedback recibido.
type Type string

const (
	TypePredictionCorrect Type = "prediction_correct"
	TypePredictionWrong   Type = "prediction_wrong"
	TypeFeature           Type = "feature"
	TypeBug               Type = "bug"
	TypeGeneral           Type = "general"
)

func ValidType(t Type) bool {
	switch t {
	case TypePredictionCorrect, TypePredictionWrong, TypeFeature, TypeBug, TypeGeneral:
		return true
	}
	return false
}

// Status es el estado de moderación. Solo lo muta un actor con rol admin,
// nunca el owner.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusResolved Status = "resolved"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusReviewed, StatusResolved:
		return true
	}
	return false
}

// RedactedOwner reemplaza al owner real en cualquier exposición fuera del
// contexto del dueño (listado público).
const RedactedOwner = "anonymous"

// Feedback es un registro de feedback de un usuario.
type Feedback struct {
	ID          string
	OwnerUserID string

	Type    Type
	Message string
	Rating  *int // 1-5

	PredictionID   *string
	BreedPredicted *string
	ActualBreed    *string

	IsPrivate bool
	Status    Status

	AdminResponse    *string
	AdminRespondedAt *time.Time
	HelpfulCount     int
	Metadata         map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
}

func fromDoc(doc docstore.Document) Feedback {
	return Feedback{
		ID:               records.AsString(doc["id"]),
		OwnerUserID:      records.AsString(doc[records.FieldOwner]),
		Type:             Type(records.AsString(doc[records.FieldType])),
		Message:          records.AsString(doc["message"]),
		Rating:           records.AsIntPtr(doc["rating"]),
		PredictionID:     records.AsStringPtr(doc["prediction_id"]),
		BreedPredicted:   records.AsStringPtr(doc["breed_predicted"]),
		ActualBreed:      records.AsStringPtr(doc["actual_breed"]),
		IsPrivate:        records.AsBool(doc["is_private"]),
		Status:           Status(records.AsString(doc[records.FieldStatus])),
		AdminResponse:    records.AsStringPtr(doc["admin_response"]),
		AdminRespondedAt: records.AsTimePtr(doc["admin_responded_at"]),
		HelpfulCount:     records.AsInt(doc["helpful_count"]),
		Metadata:         records.AsMap(doc["metadata"]),
		CreatedAt:        records.AsTime(doc[records.FieldCreatedAt]),
		UpdatedAt:        records.AsTime(doc[records.FieldUpdatedAt]),
	}
}
