package vaccinations

import (
	"time"

	"dog-breed-predictor/internal/domain/records"
	"dog-breed-predictor/internal/ports/docstore"
)

// Status es el estado del registro de vacunación.
// Lo asigna y actualiza el caller; el store nunca lo deriva de due_date
// (ver decisión en DESIGN.md).
type Status string

const (
	StatusPending   Status = "pending"
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusUpcoming, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

// DateLayout es el formato de due_date y last_date (fecha sin hora).
const DateLayout = "2006-01-02"

// Vaccination es un registro de vacunación de un usuario.
type Vaccination struct {
	ID          string
	OwnerUserID string

	Name    string
	DueDate string // YYYY-MM-DD
	Status  Status

	LastDate *string // YYYY-MM-DD
	Notes    string
	Required bool
	PetName  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Upcoming es una vacunación dentro de la ventana de días consultada.
type Upcoming struct {
	Vaccination
	DaysUntilDue int
}

func fromDoc(doc docstore.Document) Vaccination {
	return Vaccination{
		ID:          records.AsString(doc["id"]),
		OwnerUserID: records.AsString(doc[records.FieldOwner]),
		Name:        records.AsString(doc["name"]),
		DueDate:     records.AsString(doc["due_date"]),
		Status:      Status(records.AsString(doc[records.FieldStatus])),
		LastDate:    records.AsStringPtr(doc["last_date"]),
		Notes:       records.AsString(doc["notes"]),
		Required:    records.AsBool(doc["required"]),
		PetName:     records.AsStringPtr(doc["pet_name"]),
		CreatedAt:   records.AsTime(doc[records.FieldCreatedAt]),
		UpdatedAt:   records.AsTime(doc[records.FieldUpdatedAt]),
	}
}
