package vaccinations

import (
	"context"
	"errors"
	"strings"
	"time"

	"dog-breed-predictor/internal/domain/records"
	"dog-breed-predictor/internal/ports/docstore"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Collection es la colección documental de vacunaciones.
const Collection = "vaccinations"

const (
	DefaultListLimit  = 100
	DefaultWindowDays = 30
)

type Service struct {
	store *records.Store
	now   func() time.Time
}

func NewService(store *records.Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

type CreateInput struct {
	Name     string
	DueDate  string
	Status   Status
	LastDate *string
	Notes    string
	Required bool
	PetName  *string
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Vaccination, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Vaccination{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Vaccination{}, ErrInvalidInput
	}
	if _, err := time.Parse(DateLayout, in.DueDate); err != nil {
		return Vaccination{}, ErrInvalidInput
	}

	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if !ValidStatus(status) {
		return Vaccination{}, ErrInvalidInput
	}
	if err := validOptionalDate(in.LastDate); err != nil {
		return Vaccination{}, err
	}

	doc := docstore.Document{
		"name":              strings.TrimSpace(in.Name),
		"due_date":          in.DueDate,
		records.FieldStatus: string(status),
		"last_date":         derefOrNil(in.LastDate),
		"notes":             in.Notes,
		"required":          in.Required,
		"pet_name":          derefOrNil(in.PetName),
	}

	id, err := s.store.Create(ctx, ownerID, doc)
	if err != nil {
		return Vaccination{}, err
	}
	return s.Get(ctx, id, ownerID)
}

func (s *Service) Get(ctx context.Context, id, ownerID string) (Vaccination, error) {
	doc, err := s.store.Get(ctx, id, ownerID)
	if err != nil {
		return Vaccination{}, err
	}
	return fromDoc(doc), nil
}

// List devuelve las vacunaciones del owner ordenadas por due_date ascendente.
func (s *Service) List(ctx context.Context, ownerID string, status string, limit int) ([]Vaccination, error) {
	if status != "" && !ValidStatus(Status(status)) {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	docs, err := s.store.List(ctx, ownerID, records.Filter{Status: status}, docstore.Order{Field: "due_date"}, limit)
	if err != nil {
		return nil, err
	}

	out := make([]Vaccination, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromDoc(doc))
	}
	return out, nil
}

type UpdateInput struct {
	Name     *string
	DueDate  *string
	Status   *string
	LastDate *string
	Notes    *string
	Required *bool
	PetName  *string
}

// Update aplica solo los campos presentes. Un partial vacío es válido y solo
// avanza updated_at.
func (s *Service) Update(ctx context.Context, id, ownerID string, in UpdateInput) (Vaccination, error) {
	partial := docstore.Document{}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Vaccination{}, ErrInvalidInput
		}
		partial["name"] = strings.TrimSpace(*in.Name)
	}
	if in.DueDate != nil {
		if _, err := time.Parse(DateLayout, *in.DueDate); err != nil {
			return Vaccination{}, ErrInvalidInput
		}
		partial["due_date"] = *in.DueDate
	}
	if in.Status != nil {
		if !ValidStatus(Status(*in.Status)) {
			return Vaccination{}, ErrInvalidInput
		}
		partial[records.FieldStatus] = *in.Status
	}
	if in.LastDate != nil {
		if err := validOptionalDate(in.LastDate); err != nil {
			return Vaccination{}, err
		}
		partial["last_date"] = *in.LastDate
	}
	if in.Notes != nil {
		partial["notes"] = *in.Notes
	}
	if in.Required != nil {
		partial["required"] = *in.Required
	}
	if in.PetName != nil {
		partial["pet_name"] = *in.PetName
	}

	if err := s.store.Update(ctx, id, ownerID, partial); err != nil {
		return Vaccination{}, err
	}
	return s.Get(ctx, id, ownerID)
}

func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	return s.store.Delete(ctx, id, ownerID)
}

// Stats calcula las estadísticas del owner como función pura sobre el set
// recuperado (acotado por ScanCap), idéntica en todos los backends.
func (s *Service) Stats(ctx context.Context, ownerID string) (Stats, error) {
	items, err := s.List(ctx, ownerID, "", records.ScanCap)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(items), nil
}

// UpcomingWithin devuelve las vacunaciones con due_date en [hoy, hoy+days],
// ordenadas por due_date ascendente. Fechas ausentes o no parseables se
// excluyen sin error.
func (s *Service) UpcomingWithin(ctx context.Context, ownerID string, days int) ([]Upcoming, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}

	items, err := s.List(ctx, ownerID, "", records.ScanCap)
	if err != nil {
		return nil, err
	}

	today := s.now()
	return FilterUpcoming(items, today, days), nil
}

func validOptionalDate(v *string) error {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, *v); err != nil {
		return ErrInvalidInput
	}
	return nil
}

func derefOrNil(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
