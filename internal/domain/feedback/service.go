package feedback

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

// Collection es la colección documental de feedback.
const Collection = "feedback"

const (
	DefaultUserLimit  = 50
	DefaultAdminLimit = 100
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

type SubmitInput struct {
	Type           Type
	Message        string
	Rating         *int
	PredictionID   *string
	BreedPredicted *string
	ActualBreed    *string
	IsPrivate      bool
	Metadata       map[string]any
}

func (s *Service) Submit(ctx context.Context, ownerID string, in SubmitInput) (Feedback, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Feedback{}, ErrInvalidInput
	}
	if !ValidType(in.Type) {
		return Feedback{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Message) == "" {
		return Feedback{}, ErrInvalidInput
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return Feedback{}, ErrInvalidInput
	}

	metadata := in.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	doc := docstore.Document{
		records.FieldType:    string(in.Type),
		"message":            strings.TrimSpace(in.Message),
		"rating":             intOrNil(in.Rating),
		"prediction_id":      derefOrNil(in.PredictionID),
		"breed_predicted":    derefOrNil(in.BreedPredicted),
		"actual_breed":       derefOrNil(in.ActualBreed),
		"is_private":         in.IsPrivate,
		records.FieldStatus:  string(StatusPending),
		"metadata":           metadata,
		"admin_response":     nil,
		"admin_responded_at": nil,
		"helpful_count":      int64(0),
	}

	id, err := s.store.Create(ctx, ownerID, doc)
	if err != nil {
		return Feedback{}, err
	}
	return s.get(ctx, id, ownerID)
}

func (s *Service) get(ctx context.Context, id, ownerID string) (Feedback, error) {
	doc, err := s.store.Get(ctx, id, ownerID)
	if err != nil {
		return Feedback{}, err
	}
	return fromDoc(doc), nil
}

// ListMine devuelve el feedback del owner, más reciente primero.
func (s *Service) ListMine(ctx context.Context, ownerID string, ftype string, limit int) ([]Feedback, error) {
	if ftype != "" && !ValidType(Type(ftype)) {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = DefaultUserLimit
	}

	docs, err := s.store.List(ctx, ownerID, records.Filter{Type: ftype},
		docstore.Order{Field: records.FieldCreatedAt, Desc: true}, limit)
	if err != nil {
		return nil, err
	}
	return toFeedback(docs), nil
}

// ListPublic ignora el owner por completo: devuelve solo registros con
// is_private=false, de cualquier usuario, con el owner siempre redactado.
func (s *Service) ListPublic(ctx context.Context, ftype string, limit int) ([]Feedback, error) {
	if ftype != "" && !ValidType(Type(ftype)) {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = DefaultUserLimit
	}

	filters := []docstore.Filter{{Field: "is_private", Value: false}}
	docs, err := s.store.ListAll(ctx, filters, records.Filter{Type: ftype},
		docstore.Order{Field: records.FieldCreatedAt, Desc: true}, limit)
	if err != nil {
		return nil, err
	}

	out := toFeedback(docs)
	for i := range out {
		out[i].OwnerUserID = RedactedOwner
	}
	return out, nil
}

// ListAll es el listado de moderación: todos los owners, privados incluidos.
// El handler garantiza que solo lo alcanza un admin.
func (s *Service) ListAll(ctx context.Context, status, ftype string, limit int) ([]Feedback, error) {
	if status != "" && !ValidStatus(Status(status)) {
		return nil, ErrInvalidInput
	}
	if ftype != "" && !ValidType(Type(ftype)) {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = DefaultAdminLimit
	}

	docs, err := s.store.ListAll(ctx, nil, records.Filter{Status: status, Type: ftype},
		docstore.Order{Field: records.FieldCreatedAt, Desc: true}, limit)
	if err != nil {
		return nil, err
	}
	return toFeedback(docs), nil
}

// UpdatePrivacy cambia is_private; solo el owner puede hacerlo, con la misma
// semántica NotFound-unificada del resto de mutaciones.
func (s *Service) UpdatePrivacy(ctx context.Context, id, ownerID string, isPrivate bool) error {
	partial := docstore.Document{"is_private": isPrivate}
	return s.store.Update(ctx, id, ownerID, partial)
}

// UpdateStatus es la mutación de moderación: cambia status sin chequeo de
// ownership. Si hay respuesta, registra admin_response y su timestamp.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status, adminResponse string) error {
	if !ValidStatus(status) {
		return ErrInvalidInput
	}

	partial := docstore.Document{
		records.FieldStatus: string(status),
	}
	if strings.TrimSpace(adminResponse) != "" {
		partial["admin_response"] = adminResponse
		partial["admin_responded_at"] = s.now().UTC()
	}

	return s.store.UpdateAny(ctx, id, partial)
}

// Stats calcula las estadísticas globales (todos los owners) como función
// pura sobre el set recuperado, acotado por ScanCap.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	docs, err := s.store.ListAll(ctx, nil, records.Filter{}, docstore.Order{}, records.ScanCap)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(toFeedback(docs)), nil
}

func toFeedback(docs []docstore.Document) []Feedback {
	out := make([]Feedback, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromDoc(doc))
	}
	return out
}

func derefOrNil(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}
