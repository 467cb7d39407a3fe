package predictions

import (
	"context"
	"errors"
	"strings"

	"dog-breed-predictor/internal/domain/records"
	"dog-breed-predictor/internal/ports/docstore"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Collection es la colección documental de predicciones.
const Collection = "predictions"

const DefaultHistoryLimit = 50

type Service struct {
	store *records.Store
}

func NewService(store *records.Store) *Service {
	return &Service{store: store}
}

type SaveInput struct {
	Breed          string
	Confidence     float64
	Percentage     float64
	ImageName      *string
	TopPredictions []TopPrediction
	ImageURL       *string
	ThumbnailURL   *string
}

// Save persiste una inferencia de un usuario autenticado.
func (s *Service) Save(ctx context.Context, ownerID string, in SaveInput) (string, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(in.Breed) == "" {
		return "", ErrInvalidInput
	}
	if in.Confidence < 0 || in.Confidence > 1 {
		return "", ErrInvalidInput
	}

	doc := docstore.Document{
		"breed":           in.Breed,
		"confidence":      in.Confidence,
		"percentage":      in.Percentage,
		"image_name":      derefOrNil(in.ImageName),
		"top_predictions": topPredictionsToDoc(in.TopPredictions),
		"image_url":       derefOrNil(in.ImageURL),
		"thumbnail_url":   derefOrNil(in.ThumbnailURL),
	}
	return s.store.Create(ctx, ownerID, doc)
}

// History devuelve las predicciones del owner, más reciente primero.
func (s *Service) History(ctx context.Context, ownerID string, limit int) ([]Prediction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	docs, err := s.store.List(ctx, ownerID, records.Filter{},
		docstore.Order{Field: records.FieldCreatedAt, Desc: true}, limit)
	if err != nil {
		return nil, err
	}

	out := make([]Prediction, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromDoc(doc))
	}
	return out, nil
}

// Count cuenta las predicciones del owner, acotado por ScanCap igual que
// el resto de los escaneos de stats.
func (s *Service) Count(ctx context.Context, ownerID string) (int, error) {
	docs, err := s.store.List(ctx, ownerID, records.Filter{}, docstore.Order{}, records.ScanCap)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// BreedStats calcula las estadísticas de razas del owner como función pura
// sobre el set recuperado.
func (s *Service) BreedStats(ctx context.Context, ownerID string) ([]BreedStat, error) {
	items, err := s.History(ctx, ownerID, records.ScanCap)
	if err != nil {
		return nil, err
	}
	return ComputeBreedStats(items), nil
}

func derefOrNil(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
