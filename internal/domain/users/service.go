package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"dog-breed-predictor/internal/domain/records"
	"dog-breed-predictor/internal/ports/auth"
	"dog-breed-predictor/internal/ports/docstore"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Collection es la colección documental de perfiles.
const Collection = "users"

// Service maneja perfiles de usuario. A diferencia de los registros con
// ownership, el perfil usa el user_id como id del documento y se escribe
// con merge/upsert: no hay que distinguir crear de actualizar.
type Service struct {
	db  docstore.Store
	now func() time.Time
}

func NewService(db docstore.Store) *Service {
	return &Service{
		db:  db,
		now: time.Now,
	}
}

// Profile es el perfil persistido de un usuario.
type Profile struct {
	UserID           string
	Email            string
	Name             string
	TotalPredictions int
	Preferences      map[string]any
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastActive       time.Time
}

// EnsureExists crea el perfil en el primer request autenticado y refresca
// last_active en los siguientes. Pensado para llamarse en cada endpoint
// protegido sin costo de branching en los handlers.
func (s *Service) EnsureExists(ctx context.Context, claims auth.Claims) error {
	userID := strings.TrimSpace(claims.UserID)
	if userID == "" {
		return ErrInvalidInput
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.db.Get(ctx, Collection, userID)
	switch {
	case err == nil:
		return s.db.Set(ctx, Collection, userID, docstore.Document{
			"last_active": s.now().UTC(),
		}, true)
	case errors.Is(err, docstore.ErrNotFound):
		return s.db.Set(ctx, Collection, userID, s.newProfileDoc(claims), false)
	default:
		return err
	}
}

func (s *Service) newProfileDoc(claims auth.Claims) docstore.Document {
	now := s.now().UTC()
	name := strings.TrimSpace(claims.Name)
	if name == "" {
		if at := strings.Index(claims.Email, "@"); at > 0 {
			name = claims.Email[:at]
		}
	}

	return docstore.Document{
		records.FieldOwner:  claims.UserID,
		"email":             claims.Email,
		"name":              name,
		"total_predictions": int64(0),
		"preferences": map[string]any{
			"theme":                 "light",
			"notifications_enabled": true,
		},
		records.FieldCreatedAt: now,
		records.FieldUpdatedAt: now,
		"last_active":          now,
	}
}

// Get devuelve el perfil del usuario.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	doc, err := s.db.Get(ctx, Collection, strings.TrimSpace(userID))
	if err != nil {
		return Profile{}, err
	}
	return fromDoc(doc), nil
}

// Update aplica un merge parcial al perfil. Los campos de identidad y
// created_at no se pueden pisar.
func (s *Service) Update(ctx context.Context, userID string, updates docstore.Document) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidInput
	}

	doc := make(docstore.Document, len(updates)+1)
	for k, v := range updates {
		doc[k] = v
	}
	delete(doc, records.FieldOwner)
	delete(doc, records.FieldCreatedAt)
	doc[records.FieldUpdatedAt] = s.now().UTC()

	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.db.Set(ctx, Collection, userID, doc, true)
}

// TouchPrediction incrementa el contador de predicciones y refresca
// last_active. Read-modify-write simple: el contador es informativo, no
// necesita ser exacto bajo concurrencia.
func (s *Service) TouchPrediction(ctx context.Context, userID string) error {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.db.Set(ctx, Collection, userID, docstore.Document{
		"total_predictions": int64(profile.TotalPredictions + 1),
		"last_active":       s.now().UTC(),
	}, true)
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, records.DefaultTimeout)
}

func fromDoc(doc docstore.Document) Profile {
	return Profile{
		UserID:           records.AsString(doc[records.FieldOwner]),
		Email:            records.AsString(doc["email"]),
		Name:             records.AsString(doc["name"]),
		TotalPredictions: records.AsInt(doc["total_predictions"]),
		Preferences:      records.AsMap(doc["preferences"]),
		CreatedAt:        records.AsTime(doc[records.FieldCreatedAt]),
		UpdatedAt:        records.AsTime(doc[records.FieldUpdatedAt]),
		LastActive:       records.AsTime(doc["last_active"]),
	}
}
