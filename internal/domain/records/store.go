package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"dog-breed-predictor/internal/ports/docstore"
)

// Re-export de los sentinels del port para no acoplar handlers al adapter.
var (
	ErrNotFound    = docstore.ErrNotFound
	ErrUnavailable = docstore.ErrUnavailable
)

const (
	// FieldOwner es la clave de partición de ownership en cada documento.
	FieldOwner     = "user_id"
	FieldStatus    = "status"
	FieldType      = "type"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"

	// DefaultTimeout limita cada operación contra el backend.
	DefaultTimeout = 5 * time.Second

	// ScanCap acota los escaneos para stats; el comportamiento es idéntico
	// en todos los backends.
	ScanCap = 1000
)

// Filter es el filtro opcional de listados por status y/o type.
type Filter struct {
	Status string
	Type   string
}

// Store es el CRUD genérico sobre registros con owner, status y timestamps.
// Toda la lógica de ownership vive acá, una sola vez, por encima del adapter.
// Un registro de otro owner se comporta exactamente igual que uno inexistente.
type Store struct {
	db         docstore.Store
	collection string
	timeout    time.Duration
	now        func() time.Time
}

func NewStore(db docstore.Store, collection string) *Store {
	return &Store{
		db:         db,
		collection: collection,
		timeout:    DefaultTimeout,
		now:        time.Now,
	}
}

// WithClock reemplaza el reloj del store (tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Create persiste un registro nuevo del owner y devuelve el id asignado.
// user_id, created_at y updated_at los asigna el store; el caller no los toca.
func (s *Store) Create(ctx context.Context, ownerID string, fields docstore.Document) (string, error) {
	if strings.TrimSpace(ownerID) == "" {
		return "", ErrNotFound
	}

	now := s.now().UTC()
	doc := make(docstore.Document, len(fields)+3)
	for k, v := range fields {
		doc[k] = v
	}
	doc[FieldOwner] = ownerID
	doc[FieldCreatedAt] = now
	doc[FieldUpdatedAt] = now

	ctx, cancel := s.bound(ctx)
	defer cancel()

	id, err := s.db.Insert(ctx, s.collection, doc)
	return id, s.wrap(ctx, err)
}

// Get devuelve el registro solo si pertenece al owner.
func (s *Store) Get(ctx context.Context, id, ownerID string) (docstore.Document, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	doc, err := s.db.Get(ctx, s.collection, id)
	if err != nil {
		return nil, s.wrap(ctx, err)
	}
	if owner, _ := doc[FieldOwner].(string); owner != ownerID {
		return nil, ErrNotFound
	}
	return doc, nil
}

// List devuelve los registros del owner, filtrados y ordenados.
func (s *Store) List(ctx context.Context, ownerID string, f Filter, order docstore.Order, limit int) ([]docstore.Document, error) {
	filters := []docstore.Filter{{Field: FieldOwner, Value: ownerID}}
	filters = appendFilter(filters, f)

	ctx, cancel := s.bound(ctx)
	defer cancel()

	docs, err := s.db.Query(ctx, s.collection, filters, order, limit)
	return docs, s.wrap(ctx, err)
}

// ListAll lista sin filtrar por owner (listados públicos / moderación / stats
// globales). Los callers deciden qué exponer de cada registro.
func (s *Store) ListAll(ctx context.Context, filters []docstore.Filter, f Filter, order docstore.Order, limit int) ([]docstore.Document, error) {
	filters = appendFilter(filters, f)

	ctx, cancel := s.bound(ctx)
	defer cancel()

	docs, err := s.db.Query(ctx, s.collection, filters, order, limit)
	return docs, s.wrap(ctx, err)
}

// Update aplica un merge parcial si el registro existe y es del owner; ambas
// condiciones se verifican contra el backend en un solo paso lógico.
// id, user_id y created_at no se pueden pisar; updated_at avanza siempre,
// incluso con partial vacío.
func (s *Store) Update(ctx context.Context, id, ownerID string, partial docstore.Document) error {
	match := []docstore.Filter{{Field: FieldOwner, Value: ownerID}}
	return s.update(ctx, id, match, partial)
}

// UpdateAny es la variante sin ownership para actores privilegiados
// (moderación de feedback). El que llama decide quién puede usarla.
func (s *Store) UpdateAny(ctx context.Context, id string, partial docstore.Document) error {
	return s.update(ctx, id, nil, partial)
}

func (s *Store) update(ctx context.Context, id string, match []docstore.Filter, partial docstore.Document) error {
	doc := make(docstore.Document, len(partial)+1)
	for k, v := range partial {
		doc[k] = v
	}
	delete(doc, "id")
	delete(doc, FieldOwner)
	delete(doc, FieldCreatedAt)
	doc[FieldUpdatedAt] = s.now().UTC()

	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.wrap(ctx, s.db.Update(ctx, s.collection, id, match, doc))
}

// Delete borra el registro si es del owner. Borrar dos veces devuelve
// ErrNotFound la segunda, lo cual es seguro para retries.
func (s *Store) Delete(ctx context.Context, id, ownerID string) error {
	match := []docstore.Filter{{Field: FieldOwner, Value: ownerID}}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.wrap(ctx, s.db.Delete(ctx, s.collection, id, match))
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// wrap asegura que un deadline vencido se reporte como fallo transitorio y
// no como un error crudo de contexto.
func (s *Store) wrap(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return ErrUnavailable
	}
	return err
}

func appendFilter(filters []docstore.Filter, f Filter) []docstore.Filter {
	if strings.TrimSpace(f.Status) != "" {
		filters = append(filters, docstore.Filter{Field: FieldStatus, Value: f.Status})
	}
	if strings.TrimSpace(f.Type) != "" {
		filters = append(filters, docstore.Filter{Field: FieldType, Value: f.Type})
	}
	return filters
}
