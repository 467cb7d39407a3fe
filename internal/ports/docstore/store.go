package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound cubre documento ausente y filtro de match no cumplido:
	// el caller no puede distinguirlos (anti-enumeración).
	ErrNotFound = errors.New("document not found")

	// ErrUnavailable indica fallo transitorio del backend (timeout, conexión).
	ErrUnavailable = errors.New("backend unavailable")
)

// Document es un documento plano de la base documental.
// Los adapters normalizan los valores a tipos Go (string, bool, int64,
// float64, time.Time, []any, map[string]any, nil) al leer.
type Document map[string]any

// Filter es una condición de igualdad sobre un campo.
type Filter struct {
	Field string
	Value any
}

// Order define el campo y sentido de ordenamiento de un Query.
// El campo de orden debe estar presente en todos los documentos de la
// colección: Firestore excluye del resultado los documentos que no lo
// tienen, mientras los demás backends los ordenan primero. Los campos que
// este módulo usa para ordenar (created_at, due_date) se asignan siempre.
type Order struct {
	Field string
	Desc  bool
}

// Store es la interfaz documental que implementa cada backend.
// Las operaciones son de documento único; el match de Update/Delete
// se evalúa junto con la mutación en un solo paso lógico.
type Store interface {
	// Insert persiste un documento nuevo y devuelve el id asignado por el backend.
	Insert(ctx context.Context, collection string, doc Document) (string, error)

	// Get devuelve el documento (con campo "id" incluido) o ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Query devuelve documentos que cumplen todos los filtros, ordenados y
	// truncados a limit (limit <= 0 = sin límite). Cada documento incluye "id".
	Query(ctx context.Context, collection string, filters []Filter, order Order, limit int) ([]Document, error)

	// Update aplica un merge parcial si el documento existe y cumple match.
	// Devuelve ErrNotFound tanto si falta como si el match no se cumple.
	Update(ctx context.Context, collection, id string, match []Filter, partial Document) error

	// Delete borra el documento si existe y cumple match; mismo contrato de error.
	Delete(ctx context.Context, collection, id string, match []Filter) error

	// Set escribe un documento con id explícito (upsert).
	// Con merge=true conserva los campos no incluidos en doc.
	Set(ctx context.Context, collection, id string, doc Document, merge bool) error

	// Close libera la conexión al backend.
	Close(ctx context.Context) error
}
