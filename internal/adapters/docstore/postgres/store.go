package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"dog-breed-predictor/internal/ports/docstore"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Adapter documental sobre Postgres: una tabla genérica de documentos JSONB.
// Existe para entornos donde ya hay Postgres y no se quiere operar Mongo/Firestore.

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

type Store struct {
	db *sql.DB
}

// EnsureSchema crea la tabla de documentos si no existe.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			doc        JSONB NOT NULL,
			PRIMARY KEY (collection, id)
		)
	`)
	return translate(err)
}

func (s *Store) Insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	id := uuid.NewString()

	b, err := marshalDoc(doc)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)
	`, collection, id, b)
	if err != nil {
		return "", translate(err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT doc FROM documents WHERE collection = $1 AND id = $2
	`, collection, id)

	var b []byte
	if err := row.Scan(&b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, translate(err)
	}

	doc, err := unmarshalDoc(b)
	if err != nil {
		return nil, err
	}
	doc["id"] = id
	return doc, nil
}

func (s *Store) Query(ctx context.Context, collection string, filters []docstore.Filter, order docstore.Order, limit int) ([]docstore.Document, error) {
	q := strings.Builder{}
	q.WriteString(`SELECT id, doc FROM documents WHERE collection = $1`)

	args := []any{collection}
	if len(filters) > 0 {
		matchJSON, err := marshalMatch(filters)
		if err != nil {
			return nil, err
		}
		args = append(args, matchJSON)
		q.WriteString(fmt.Sprintf(` AND doc @> $%d::jsonb`, len(args)))
	}

	if field, ok := safeField(order.Field); ok {
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		// Los time.Time se escriben en formato UTC de ancho fijo, así que el
		// orden lexicográfico del texto coincide con el cronológico.
		q.WriteString(fmt.Sprintf(` ORDER BY doc->>'%s' %s NULLS FIRST`, field, dir))
	}

	if limit > 0 {
		args = append(args, limit)
		q.WriteString(fmt.Sprintf(` LIMIT $%d`, len(args)))
	}

	rows, err := s.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := make([]docstore.Document, 0)
	for rows.Next() {
		var id string
		var b []byte
		if err := rows.Scan(&id, &b); err != nil {
			return nil, translate(err)
		}
		doc, err := unmarshalDoc(b)
		if err != nil {
			return nil, err
		}
		doc["id"] = id
		out = append(out, doc)
	}
	return out, translate(rows.Err())
}

func (s *Store) Update(ctx context.Context, collection, id string, match []docstore.Filter, partial docstore.Document) error {
	b, err := marshalDoc(partial)
	if err != nil {
		return err
	}

	args := []any{collection, id, b}
	q := `UPDATE documents SET doc = doc || $3::jsonb WHERE collection = $1 AND id = $2`
	if len(match) > 0 {
		matchJSON, err := marshalMatch(match)
		if err != nil {
			return err
		}
		args = append(args, matchJSON)
		q += fmt.Sprintf(` AND doc @> $%d::jsonb`, len(args))
	}

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string, match []docstore.Filter) error {
	args := []any{collection, id}
	q := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if len(match) > 0 {
		matchJSON, err := marshalMatch(match)
		if err != nil {
			return err
		}
		args = append(args, matchJSON)
		q += fmt.Sprintf(` AND doc @> $%d::jsonb`, len(args))
	}

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Set(ctx context.Context, collection, id string, doc docstore.Document, merge bool) error {
	b, err := marshalDoc(doc)
	if err != nil {
		return err
	}

	var q string
	if merge {
		q = `
			INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)
			ON CONFLICT (collection, id) DO UPDATE SET doc = documents.doc || EXCLUDED.doc
		`
	} else {
		q = `
			INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)
			ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc
		`
	}

	_, err = s.db.ExecContext(ctx, q, collection, id, b)
	return translate(err)
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

var fieldRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// safeField valida nombres de campo antes de interpolarlos en ORDER BY.
func safeField(field string) (string, bool) {
	field = strings.TrimSpace(field)
	if field == "" || !fieldRe.MatchString(field) {
		return "", false
	}
	return field, true
}

// canonTime es RFC3339 con nanosegundos de ancho fijo en UTC, para que el
// texto ordene cronológicamente dentro del JSONB.
const canonTime = "2006-01-02T15:04:05.000000000Z"

func marshalDoc(doc docstore.Document) ([]byte, error) {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = canonValue(v)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return b, nil
}

func marshalMatch(filters []docstore.Filter) ([]byte, error) {
	m := make(map[string]any, len(filters))
	for _, f := range filters {
		m[f.Field] = canonValue(f.Value)
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal match: %w", err)
	}
	return b, nil
}

func canonValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(canonTime)
	case []any:
		arr := make([]any, 0, len(t))
		for _, e := range t {
			arr = append(arr, canonValue(e))
		}
		return arr
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = canonValue(e)
		}
		return m
	default:
		return v
	}
}

func unmarshalDoc(b []byte) (docstore.Document, error) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return docstore.Document(m), nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return docstore.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
	}
}
