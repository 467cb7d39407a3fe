package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dog-breed-predictor/internal/ports/docstore"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store implementa docstore.Store sobre Firestore.
type Store struct {
	client *firestore.Client
}

// Open crea el cliente de Firestore.
// credentialsFile es opcional: vacío usa Application Default Credentials.
func Open(ctx context.Context, projectID, credentialsFile string) (*Store, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("firestore project id required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(credentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	ref := s.client.Collection(collection).NewDoc()
	if _, err := ref.Create(ctx, map[string]any(doc)); err != nil {
		return "", translate(err)
	}
	return ref.ID, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, translate(err)
	}

	out := docstore.Document(snap.Data())
	out["id"] = snap.Ref.ID
	return out, nil
}

func (s *Store) Query(ctx context.Context, collection string, filters []docstore.Filter, order docstore.Order, limit int) ([]docstore.Document, error) {
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}
	if strings.TrimSpace(order.Field) != "" {
		dir := firestore.Asc
		if order.Desc {
			dir = firestore.Desc
		}
		// OrderBy excluye documentos sin el campo de orden; el contrato del
		// port exige que el campo esté presente en toda la colección.
		q = q.OrderBy(order.Field, dir)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	out := make([]docstore.Document, 0)
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, translate(err)
		}
		doc := docstore.Document(snap.Data())
		doc["id"] = snap.Ref.ID
		out = append(out, doc)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, match []docstore.Filter, partial docstore.Document) error {
	ref := s.client.Collection(collection).Doc(id)

	// Lectura + check de match + merge dentro de una transacción para que la
	// verificación de ownership y la mutación sean un solo paso lógico.
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if !matches(snap.Data(), match) {
			return status.Error(codes.NotFound, "match failed")
		}
		return tx.Set(ref, map[string]any(partial), firestore.MergeAll)
	})
	return translate(err)
}

func (s *Store) Delete(ctx context.Context, collection, id string, match []docstore.Filter) error {
	ref := s.client.Collection(collection).Doc(id)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if !matches(snap.Data(), match) {
			return status.Error(codes.NotFound, "match failed")
		}
		return tx.Delete(ref)
	})
	return translate(err)
}

func (s *Store) Set(ctx context.Context, collection, id string, doc docstore.Document, merge bool) error {
	ref := s.client.Collection(collection).Doc(id)

	var err error
	if merge {
		_, err = ref.Set(ctx, map[string]any(doc), firestore.MergeAll)
	} else {
		_, err = ref.Set(ctx, map[string]any(doc))
	}
	return translate(err)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Close()
}

func matches(data map[string]any, filters []docstore.Filter) bool {
	for _, f := range filters {
		if data[f.Field] != f.Value {
			return false
		}
	}
	return true
}

// translate mapea códigos gRPC a los sentinels del port.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return docstore.ErrNotFound
	case codes.DeadlineExceeded, codes.Unavailable, codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
}
