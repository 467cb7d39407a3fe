package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dog-breed-predictor/internal/ports/docstore"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store implementa docstore.Store sobre MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open conecta a MongoDB y hace ping para fallar temprano, igual que el
// arranque del backend original.
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, errors.New("mongodb uri required")
	}
	if strings.TrimSpace(dbName) == "" {
		dbName = "dog_breed_predictor"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

func (s *Store) Insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, bson.M(doc))
	if err != nil {
		return "", translate(err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Sprintf("%v", res.InsertedID), nil
	}
	return oid.Hex(), nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	filter := idFilter(id, nil)

	var raw bson.M
	if err := s.db.Collection(collection).FindOne(ctx, filter).Decode(&raw); err != nil {
		return nil, translate(err)
	}
	return normalize(raw), nil
}

func (s *Store) Query(ctx context.Context, collection string, filters []docstore.Filter, order docstore.Order, limit int) ([]docstore.Document, error) {
	filter := bson.M{}
	for _, f := range filters {
		filter[f.Field] = f.Value
	}

	opts := options.Find()
	if strings.TrimSpace(order.Field) != "" {
		dir := 1
		if order.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: order.Field, Value: dir}})
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	out := make([]docstore.Document, 0)
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, translate(err)
		}
		out = append(out, normalize(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, match []docstore.Filter, partial docstore.Document) error {
	filter := idFilter(id, match)

	res, err := s.db.Collection(collection).UpdateOne(ctx, filter, bson.M{"$set": bson.M(partial)})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string, match []docstore.Filter) error {
	filter := idFilter(id, match)

	res, err := s.db.Collection(collection).DeleteOne(ctx, filter)
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Set(ctx context.Context, collection, id string, doc docstore.Document, merge bool) error {
	// Para documentos con id externo (p.ej. users por user_id) usamos el id
	// como _id string directamente.
	filter := bson.M{"_id": id}

	var update bson.M
	if merge {
		update = bson.M{"$set": bson.M(doc)}
	} else {
		replace := bson.M(doc)
		opts := options.Replace().SetUpsert(true)
		_, err := s.db.Collection(collection).ReplaceOne(ctx, filter, replace, opts)
		return translate(err)
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.db.Collection(collection).UpdateOne(ctx, filter, update, opts)
	return translate(err)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// idFilter arma el filtro por _id más el match de ownership.
// Un id que no es ObjectID válido se trata como string (docs de Set).
func idFilter(id string, match []docstore.Filter) bson.M {
	filter := bson.M{}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		filter["_id"] = oid
	} else {
		filter["_id"] = id
	}
	for _, f := range match {
		filter[f.Field] = f.Value
	}
	return filter
}

// translate mapea errores del driver a los sentinels del port.
// Nunca dejamos escapar errores crudos de mongo hacia los dominios.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return docstore.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", docstore.ErrUnavailable, err)
	}
}

// normalize convierte los tipos BSON a los tipos planos del port.
func normalize(raw bson.M) docstore.Document {
	out := make(docstore.Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			out["id"] = idToString(v)
			continue
		}
		out[k] = normalizeValue(v)
	}
	return out
}

func idToString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprintf("%v", id)
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case primitive.A:
		arr := make([]any, 0, len(t))
		for _, e := range t {
			arr = append(arr, normalizeValue(e))
		}
		return arr
	case bson.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = normalizeValue(e)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case int32:
		return int64(t)
	default:
		return v
	}
}
