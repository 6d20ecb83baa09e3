package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no document matches the given id
var ErrNotFound = errors.New("document not found")

// Document is implemented by pointers to stored record types
type Document[T any] interface {
	*T
	Stamp(now time.Time)
}

// Repository stores one record type in one collection
type Repository[T any, PT Document[T]] struct {
	coll    *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

// NewRepository binds a repository to db.collection. Every operation is
// bounded by timeout.
func NewRepository[T any, PT Document[T]](db *mongo.Database, collection string, timeout time.Duration) *Repository[T, PT] {
	return &Repository[T, PT]{
		coll:    db.Collection(collection),
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// List returns every document in natural order
func (r *Repository[T, PT]) List(ctx context.Context) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", r.coll.Name(), err)
	}

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.coll.Name(), err)
	}
	return out, nil
}

// Get loads one document by hex id
func (r *Repository[T, PT]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return doc, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("find %s %s: %w", r.coll.Name(), id, err)
	}
	return doc, nil
}

// Insert stores a single document and returns it with id and timestamps set
func (r *Repository[T, PT]) Insert(ctx context.Context, doc T) (T, error) {
	PT(&doc).Stamp(r.now())

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return doc, fmt.Errorf("insert %s: %w", r.coll.Name(), err)
	}
	return doc, nil
}

// InsertMany stores docs with one ordered bulk write. The returned slice
// holds the stored documents in input order.
func (r *Repository[T, PT]) InsertMany(ctx context.Context, docs []T) ([]T, error) {
	if len(docs) == 0 {
		return []T{}, nil
	}

	now := r.now()
	stamped := make([]T, len(docs))
	batch := make([]interface{}, len(docs))
	for i := range docs {
		stamped[i] = docs[i]
		PT(&stamped[i]).Stamp(now)
		batch[i] = stamped[i]
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.InsertMany(ctx, batch, options.InsertMany().SetOrdered(true)); err != nil {
		return nil, fmt.Errorf("insert many %s: %w", r.coll.Name(), err)
	}
	return stamped, nil
}

// Update sets the given fields, refreshes updatedAt and returns the
// document after the change.
func (r *Repository[T, PT]) Update(ctx context.Context, id string, fields map[string]any) (T, error) {
	var doc T
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return doc, ErrNotFound
	}

	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	set["updatedAt"] = r.now()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("update %s %s: %w", r.coll.Name(), id, err)
	}
	return doc, nil
}

// Delete removes one document by hex id
func (r *Repository[T, PT]) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", r.coll.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
