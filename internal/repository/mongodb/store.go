package mongodb

import (
	"context"
	"errors"
	"regexp"
	"time"

	"sprockets/internal/inventory"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// store implements repository.Store[T] over a collection of D documents.
// Calls made with a mongo.SessionContext join its transaction.
type store[T any, D any] struct {
	coll     *mongo.Collection
	entity   string
	toDoc    func(T) (D, error)
	toDomain func(D) T
	meta     func(*D) *Meta
}

var byCreation = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

// now is truncated to the millisecond resolution BSON dates keep.
func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

func (s *store[T, D]) Create(ctx context.Context, item *T) error {
	doc, err := s.toDoc(*item)
	if err != nil {
		return err
	}
	m := s.meta(&doc)
	m.ID = primitive.NewObjectID()
	m.CreatedAt = now()
	m.UpdatedAt = m.CreatedAt

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	*item = s.toDomain(doc)
	return nil
}

func (s *store[T, D]) FindAll(ctx context.Context) ([]T, error) {
	return s.find(ctx, bson.M{})
}

func (s *store[T, D]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc D
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, inventory.NotFound(s.entity)
	}
	if err != nil {
		return nil, err
	}
	item := s.toDomain(doc)
	return &item, nil
}

func (s *store[T, D]) FindByName(ctx context.Context, name string) ([]T, error) {
	return s.find(ctx, bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(name), Options: "i"}})
}

func (s *store[T, D]) Update(ctx context.Context, id string, item *T) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	doc, err := s.toDoc(*item)
	if err != nil {
		return err
	}
	s.meta(&doc).UpdatedAt = now()

	set, err := setFields(doc)
	if err != nil {
		return err
	}
	var stored D
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return inventory.NotFound(s.entity)
	}
	if err != nil {
		return err
	}
	*item = s.toDomain(stored)
	return nil
}

func (s *store[T, D]) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return inventory.NotFound(s.entity)
	}
	return nil
}

func (s *store[T, D]) find(ctx context.Context, filter any) ([]T, error) {
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(byCreation))
	if err != nil {
		return nil, err
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]T, len(docs))
	for i, d := range docs {
		out[i] = s.toDomain(d)
	}
	return out, nil
}

// setFields flattens doc into a $set document, leaving out the immutable
// _id and createdAt.
func setFields(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, err
	}
	delete(set, "_id")
	delete(set, "createdAt")
	return set, nil
}
