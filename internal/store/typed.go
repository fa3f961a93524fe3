package store

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Typed wraps an untyped Collection with the entity type it holds. Absence
// on single-document reads surfaces as a nil pointer, not an error; every
// non-nil error is a backend failure.
type Typed[T any] struct {
	coll Collection
}

// NewTyped wraps coll.
func NewTyped[T any](coll Collection) Typed[T] {
	return Typed[T]{coll: coll}
}

func (t Typed[T]) InsertOne(ctx context.Context, doc T) (primitive.ObjectID, error) {
	return t.coll.InsertOne(ctx, doc)
}

func (t Typed[T]) FindOne(ctx context.Context, q Query) (*T, error) {
	var out T
	err := t.coll.FindOne(ctx, q, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t Typed[T]) Find(ctx context.Context, q Query) ([]T, error) {
	var out []T
	if err := t.coll.Find(ctx, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t Typed[T]) FindRandom(ctx context.Context, q Query, count int, allowDuplicates bool) ([]T, error) {
	var out []T
	if err := t.coll.FindRandom(ctx, q, count, allowDuplicates, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t Typed[T]) UpdateOne(ctx context.Context, q Query, u Update) error {
	return t.coll.UpdateOne(ctx, q, u)
}

// FindOneAndUpdate applies u and returns the post-update document. Unlike
// FindOne, a missing document is an error here: callers use this for
// mutations that require the target to exist.
func (t Typed[T]) FindOneAndUpdate(ctx context.Context, q Query, u Update) (*T, error) {
	var out T
	if err := t.coll.FindOneAndUpdate(ctx, q, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (t Typed[T]) ReplaceOne(ctx context.Context, q Query, doc T) error {
	return t.coll.ReplaceOne(ctx, q, doc)
}
