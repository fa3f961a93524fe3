// Package store is the document-store layer. It exposes composable queries
// and updates, an untyped Collection interface, and two backends: MongoDB
// for production and an in-memory engine for tests and local runs.
package store

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned by FindOne and FindOneAndUpdate when no document
// matches. Callers that treat absence as a normal outcome (the typed layer)
// translate it; everything else is a backend error.
var ErrNotFound = errors.New("document not found")

// Database hands out collections by name.
type Database interface {
	Collection(name string) Collection
	Close(ctx context.Context) error
}

// Collection is a handle to one document collection. Results decode into
// out, which must be a pointer (a pointer to a slice for multi-document
// reads).
type Collection interface {
	InsertOne(ctx context.Context, doc interface{}) (primitive.ObjectID, error)
	FindOne(ctx context.Context, q Query, out interface{}) error
	Find(ctx context.Context, q Query, out interface{}) error
	// FindRandom draws count documents matching q. With allowDuplicates the
	// draw is with replacement; otherwise it returns at most count distinct
	// documents.
	FindRandom(ctx context.Context, q Query, count int, allowDuplicates bool, out interface{}) error
	UpdateOne(ctx context.Context, q Query, u Update) error
	// FindOneAndUpdate applies u to the first match and decodes the
	// post-update document into out.
	FindOneAndUpdate(ctx context.Context, q Query, u Update, out interface{}) error
	ReplaceOne(ctx context.Context, q Query, doc interface{}) error
}
