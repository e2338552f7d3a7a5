package dao

import (
	"context"

	"github.com/jrjohn/outreach-api/internal/domain/translator"
)

// UserDAO isolates every interaction with the user collection. Callers pass
// store-agnostic filters and patches; no store-native syntax leaks out.
type UserDAO interface {
	// Count returns the number of documents matching filter.
	// An empty filter matches all documents.
	Count(ctx context.Context, filter translator.Filter) (int64, error)

	// Find returns the documents matching filter. A nil projection uses
	// DefaultProjection, which strips the storage identifier.
	Find(ctx context.Context, filter translator.Filter, projection Projection) ([]translator.Document, error)

	// Search runs a full-text search across every indexed field.
	// It requires the text index created by MakeIndex.
	Search(ctx context.Context, text string, projection Projection) ([]translator.Document, error)

	// FindOne returns the first match, or nil, nil when nothing matches.
	FindOne(ctx context.Context, filter translator.Filter, projection Projection) (translator.Document, error)

	// WriteOne inserts a single document.
	WriteOne(ctx context.Context, doc translator.Document) error

	// WriteMany inserts documents. An empty slice is a no-op.
	WriteMany(ctx context.Context, docs []translator.Document) error

	// UpdateOne applies patch to the first matching document and returns
	// the number of matched documents. Zero matches is not an error.
	UpdateOne(ctx context.Context, filter translator.Filter, patch translator.Patch) (int64, error)

	// DeleteOne removes the first matching document and returns the
	// number removed.
	DeleteOne(ctx context.Context, filter translator.Filter) (int64, error)

	// DeleteMany removes every matching document and returns the number
	// removed.
	DeleteMany(ctx context.Context, filter translator.Filter) (int64, error)

	// ResetCollection drops all documents and indexes, then recreates the
	// text index. Calling it repeatedly leaves the same empty, indexed state.
	ResetCollection(ctx context.Context) error

	// MakeIndex creates the wildcard text index. It is a no-op when an
	// equivalent index already exists.
	MakeIndex(ctx context.Context) error

	// DropIndex removes all indexes on the collection.
	DropIndex(ctx context.Context) error

	// Ping checks connectivity with the store.
	Ping(ctx context.Context) error
}
