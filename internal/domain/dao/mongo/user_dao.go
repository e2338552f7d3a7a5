package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jrjohn/outreach-api/internal/domain/dao"
	"github.com/jrjohn/outreach-api/internal/domain/translator"
)

// TextIndexName names the wildcard full-text index.
const TextIndexName = "all_fields_text"

// userDAO implements dao.UserDAO using MongoDB.
type userDAO struct {
	*baseMongoDAO
}

var _ dao.UserDAO = (*userDAO)(nil)

// NewUserDAO creates a new MongoDB-based UserDAO over collectionName.
func NewUserDAO(db *mongo.Database, collectionName string) dao.UserDAO {
	return &userDAO{
		baseMongoDAO: newBaseMongoDAO(db, collectionName),
	}
}

// Count returns the number of users matching filter.
func (d *userDAO) Count(ctx context.Context, filter translator.Filter) (int64, error) {
	return d.count(ctx, toFilter(filter))
}

// Find retrieves users matching filter.
func (d *userDAO) Find(ctx context.Context, filter translator.Filter, projection dao.Projection) ([]translator.Document, error) {
	return d.findManyByFilter(ctx, "find", toFilter(filter), projection)
}

// Search runs a $text query against the wildcard text index.
func (d *userDAO) Search(ctx context.Context, text string, projection dao.Projection) ([]translator.Document, error) {
	filter := bson.M{"$text": bson.M{"$search": text}}
	return d.findManyByFilter(ctx, "search", filter, projection)
}

// FindOne retrieves the first user matching filter.
func (d *userDAO) FindOne(ctx context.Context, filter translator.Filter, projection dao.Projection) (translator.Document, error) {
	return d.findOneByFilter(ctx, toFilter(filter), projection)
}

// WriteOne inserts a user document.
func (d *userDAO) WriteOne(ctx context.Context, doc translator.Document) error {
	return d.insertOne(ctx, doc)
}

// WriteMany inserts user documents.
func (d *userDAO) WriteMany(ctx context.Context, docs []translator.Document) error {
	return d.insertMany(ctx, docs)
}

// UpdateOne sets patch on the first user matching filter.
func (d *userDAO) UpdateOne(ctx context.Context, filter translator.Filter, patch translator.Patch) (int64, error) {
	return d.updateOne(ctx, toFilter(filter), patch)
}

// DeleteOne removes the first user matching filter.
func (d *userDAO) DeleteOne(ctx context.Context, filter translator.Filter) (int64, error) {
	return d.deleteOne(ctx, toFilter(filter))
}

// DeleteMany removes every user matching filter.
func (d *userDAO) DeleteMany(ctx context.Context, filter translator.Filter) (int64, error) {
	return d.deleteMany(ctx, toFilter(filter))
}

// ResetCollection drops the collection with its indexes and recreates the
// text index. Dropping a missing collection succeeds.
func (d *userDAO) ResetCollection(ctx context.Context) error {
	if err := d.collection.Drop(ctx); err != nil && !hasCode(err, codeNamespaceNotFound) {
		return wrap("reset_collection", err)
	}
	return d.MakeIndex(ctx)
}

// MakeIndex creates a text index spanning every field of every document.
func (d *userDAO) MakeIndex(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "$**", Value: "text"}},
		Options: options.Index().SetName(TextIndexName),
	}
	_, err := d.collection.Indexes().CreateOne(ctx, model)
	if !hasCode(err, codeIndexOptionsConflict, codeIndexKeySpecConflict) {
		return wrap("make_index", err)
	}

	// A collection holds at most one text index. Only a wildcard one under
	// another name serves search.
	wildcard, listErr := d.hasWildcardTextIndex(ctx)
	if listErr != nil {
		return wrap("make_index", listErr)
	}
	if wildcard {
		return nil
	}
	return dao.NewStoreError("make_index", dao.KindIndex, fmt.Errorf("a text index not covering all fields exists: %w", err))
}

func (d *userDAO) hasWildcardTextIndex(ctx context.Context) (bool, error) {
	cursor, err := d.collection.Indexes().List(ctx)
	if err != nil {
		return false, err
	}
	var specs []bson.M
	if err := cursor.All(ctx, &specs); err != nil {
		return false, err
	}
	for _, spec := range specs {
		if isWildcardTextIndex(spec) {
			return true, nil
		}
	}
	return false, nil
}

// isWildcardTextIndex reports whether a listIndexes entry is a text index
// weighting "$**"
func isWildcardTextIndex(spec bson.M) bool {
	key, ok := spec["key"].(bson.M)
	if !ok || key["_fts"] != "text" {
		return false
	}
	weights, ok := spec["weights"].(bson.M)
	if !ok {
		return false
	}
	_, ok = weights["$**"]
	return ok
}

// DropIndex removes all indexes on the collection. A missing collection has
// no indexes to drop.
func (d *userDAO) DropIndex(ctx context.Context) error {
	_, err := d.collection.Indexes().DropAll(ctx)
	if hasCode(err, codeNamespaceNotFound) {
		return nil
	}
	return wrap("drop_index", err)
}

// Ping checks the connection to the MongoDB deployment.
func (d *userDAO) Ping(ctx context.Context) error {
	return wrap("ping", d.db.Client().Ping(ctx, nil))
}
