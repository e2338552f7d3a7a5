// Package mongo provides the MongoDB-based DAO implementation.
package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jrjohn/outreach-api/internal/domain/dao"
	"github.com/jrjohn/outreach-api/internal/domain/translator"
)

// Server error codes that need special handling.
const (
	codeNamespaceNotFound    = 26
	codeIndexOptionsConflict = 85
	codeIndexKeySpecConflict = 86
)

// baseMongoDAO provides common MongoDB operations over one collection.
type baseMongoDAO struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// newBaseMongoDAO creates a new base MongoDB DAO instance.
func newBaseMongoDAO(db *mongo.Database, collectionName string) *baseMongoDAO {
	return &baseMongoDAO{
		db:         db,
		collection: db.Collection(collectionName),
	}
}

// toFilter converts a translator filter into a BSON filter. The driver
// rejects a nil filter, so an empty one is always returned instead.
func toFilter(filter translator.Filter) bson.M {
	out := bson.M{}
	for k, v := range filter {
		out[k] = v
	}
	return out
}

// toProjection converts a projection into BSON inclusion flags.
func toProjection(p dao.Projection) bson.M {
	out := bson.M{}
	for k, include := range p.OrDefault() {
		if include {
			out[k] = 1
		} else {
			out[k] = 0
		}
	}
	return out
}

// count returns the count of documents matching the filter.
func (d *baseMongoDAO) count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := d.collection.CountDocuments(ctx, filter)
	return n, wrap("count", err)
}

// findManyByFilter finds all documents matching the filter.
func (d *baseMongoDAO) findManyByFilter(ctx context.Context, op string, filter bson.M, projection dao.Projection) ([]translator.Document, error) {
	opts := options.Find().SetProjection(toProjection(projection))
	cursor, err := d.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, wrap(op, err)
	}
	return toDocuments(raw), nil
}

// findOneByFilter finds a single document matching the filter.
func (d *baseMongoDAO) findOneByFilter(ctx context.Context, filter bson.M, projection dao.Projection) (translator.Document, error) {
	opts := options.FindOne().SetProjection(toProjection(projection))

	var raw bson.M
	err := d.collection.FindOne(ctx, filter, opts).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find_one", err)
	}
	return translator.Document(raw), nil
}

// insertOne inserts a single document.
func (d *baseMongoDAO) insertOne(ctx context.Context, doc translator.Document) error {
	_, err := d.collection.InsertOne(ctx, bson.M(doc))
	return wrap("write_one", err)
}

// insertMany inserts documents in order.
func (d *baseMongoDAO) insertMany(ctx context.Context, docs []translator.Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]any, len(docs))
	for i, doc := range docs {
		batch[i] = bson.M(doc)
	}
	_, err := d.collection.InsertMany(ctx, batch)
	return wrap("write_many", err)
}

// updateOne sets patch on the first document matching the filter.
func (d *baseMongoDAO) updateOne(ctx context.Context, filter bson.M, patch translator.Patch) (int64, error) {
	if len(patch) == 0 {
		return 0, nil
	}
	update := bson.M{"$set": bson.M(patch)}
	res, err := d.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, wrap("update_one", err)
	}
	return res.MatchedCount, nil
}

// deleteOne deletes the first document matching the filter.
func (d *baseMongoDAO) deleteOne(ctx context.Context, filter bson.M) (int64, error) {
	res, err := d.collection.DeleteOne(ctx, filter)
	if err != nil {
		return 0, wrap("delete_one", err)
	}
	return res.DeletedCount, nil
}

// deleteMany deletes all documents matching the filter.
func (d *baseMongoDAO) deleteMany(ctx context.Context, filter bson.M) (int64, error) {
	res, err := d.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, wrap("delete_many", err)
	}
	return res.DeletedCount, nil
}

func toDocuments(raw []bson.M) []translator.Document {
	docs := make([]translator.Document, len(raw))
	for i, m := range raw {
		docs[i] = translator.Document(m)
	}
	return docs
}

// wrap converts a driver error into a dao.StoreError.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return dao.NewStoreError(op, classify(err), err)
}

func classify(err error) dao.StoreErrorKind {
	switch {
	case mongo.IsDuplicateKeyError(err):
		return dao.KindConstraint
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return dao.KindConnectivity
	case hasCode(err, codeIndexOptionsConflict, codeIndexKeySpecConflict):
		return dao.KindIndex
	}
	return dao.KindUnknown
}

func hasCode(err error, codes ...int32) bool {
	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	for _, c := range codes {
		if cmdErr.Code == c {
			return true
		}
	}
	return false
}
