package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

// MongoDatabase backs Database with a MongoDB deployment. The driver pools
// connections internally, so a single value is shared across all workers.
type MongoDatabase struct {
	client *mongo.Client
	db     *mongo.Database
}

// DialMongo connects to the deployment at uri and pings the primary before
// returning.
func DialMongo(ctx context.Context, uri, database string) (*MongoDatabase, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "pinging mongodb")
	}

	return &MongoDatabase{client: client, db: client.Database(database)}, nil
}

func (m *MongoDatabase) Collection(name string) Collection {
	return &mongoCollection{coll: m.db.Collection(name)}
}

func (m *MongoDatabase) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc interface{}) (primitive.ObjectID, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(err, "inserting into %s", c.coll.Name())
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

func (c *mongoCollection) FindOne(ctx context.Context, q Query, out interface{}) error {
	err := c.coll.FindOne(ctx, q.Filter()).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return errors.Wrapf(err, "finding in %s", c.coll.Name())
}

func (c *mongoCollection) Find(ctx context.Context, q Query, out interface{}) error {
	cursor, err := c.coll.Find(ctx, q.Filter())
	if err != nil {
		return errors.Wrapf(err, "querying %s", c.coll.Name())
	}
	return errors.Wrapf(cursor.All(ctx, out), "decoding %s results", c.coll.Name())
}

func (c *mongoCollection) FindRandom(ctx context.Context, q Query, count int, allowDuplicates bool, out interface{}) error {
	if count <= 0 {
		return errors.Errorf("invalid sample size %d", count)
	}

	sampleStage := func(size int) mongo.Pipeline {
		return mongo.Pipeline{
			{{Key: "$match", Value: q.Filter()}},
			{{Key: "$sample", Value: bson.D{{Key: "size", Value: size}}}},
		}
	}

	if !allowDuplicates {
		// $sample never repeats a document within one draw.
		cursor, err := c.coll.Aggregate(ctx, sampleStage(count))
		if err != nil {
			return errors.Wrapf(err, "sampling %s", c.coll.Name())
		}
		return errors.Wrapf(cursor.All(ctx, out), "decoding %s sample", c.coll.Name())
	}

	// With replacement: one single-document draw per slot.
	var docs []bson.Raw
	for i := 0; i < count; i++ {
		cursor, err := c.coll.Aggregate(ctx, sampleStage(1))
		if err != nil {
			return errors.Wrapf(err, "sampling %s", c.coll.Name())
		}
		var batch []bson.Raw
		if err := cursor.All(ctx, &batch); err != nil {
			return errors.Wrapf(err, "decoding %s sample", c.coll.Name())
		}
		docs = append(docs, batch...)
	}
	return errors.Wrap(decodeDocs(docs, out), "decoding sample documents")
}

func (c *mongoCollection) UpdateOne(ctx context.Context, q Query, u Update) error {
	if u.Empty() {
		return nil
	}
	_, err := c.coll.UpdateOne(ctx, q.Filter(), u.Document())
	return errors.Wrapf(err, "updating %s", c.coll.Name())
}

func (c *mongoCollection) FindOneAndUpdate(ctx context.Context, q Query, u Update, out interface{}) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := c.coll.FindOneAndUpdate(ctx, q.Filter(), u.Document(), opts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return errors.Wrapf(err, "updating %s", c.coll.Name())
}

func (c *mongoCollection) ReplaceOne(ctx context.Context, q Query, doc interface{}) error {
	_, err := c.coll.ReplaceOne(ctx, q.Filter(), doc)
	return errors.Wrapf(err, "replacing in %s", c.coll.Name())
}
