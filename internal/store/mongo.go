package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/devcamper/backend/internal/query"
)

// publisherIndex holds non-admin owners to a single bootcamp.
const publisherIndex = "one_bootcamp_per_publisher"

// MongoStore handles bootcamp, course and review documents in MongoDB.
type MongoStore struct {
	client    *mongo.Client
	bootcamps *mongo.Collection
	courses   *mongo.Collection
	reviews   *mongo.Collection
}

func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:    client,
		bootcamps: db.Collection("bootcamps"),
		courses:   db.Collection("courses"),
		reviews:   db.Collection("reviews"),
	}
}

// EnsureIndexes creates the geo and uniqueness indexes the documents rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.bootcamps.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{
			Keys:    bson.D{{Key: "publisher", Value: 1}},
			Options: options.Index().SetName(publisherIndex).SetUnique(true).SetSparse(true),
		},
	}); err != nil {
		return fmt.Errorf("bootcamp indexes: %w", err)
	}
	if _, err := s.courses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "bootcamp", Value: 1}},
	}); err != nil {
		return fmt.Errorf("course indexes: %w", err)
	}
	if _, err := s.reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "bootcamp", Value: 1}, {Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("review indexes: %w", err)
	}
	return nil
}

// Lookups shared by the document reads.
var (
	coursesOfBootcamp = query.Lookup{
		From: "courses", LocalField: "_id", ForeignField: "bootcamp", As: "courses",
	}
	bootcampSummary = query.Lookup{
		From: "bootcamps", LocalField: "bootcamp", ForeignField: "_id", As: "bootcampInfo",
		Fields: []string{"name", "description"}, One: true,
	}
)

// page runs one page of q against col and counts every match.
func page[T any](ctx context.Context, col *mongo.Collection, q query.Query, scope bson.D, lookups ...query.Lookup) ([]T, int64, error) {
	total, err := col.CountDocuments(ctx, q.MongoFilter(scope...))
	if err != nil {
		return nil, 0, classify(err, "count "+col.Name(), col.Name(), "")
	}
	cur, err := col.Aggregate(ctx, q.MongoPipeline(scope, lookups...))
	if err != nil {
		return nil, 0, classify(err, "list "+col.Name(), col.Name(), "")
	}
	defer cur.Close(ctx)

	items := []T{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, classify(err, "decode "+col.Name(), col.Name(), "")
	}
	return items, total, nil
}

// one loads a single document by id with optional lookups.
func one[T any](ctx context.Context, col *mongo.Collection, resource string, id primitive.ObjectID, lookups ...query.Lookup) (*T, error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}}}
	for _, l := range lookups {
		pipeline = append(pipeline, l.Stages()...)
	}
	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, classify(err, "get "+resource, resource, id.Hex())
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, classify(err, "get "+resource, resource, id.Hex())
		}
		return nil, classify(mongo.ErrNoDocuments, "get "+resource, resource, id.Hex())
	}
	var doc T
	if err := cur.Decode(&doc); err != nil {
		return nil, classify(err, "decode "+resource, resource, id.Hex())
	}
	return &doc, nil
}

// all returns every document of col matching filter, oldest first.
func all[T any](ctx context.Context, col *mongo.Collection, filter bson.D) ([]T, error) {
	cur, err := col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, classify(err, "find "+col.Name(), col.Name(), "")
	}
	defer cur.Close(ctx)

	items := []T{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, classify(err, "decode "+col.Name(), col.Name(), "")
	}
	return items, nil
}
