package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/query"
)

// ListReviews returns one page of q with each review's bootcamp summary.
func (s *MongoStore) ListReviews(ctx context.Context, q query.Query) ([]models.Review, int64, error) {
	return page[models.Review](ctx, s.reviews, q, nil, bootcampSummary)
}

// ReviewsByBootcamp returns every review of one bootcamp.
func (s *MongoStore) ReviewsByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]models.Review, error) {
	return all[models.Review](ctx, s.reviews, bson.D{{Key: "bootcamp", Value: bootcampID}})
}

// GetReview loads a review with its bootcamp summary.
func (s *MongoStore) GetReview(ctx context.Context, id string) (*models.Review, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return one[models.Review](ctx, s.reviews, "review", oid, bootcampSummary)
}

// InsertReview stores r. A second review of the same bootcamp by the same
// user fails the unique index and surfaces as a validation error.
func (s *MongoStore) InsertReview(ctx context.Context, r *models.Review) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	res, err := s.reviews.InsertOne(ctx, r)
	if err != nil {
		return classify(err, "insert review", "review", r.Bootcamp.Hex())
	}
	r.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) UpdateReview(ctx context.Context, r *models.Review) error {
	res, err := s.reviews.UpdateByID(ctx, r.ID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: r.Title},
		{Key: "text", Value: r.Text},
		{Key: "rating", Value: r.Rating},
	}}})
	if err != nil {
		return classify(err, "update review", "review", r.ID.Hex())
	}
	if res.MatchedCount == 0 {
		return classify(mongo.ErrNoDocuments, "update review", "review", r.ID.Hex())
	}
	return nil
}

func (s *MongoStore) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.reviews.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return classify(err, "delete review", "review", id.Hex())
	}
	if res.DeletedCount == 0 {
		return classify(mongo.ErrNoDocuments, "delete review", "review", id.Hex())
	}
	return nil
}
