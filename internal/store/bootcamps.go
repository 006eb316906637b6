package store

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ayush/devcamper/backend/internal/apperr"
	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/query"
)

// ListBootcamps returns one page of q, each bootcamp with its courses.
func (s *MongoStore) ListBootcamps(ctx context.Context, q query.Query) ([]models.Bootcamp, int64, error) {
	return page[models.Bootcamp](ctx, s.bootcamps, q, nil, coursesOfBootcamp)
}

// BootcampsWithin returns every bootcamp located within radius radians of
// (lng, lat).
func (s *MongoStore) BootcampsWithin(ctx context.Context, lng, lat, radius float64) ([]models.Bootcamp, error) {
	return all[models.Bootcamp](ctx, s.bootcamps, bson.D{query.GeoWithin("location", lng, lat, radius)})
}

func (s *MongoStore) GetBootcamp(ctx context.Context, id string) (*models.Bootcamp, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return one[models.Bootcamp](ctx, s.bootcamps, "bootcamp", oid)
}

// CountBootcampsByUser counts the bootcamps owned by userID.
func (s *MongoStore) CountBootcampsByUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.bootcamps.CountDocuments(ctx, bson.D{{Key: "user", Value: userID}})
	return n, classify(err, "count bootcamps", "bootcamp", userID)
}

// InsertBootcamp stores b and fills its id. A second bootcamp for the same
// Publisher is rejected.
func (s *MongoStore) InsertBootcamp(ctx context.Context, b *models.Bootcamp) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if b.Photo == "" {
		b.Photo = models.DefaultPhoto
	}
	if b.Careers == nil {
		b.Careers = []string{}
	}
	res, err := s.bootcamps.InsertOne(ctx, b)
	if err != nil {
		if b.Publisher != "" && mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), publisherIndex) {
			return apperr.Validation("The user with ID %s has already published a bootcamp", b.Publisher)
		}
		return classify(err, "insert bootcamp", "bootcamp", b.Name)
	}
	b.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// UpdateBootcamp writes the client-editable fields of b. The course
// aggregate is owned by the course lifecycle and left untouched.
func (s *MongoStore) UpdateBootcamp(ctx context.Context, b *models.Bootcamp) error {
	set := bson.D{
		{Key: "name", Value: b.Name},
		{Key: "slug", Value: b.Slug},
		{Key: "description", Value: b.Description},
		{Key: "website", Value: b.Website},
		{Key: "phone", Value: b.Phone},
		{Key: "email", Value: b.Email},
		{Key: "location", Value: b.Location},
		{Key: "careers", Value: b.Careers},
		{Key: "averageRating", Value: b.AverageRating},
		{Key: "housing", Value: b.Housing},
		{Key: "jobAssistance", Value: b.JobAssistance},
		{Key: "jobGuarantee", Value: b.JobGuarantee},
		{Key: "acceptGi", Value: b.AcceptGi},
	}
	res, err := s.bootcamps.UpdateByID(ctx, b.ID, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return classify(err, "update bootcamp", "bootcamp", b.ID.Hex())
	}
	if res.MatchedCount == 0 {
		return classify(mongo.ErrNoDocuments, "update bootcamp", "bootcamp", b.ID.Hex())
	}
	return nil
}

// SetBootcampPhoto records the stored photo name of bootcamp id.
func (s *MongoStore) SetBootcampPhoto(ctx context.Context, id primitive.ObjectID, photo string) error {
	res, err := s.bootcamps.UpdateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{{Key: "photo", Value: photo}}}})
	if err != nil {
		return classify(err, "set photo", "bootcamp", id.Hex())
	}
	if res.MatchedCount == 0 {
		return classify(mongo.ErrNoDocuments, "set photo", "bootcamp", id.Hex())
	}
	return nil
}
