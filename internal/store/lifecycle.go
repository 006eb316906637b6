package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/devcamper/backend/internal/models"
)

// Every operation here touches more than one document and runs in a
// transaction, so MongoDB must run as a replica set.

func (s *MongoStore) inTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return classify(err, "start session", "", "")
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

// adjustCost shifts the course aggregate of a bootcamp by one course count
// and tuition delta and recomputes averageCost from the result, all in a
// single document update.
func adjustCost(countDelta int, tuitionDelta float64) mongo.Pipeline {
	plus := func(field string, delta any) bson.D {
		return bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, 0}}},
			delta,
		}}}
	}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "courseCount", Value: plus("courseCount", countDelta)},
			{Key: "tuitionSum", Value: plus("tuitionSum", tuitionDelta)},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "averageCost", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$gt", Value: bson.A{"$courseCount", 0}}}},
				{Key: "then", Value: bson.D{{Key: "$multiply", Value: bson.A{
					bson.D{{Key: "$ceil", Value: bson.D{{Key: "$divide", Value: bson.A{
						"$tuitionSum",
						bson.D{{Key: "$multiply", Value: bson.A{"$courseCount", 10}}},
					}}}}},
					10,
				}}}},
				{Key: "else", Value: 0},
			}}}},
		}}},
	}
}

func (s *MongoStore) applyCost(sc mongo.SessionContext, bootcampID primitive.ObjectID, countDelta int, tuitionDelta float64) error {
	res, err := s.bootcamps.UpdateByID(sc, bootcampID, adjustCost(countDelta, tuitionDelta))
	if err != nil {
		return classify(err, "recompute average cost", "bootcamp", bootcampID.Hex())
	}
	if res.MatchedCount == 0 {
		return classify(mongo.ErrNoDocuments, "recompute average cost", "bootcamp", bootcampID.Hex())
	}
	return nil
}

// CreateCourse inserts c and folds its tuition into the bootcamp average.
func (s *MongoStore) CreateCourse(ctx context.Context, c *models.Course) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	return s.inTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := s.courses.InsertOne(sc, c)
		if err != nil {
			return classify(err, "insert course", "course", c.Title)
		}
		c.ID = res.InsertedID.(primitive.ObjectID)
		return s.applyCost(sc, c.Bootcamp, 1, c.Tuition)
	})
}

// UpdateCourse writes the editable fields of c. The tuition delta is taken
// against the stored course as read inside the transaction.
func (s *MongoStore) UpdateCourse(ctx context.Context, c *models.Course) error {
	return s.inTransaction(ctx, func(sc mongo.SessionContext) error {
		var before models.Course
		err := s.courses.FindOneAndUpdate(sc, bson.D{{Key: "_id", Value: c.ID}}, bson.D{{Key: "$set", Value: bson.D{
			{Key: "title", Value: c.Title},
			{Key: "description", Value: c.Description},
			{Key: "weeks", Value: c.Weeks},
			{Key: "tuition", Value: c.Tuition},
			{Key: "minimumSkill", Value: c.MinimumSkill},
			{Key: "scholarshipsAvailable", Value: c.ScholarshipsAvailable},
		}}}, options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&before)
		if err != nil {
			return classify(err, "update course", "course", c.ID.Hex())
		}
		if delta := c.Tuition - before.Tuition; delta != 0 {
			return s.applyCost(sc, before.Bootcamp, 0, delta)
		}
		return nil
	})
}

// DeleteCourse removes c and drops its tuition from the bootcamp average.
func (s *MongoStore) DeleteCourse(ctx context.Context, c *models.Course) error {
	return s.inTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := s.courses.DeleteOne(sc, bson.D{{Key: "_id", Value: c.ID}})
		if err != nil {
			return classify(err, "delete course", "course", c.ID.Hex())
		}
		if res.DeletedCount == 0 {
			return classify(mongo.ErrNoDocuments, "delete course", "course", c.ID.Hex())
		}
		return s.applyCost(sc, c.Bootcamp, -1, -c.Tuition)
	})
}

// DeleteBootcampCascade removes a bootcamp with its courses and reviews.
// Either all of them go or none does.
func (s *MongoStore) DeleteBootcampCascade(ctx context.Context, id primitive.ObjectID) error {
	return s.inTransaction(ctx, func(sc mongo.SessionContext) error {
		byBootcamp := bson.D{{Key: "bootcamp", Value: id}}
		if _, err := s.courses.DeleteMany(sc, byBootcamp); err != nil {
			return classify(err, "delete courses", "bootcamp", id.Hex())
		}
		if _, err := s.reviews.DeleteMany(sc, byBootcamp); err != nil {
			return classify(err, "delete reviews", "bootcamp", id.Hex())
		}
		res, err := s.bootcamps.DeleteOne(sc, bson.D{{Key: "_id", Value: id}})
		if err != nil {
			return classify(err, "delete bootcamp", "bootcamp", id.Hex())
		}
		if res.DeletedCount == 0 {
			return classify(mongo.ErrNoDocuments, "delete bootcamp", "bootcamp", id.Hex())
		}
		return nil
	})
}
