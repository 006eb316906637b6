package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/query"
)

// ListCourses returns one page of q with each course's bootcamp summary.
func (s *MongoStore) ListCourses(ctx context.Context, q query.Query) ([]models.Course, int64, error) {
	return page[models.Course](ctx, s.courses, q, nil, bootcampSummary)
}

// CoursesByBootcamp returns every course of one bootcamp.
func (s *MongoStore) CoursesByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]models.Course, error) {
	return all[models.Course](ctx, s.courses, bson.D{{Key: "bootcamp", Value: bootcampID}})
}

// GetCourse loads a course with its bootcamp summary.
func (s *MongoStore) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return one[models.Course](ctx, s.courses, "course", oid, bootcampSummary)
}
