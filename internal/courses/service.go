// Package courses serves the courses a bootcamp offers. Every write keeps
// the parent bootcamp's averageCost in step.
package courses

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/policy"
	"github.com/ayush/devcamper/backend/internal/query"
)

// Store defines the course persistence the service needs.
type Store interface {
	ListCourses(ctx context.Context, q query.Query) ([]models.Course, int64, error)
	CoursesByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]models.Course, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	GetBootcamp(ctx context.Context, id string) (*models.Bootcamp, error)
	CreateCourse(ctx context.Context, c *models.Course) error
	UpdateCourse(ctx context.Context, c *models.Course) error
	DeleteCourse(ctx context.Context, c *models.Course) error
}

type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

func (s *Service) List(ctx context.Context, q query.Query) ([]models.Course, int64, error) {
	return s.store.ListCourses(ctx, q)
}

// ListByBootcamp returns every course of an existing bootcamp.
func (s *Service) ListByBootcamp(ctx context.Context, bootcampID string) ([]models.Course, error) {
	b, err := s.store.GetBootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	return s.store.CoursesByBootcamp(ctx, b.ID)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Course, error) {
	return s.store.GetCourse(ctx, id)
}

// Create adds a course to a bootcamp the caller owns.
func (s *Service) Create(ctx context.Context, caller policy.Principal, bootcampID string, in models.CourseInput) (*models.Course, error) {
	b, err := s.store.GetBootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanModify(b.User, caller, "add a course to", "bootcamp", bootcampID); err != nil {
		return nil, err
	}
	if err := models.CourseSchema.Validate(in.Values(), false); err != nil {
		return nil, err
	}

	c := &models.Course{Bootcamp: b.ID, User: caller.ID}
	in.Apply(c)
	if err := s.store.CreateCourse(ctx, c); err != nil {
		return nil, err
	}

	slog.Info("course created", "course_id", c.ID.Hex(), "bootcamp_id", b.ID.Hex())
	return c, nil
}

func (s *Service) Update(ctx context.Context, caller policy.Principal, id string, in models.CourseInput) (*models.Course, error) {
	c, err := s.owned(ctx, caller, id, "update")
	if err != nil {
		return nil, err
	}
	if err := models.CourseSchema.Validate(in.Values(), true); err != nil {
		return nil, err
	}

	in.Apply(c)
	if err := s.store.UpdateCourse(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, caller policy.Principal, id string) error {
	c, err := s.owned(ctx, caller, id, "delete")
	if err != nil {
		return err
	}
	if err := s.store.DeleteCourse(ctx, c); err != nil {
		return err
	}
	slog.Info("course deleted", "course_id", c.ID.Hex(), "bootcamp_id", c.Bootcamp.Hex())
	return nil
}

func (s *Service) owned(ctx context.Context, caller policy.Principal, id, action string) (*models.Course, error) {
	c, err := s.store.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanModify(c.User, caller, action, "course", id); err != nil {
		return nil, err
	}
	return c, nil
}
