// Package reviews serves user reviews of bootcamps.
package reviews

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/policy"
	"github.com/ayush/devcamper/backend/internal/query"
)

type Store interface {
	ListReviews(ctx context.Context, q query.Query) ([]models.Review, int64, error)
	ReviewsByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]models.Review, error)
	GetReview(ctx context.Context, id string) (*models.Review, error)
	GetBootcamp(ctx context.Context, id string) (*models.Bootcamp, error)
	InsertReview(ctx context.Context, r *models.Review) error
	UpdateReview(ctx context.Context, r *models.Review) error
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
}

type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

func (s *Service) List(ctx context.Context, q query.Query) ([]models.Review, int64, error) {
	return s.store.ListReviews(ctx, q)
}

func (s *Service) ListByBootcamp(ctx context.Context, bootcampID string) ([]models.Review, error) {
	b, err := s.store.GetBootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	return s.store.ReviewsByBootcamp(ctx, b.ID)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Review, error) {
	return s.store.GetReview(ctx, id)
}

// Create records the caller's review of a bootcamp. The store rejects a
// second review by the same user.
func (s *Service) Create(ctx context.Context, caller policy.Principal, bootcampID string, in models.ReviewInput) (*models.Review, error) {
	b, err := s.store.GetBootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if err := models.ReviewSchema.Validate(in.Values(), false); err != nil {
		return nil, err
	}

	r := &models.Review{Bootcamp: b.ID, User: caller.ID}
	in.Apply(r)
	if err := s.store.InsertReview(ctx, r); err != nil {
		return nil, err
	}

	slog.Info("review created", "review_id", r.ID.Hex(), "bootcamp_id", b.ID.Hex(), "user_id", caller.ID)
	return r, nil
}

func (s *Service) Update(ctx context.Context, caller policy.Principal, id string, in models.ReviewInput) (*models.Review, error) {
	r, err := s.owned(ctx, caller, id, "update")
	if err != nil {
		return nil, err
	}
	if err := models.ReviewSchema.Validate(in.Values(), true); err != nil {
		return nil, err
	}
	in.Apply(r)
	if err := s.store.UpdateReview(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, caller policy.Principal, id string) error {
	r, err := s.owned(ctx, caller, id, "delete")
	if err != nil {
		return err
	}
	return s.store.DeleteReview(ctx, r.ID)
}

func (s *Service) owned(ctx context.Context, caller policy.Principal, id, action string) (*models.Review, error) {
	r, err := s.store.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanModify(r.User, caller, action, "review", id); err != nil {
		return nil, err
	}
	return r, nil
}
