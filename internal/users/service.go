// Package users is the admin surface over the user table.
package users

import (
	"context"
	"log/slog"

	"github.com/ayush/devcamper/backend/internal/auth"
	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/query"
)

type Store interface {
	ListUsers(ctx context.Context, q query.Query) ([]models.User, int64, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

func (s *Service) List(ctx context.Context, q query.Query) ([]models.User, int64, error) {
	return s.store.ListUsers(ctx, q)
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// Create adds a user with any role, admin included.
func (s *Service) Create(ctx context.Context, in models.UserInput) (*models.User, error) {
	if err := models.UserSchema.Validate(in.Values(), false); err != nil {
		return nil, err
	}

	u := &models.User{}
	in.Apply(u)
	u.Email = auth.NormalizeEmail(u.Email)
	hashed, err := auth.HashPassword(*in.Password)
	if err != nil {
		return nil, err
	}
	u.Password = hashed

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	slog.Info("user created by admin", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Update edits the supplied fields. A new password is hashed before it is
// stored.
func (s *Service) Update(ctx context.Context, id string, in models.UserInput) (*models.User, error) {
	u, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := models.UserSchema.Validate(in.Values(), true); err != nil {
		return nil, err
	}

	in.Apply(u)
	u.Email = auth.NormalizeEmail(u.Email)
	if in.Password != nil {
		if u.Password, err = auth.HashPassword(*in.Password); err != nil {
			return nil, err
		}
	}
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	slog.Info("user deleted", "user_id", id)
	return nil
}
