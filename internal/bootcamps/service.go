// Package bootcamps serves bootcamp documents: CRUD, radius search and
// photo uploads.
package bootcamps

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/devcamper/backend/internal/apperr"
	"github.com/ayush/devcamper/backend/internal/geocoder"
	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/policy"
	"github.com/ayush/devcamper/backend/internal/query"
	"github.com/ayush/devcamper/backend/internal/store"
)

// Earth radius used to turn a distance into radians.
const (
	earthRadiusMiles = 3963.2
	earthRadiusKm    = 6378.1
)

// Store defines the bootcamp persistence the service needs.
type Store interface {
	ListBootcamps(ctx context.Context, q query.Query) ([]models.Bootcamp, int64, error)
	BootcampsWithin(ctx context.Context, lng, lat, radius float64) ([]models.Bootcamp, error)
	GetBootcamp(ctx context.Context, id string) (*models.Bootcamp, error)
	CountBootcampsByUser(ctx context.Context, userID string) (int64, error)
	InsertBootcamp(ctx context.Context, b *models.Bootcamp) error
	UpdateBootcamp(ctx context.Context, b *models.Bootcamp) error
	SetBootcampPhoto(ctx context.Context, id primitive.ObjectID, photo string) error
	DeleteBootcampCascade(ctx context.Context, id primitive.ObjectID) error
}

// Geocoder resolves addresses and zipcodes.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocoder.Result, error)
}

// PhotoStore keeps uploaded photos.
type PhotoStore interface {
	PutPhoto(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	OpenPhoto(ctx context.Context, name string) (*store.Photo, error)
	RemovePhoto(ctx context.Context, name string) error
}

// Upload is a photo received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service struct {
	store    Store
	geo      Geocoder
	photos   PhotoStore
	maxPhoto int64
}

func NewService(s Store, geo Geocoder, photos PhotoStore, maxPhoto int64) *Service {
	return &Service{store: s, geo: geo, photos: photos, maxPhoto: maxPhoto}
}

func (s *Service) List(ctx context.Context, q query.Query) ([]models.Bootcamp, int64, error) {
	return s.store.ListBootcamps(ctx, q)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Bootcamp, error) {
	return s.store.GetBootcamp(ctx, id)
}

// Create publishes a bootcamp owned by caller. Non-admins may own one.
func (s *Service) Create(ctx context.Context, caller policy.Principal, in models.BootcampInput) (*models.Bootcamp, error) {
	if !caller.IsAdmin() {
		n, err := s.store.CountBootcampsByUser(ctx, caller.ID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, apperr.Validation("The user with ID %s has already published a bootcamp", caller.ID)
		}
	}
	if err := models.BootcampSchema.Validate(in.Values(), false); err != nil {
		return nil, err
	}

	loc, err := s.geo.Geocode(ctx, *in.Address)
	if err != nil {
		return nil, err
	}

	b := &models.Bootcamp{User: caller.ID, Photo: models.DefaultPhoto}
	if !caller.IsAdmin() {
		b.Publisher = caller.ID
	}
	in.Apply(b)
	b.Location = loc.Location()
	if err := s.store.InsertBootcamp(ctx, b); err != nil {
		return nil, err
	}

	slog.Info("bootcamp created", "bootcamp_id", b.ID.Hex(), "user_id", caller.ID)
	return b, nil
}

// Update edits a bootcamp owned by caller. A new address is geocoded again.
func (s *Service) Update(ctx context.Context, caller policy.Principal, id string, in models.BootcampInput) (*models.Bootcamp, error) {
	b, err := s.owned(ctx, caller, id, "update")
	if err != nil {
		return nil, err
	}
	if err := models.BootcampSchema.Validate(in.Values(), true); err != nil {
		return nil, err
	}

	in.Apply(b)
	if in.Address != nil {
		loc, err := s.geo.Geocode(ctx, *in.Address)
		if err != nil {
			return nil, err
		}
		b.Location = loc.Location()
	}
	if err := s.store.UpdateBootcamp(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes a bootcamp with its courses and reviews.
func (s *Service) Delete(ctx context.Context, caller policy.Principal, id string) error {
	b, err := s.owned(ctx, caller, id, "delete")
	if err != nil {
		return err
	}
	if err := s.store.DeleteBootcampCascade(ctx, b.ID); err != nil {
		return err
	}

	if b.Photo != "" && b.Photo != models.DefaultPhoto {
		if err := s.photos.RemovePhoto(ctx, b.Photo); err != nil {
			slog.Warn("remove bootcamp photo", "bootcamp_id", b.ID.Hex(), "error", err)
		}
	}
	slog.Info("bootcamp deleted", "bootcamp_id", b.ID.Hex(), "user_id", caller.ID)
	return nil
}

// WithinRadius finds bootcamps within distance of zipcode. unit is "mi"
// (the default) or "km".
func (s *Service) WithinRadius(ctx context.Context, zipcode, distance, unit string) ([]models.Bootcamp, error) {
	radius, err := Radians(distance, unit)
	if err != nil {
		return nil, err
	}
	loc, err := s.geo.Geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	return s.store.BootcampsWithin(ctx, loc.Lng, loc.Lat, radius)
}

// Radians converts a distance on the earth's surface into radians.
func Radians(distance, unit string) (float64, error) {
	d, err := strconv.ParseFloat(distance, 64)
	if err != nil || d < 0 {
		return 0, apperr.Validation("Invalid distance %q", distance)
	}
	switch strings.ToLower(unit) {
	case "", "mi":
		return d / earthRadiusMiles, nil
	case "km":
		return d / earthRadiusKm, nil
	}
	return 0, apperr.Validation("Invalid unit %q, use mi or km", unit)
}

// UploadPhoto stores an image for a bootcamp owned by caller and returns
// the photo name.
func (s *Service) UploadPhoto(ctx context.Context, caller policy.Principal, id string, up Upload) (string, error) {
	b, err := s.owned(ctx, caller, id, "update")
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(up.ContentType, "image/") {
		return "", apperr.Validation("Please upload an image file")
	}
	if up.Size > s.maxPhoto {
		return "", apperr.Validation("Please upload an image less than %d", s.maxPhoto)
	}

	name := fmt.Sprintf("photo_%s%s", b.ID.Hex(), strings.ToLower(filepath.Ext(up.Filename)))
	if err := s.photos.PutPhoto(ctx, name, up.Body, up.Size, up.ContentType); err != nil {
		return "", apperr.Upstream(err, "Problem with file upload")
	}
	if err := s.store.SetBootcampPhoto(ctx, b.ID, name); err != nil {
		return "", err
	}
	return name, nil
}

// Photo opens a stored photo by name.
func (s *Service) Photo(ctx context.Context, name string) (*store.Photo, error) {
	if name != filepath.Base(name) || !strings.HasPrefix(name, "photo_") {
		return nil, apperr.NotFound("No photo named %s", name)
	}
	return s.photos.OpenPhoto(ctx, name)
}

func (s *Service) owned(ctx context.Context, caller policy.Principal, id, action string) (*models.Bootcamp, error) {
	b, err := s.store.GetBootcamp(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanModify(b.User, caller, action, "bootcamp", id); err != nil {
		return nil, err
	}
	return b, nil
}
