package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/devcamper/backend/internal/apperr"
	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/query"
	"github.com/ayush/devcamper/backend/internal/web"
)

type mockStore struct {
	ListFn   func(ctx context.Context, q query.Query) ([]models.User, int64, error)
	GetFn    func(ctx context.Context, id string) (*models.User, error)
	CreateFn func(ctx context.Context, u *models.User) error
	UpdateFn func(ctx context.Context, u *models.User) error
	DeleteFn func(ctx context.Context, id string) error
}

func (m *mockStore) ListUsers(ctx context.Context, q query.Query) ([]models.User, int64, error) {
	return m.ListFn(ctx, q)
}
func (m *mockStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.GetFn(ctx, id)
}
func (m *mockStore) CreateUser(ctx context.Context, u *models.User) error { return m.CreateFn(ctx, u) }
func (m *mockStore) UpdateUser(ctx context.Context, u *models.User) error { return m.UpdateFn(ctx, u) }
func (m *mockStore) DeleteUser(ctx context.Context, id string) error      { return m.DeleteFn(ctx, id) }

func ptr[T any](v T) *T { return &v }

func TestCreateHashesPassword(t *testing.T) {
	var stored *models.User
	st := &mockStore{CreateFn: func(_ context.Context, u *models.User) error {
		u.ID = "7b0f6c9e-1f5e-4c36-9a55-2f4b1f0c8d11"
		stored = u
		return nil
	}}
	u, err := NewService(st).Create(context.Background(), models.UserInput{
		Name:     ptr("Site Admin"),
		Email:    ptr(" Admin@Example.com "),
		Role:     ptr(models.RoleAdmin),
		Password: ptr("secret123"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if stored != u || u.Email != "admin@example.com" || u.Role != models.RoleAdmin {
		t.Errorf("user = %+v", u)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")) != nil {
		t.Error("stored password is not a bcrypt hash of the input")
	}
}

func TestCreateValidates(t *testing.T) {
	_, err := NewService(&mockStore{}).Create(context.Background(), models.UserInput{
		Name:     ptr("Jane"),
		Email:    ptr("not-an-email"),
		Password: ptr("123"),
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Create() error = %v", err)
	}
	for _, want := range []string{"Please add a valid email", "Password must be at least 6 characters"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q lacks %q", err, want)
		}
	}
}

func TestUpdate(t *testing.T) {
	existing := models.User{ID: "u1", Name: "Jane", Email: "jane@example.com", Role: models.RoleUser, Password: "old-hash"}
	var stored models.User
	st := &mockStore{
		GetFn:    func(context.Context, string) (*models.User, error) { cp := existing; return &cp, nil },
		UpdateFn: func(_ context.Context, u *models.User) error { stored = *u; return nil },
	}
	svc := NewService(st)

	if _, err := svc.Update(context.Background(), "u1", models.UserInput{Role: ptr(models.RolePublisher)}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if stored.Role != models.RolePublisher || stored.Password != "old-hash" || stored.Name != "Jane" {
		t.Errorf("stored = %+v", stored)
	}

	if _, err := svc.Update(context.Background(), "u1", models.UserInput{Password: ptr("newpass1")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("newpass1")) != nil {
		t.Error("new password was not hashed")
	}

	if _, err := svc.Update(context.Background(), "u1", models.UserInput{Role: ptr("root")}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("bad role error = %v", err)
	}
}

func TestListHandler(t *testing.T) {
	var got query.Query
	st := &mockStore{ListFn: func(_ context.Context, q query.Query) ([]models.User, int64, error) {
		got = q
		return []models.User{{ID: "u1", Name: "Jane", Email: "jane@example.com", Role: models.RoleUser, Password: "hash"}}, 1, nil
	}}
	r := chi.NewRouter()
	r.Get("/users", web.Handle(NewHandler(NewService(st)).List))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users?role=user&sort=name", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if len(got.Filters) != 1 || got.Filters[0].Value != "user" || got.Sort[0].Field.Name != "name" {
		t.Errorf("query = %+v", got)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Errorf("body leaks the password: %s", rec.Body)
	}
	var body struct {
		Total int64 `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Total != 1 {
		t.Errorf("total = %d", body.Total)
	}
}

func TestDeleteMissing(t *testing.T) {
	st := &mockStore{DeleteFn: func(_ context.Context, id string) error {
		return apperr.NotFound("No user with the id of %s", id)
	}}
	r := chi.NewRouter()
	r.Delete("/users/{id}", web.Handle(NewHandler(NewService(st)).Delete))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body)
	}
}
