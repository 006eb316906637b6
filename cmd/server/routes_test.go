package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayush/devcamper/backend/internal/apperr"
	"github.com/ayush/devcamper/backend/internal/auth"
	"github.com/ayush/devcamper/backend/internal/bootcamps"
	"github.com/ayush/devcamper/backend/internal/config"
	"github.com/ayush/devcamper/backend/internal/courses"
	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/policy"
	"github.com/ayush/devcamper/backend/internal/reviews"
	"github.com/ayush/devcamper/backend/internal/users"
)

// roleAuth accepts any token equal to a role name and rejects the rest.
type roleAuth struct{}

func (roleAuth) Authenticate(_ context.Context, token string) (policy.Principal, error) {
	switch token {
	case models.RoleUser, models.RolePublisher, models.RoleAdmin:
		return policy.Principal{ID: token + "-id", Role: token}, nil
	}
	return policy.Principal{}, apperr.Unauthenticated("Not authorized to access this route")
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	return newRouter(routes{
		cfg:       &config.Config{CORSOrigins: []string{"http://localhost:3000"}, AuthRateLimit: 100, AuthRateBurst: 100},
		authSvc:   roleAuth{},
		auth:      auth.NewHandler(nil, auth.CookieConfig{}),
		bootcamps: bootcamps.NewHandler(bootcamps.NewService(nil, nil, nil, 0)),
		courses:   courses.NewHandler(courses.NewService(nil)),
		reviews:   reviews.NewHandler(reviews.NewService(nil)),
		users:     users.NewHandler(users.NewService(nil)),
		done:      done,
	})
}

func TestRouteGates(t *testing.T) {
	tests := []struct {
		name, method, path, token string
		want                      int
		wantBody                  string
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK, `"ok"`},
		{"create bootcamp anonymously", http.MethodPost, "/api/v1/bootcamps", "", http.StatusUnauthorized, "Not authorized to access this route"},
		{"create bootcamp as user", http.MethodPost, "/api/v1/bootcamps", models.RoleUser, http.StatusForbidden, "User role user is not authorized to access this route"},
		{"add course as user", http.MethodPost, "/api/v1/bootcamps/5d713995b721c3bb38c1f5d0/courses", models.RoleUser, http.StatusForbidden, "User role user"},
		{"review as publisher", http.MethodPost, "/api/v1/bootcamps/5d713995b721c3bb38c1f5d0/reviews", models.RolePublisher, http.StatusForbidden, "User role publisher"},
		{"update review anonymously", http.MethodPut, "/api/v1/reviews/5d7a514b5d2c12c7449be020", "", http.StatusUnauthorized, ""},
		{"list users as publisher", http.MethodGet, "/api/v1/users", models.RolePublisher, http.StatusForbidden, "User role publisher"},
		{"me with a bad token", http.MethodGet, "/api/v1/auth/me", "forged", http.StatusUnauthorized, ""},
		{"upload photo as user", http.MethodPut, "/api/v1/bootcamps/5d713995b721c3bb38c1f5d0/photo", models.RoleUser, http.StatusForbidden, ""},
	}
	router := testRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body %s lacks %q", rec.Body, tt.wantBody)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	router := testRouter(t)
	for _, route := range [][2]string{
		{http.MethodGet, "/health"},
		{http.MethodPut, "/api/v1/bootcamps/5d713995b721c3bb38c1f5d0/photo"},
	} {
		req := httptest.NewRequest(route[0], route[1], nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		for header, want := range map[string]string{
			"X-Content-Type-Options": "nosniff",
			"X-Frame-Options":        "SAMEORIGIN",
			"X-DNS-Prefetch-Control": "off",
			"Referrer-Policy":        "no-referrer",
		} {
			if got := rec.Header().Get(header); got != want {
				t.Errorf("%s %s: %s = %q, want %q", route[0], route[1], header, got, want)
			}
		}
	}
}
