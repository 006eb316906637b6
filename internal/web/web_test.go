package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ayush/devcamper/backend/internal/apperr"
	"github.com/ayush/devcamper/backend/internal/query"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHandleMapsTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", apperr.Validation("Please add a name"), http.StatusBadRequest, "Please add a name"},
		{"unauthenticated", apperr.Unauthenticated("Not authorized to access this route"), http.StatusUnauthorized, "Not authorized to access this route"},
		{"forbidden", apperr.Forbidden("nope"), http.StatusForbidden, "nope"},
		{"not found", apperr.NotFound("No course with the id of 1"), http.StatusNotFound, "No course with the id of 1"},
		{"unclassified", errors.New("socket closed"), http.StatusInternalServerError, "Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Handle(func(w http.ResponseWriter, r *http.Request) error { return tt.err })
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			want := map[string]any{"success": false, "error": tt.wantMsg}
			if diff := cmp.Diff(want, decodeBody(t, rec)); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandleSuccessWritesNothingExtra(t *testing.T) {
	h := Handle(func(w http.ResponseWriter, r *http.Request) error {
		Data(w, http.StatusCreated, map[string]string{"name": "Devworks"})
		return nil
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
}

func TestListNilBecomesEmptyArray(t *testing.T) {
	rec := httptest.NewRecorder()
	List[string](rec, nil)

	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want empty data array", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"count":0`) {
		t.Errorf("body = %s, want count 0", rec.Body.String())
	}
}

func TestPagedOmitsMissingNeighbours(t *testing.T) {
	rec := httptest.NewRecorder()
	Paged(rec, []int{1, 2}, 2, query.Pagination{})

	body := decodeBody(t, rec)
	want := map[string]any{
		"success":    true,
		"count":      float64(2),
		"total":      float64(2),
		"pagination": map[string]any{},
		"data":       []any{float64(1), float64(2)},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))

	var v struct{ Name string }
	err := Decode(rec, req, &v)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Decode() error = %v, want validation error", err)
	}
}

func TestDecodeRejectsOversizedBody(t *testing.T) {
	rec := httptest.NewRecorder()
	big := `{"name":"` + strings.Repeat("a", maxBodyBytes+10) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))

	var v struct{ Name string }
	err := Decode(rec, req, &v)
	e, ok := apperr.As(err)
	if !ok || e.Message != "request body too large" {
		t.Fatalf("Decode() error = %v, want request body too large", err)
	}
}
