// Package web holds the HTTP plumbing shared by every feature handler:
// JSON envelopes, request decoding and the central error responder.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ayush/devcamper/backend/internal/apperr"
	"github.com/ayush/devcamper/backend/internal/query"
)

// HandlerFunc is an HTTP handler that reports failure by returning it.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts fn so that any returned error reaches Error.
func Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			Error(w, r, err)
		}
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Data writes {success:true, data}.
func Data(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"success": true, "data": data})
}

// List writes {success:true, count, data} for unpaginated collections.
func List[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(items), "data": items})
}

// Page is the envelope for collections served through the query façade.
type Page[T any] struct {
	Success    bool             `json:"success"`
	Count      int              `json:"count"`
	Total      int64            `json:"total"`
	Pagination query.Pagination `json:"pagination"`
	Data       []T              `json:"data"`
}

// Paged writes a Page envelope.
func Paged[T any](w http.ResponseWriter, items []T, total int64, p query.Pagination) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, Page[T]{
		Success:    true,
		Count:      len(items),
		Total:      total,
		Pagination: p,
		Data:       items,
	})
}

// Token writes {success:true, token}.
func Token(w http.ResponseWriter, token string) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

// Error is the single place error bodies are written.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Upstream(err, "Server Error")
	}

	if e.Status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"error", err,
		)
	}

	writeJSON(w, e.Status, map[string]any{"success": false, "error": e.Message})
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20 // 1MB

// Decode reads a JSON body into v, reporting failures as validation errors.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}
