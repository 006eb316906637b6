package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/query"
	"github.com/ayush/devcamper/backend/internal/web"
)

// Handler serves /users. Every route sits behind Authorize(admin).
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	q, err := query.Parse(r.URL.Query(), models.UserSchema)
	if err != nil {
		return err
	}
	items, total, err := h.svc.List(r.Context(), q)
	if err != nil {
		return err
	}
	data, err := query.Sparse(q, items)
	if err != nil {
		return err
	}
	web.Paged(w, data, total, q.Paginate(total))
	return nil
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	web.Data(w, http.StatusOK, u)
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	var in models.UserInput
	if err := web.Decode(w, r, &in); err != nil {
		return err
	}
	u, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return err
	}
	web.Data(w, http.StatusCreated, u)
	return nil
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	var in models.UserInput
	if err := web.Decode(w, r, &in); err != nil {
		return err
	}
	u, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		return err
	}
	web.Data(w, http.StatusOK, u)
	return nil
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	web.Data(w, http.StatusOK, struct{}{})
	return nil
}
