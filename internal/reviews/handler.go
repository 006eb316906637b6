package reviews

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/devcamper/backend/internal/middleware"
	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/query"
	"github.com/ayush/devcamper/backend/internal/web"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List serves /reviews through the query façade and
// /bootcamps/{bootcampId}/reviews as a plain list.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	if bootcampID := chi.URLParam(r, "bootcampId"); bootcampID != "" {
		items, err := h.svc.ListByBootcamp(r.Context(), bootcampID)
		if err != nil {
			return err
		}
		web.List(w, items)
		return nil
	}

	q, err := query.Parse(r.URL.Query(), models.ReviewSchema)
	if err != nil {
		return err
	}
	items, total, err := h.svc.List(r.Context(), q)
	if err != nil {
		return err
	}
	data, err := query.Sparse(q, items, "bootcamp")
	if err != nil {
		return err
	}
	web.Paged(w, data, total, q.Paginate(total))
	return nil
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	review, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	web.Data(w, http.StatusOK, review)
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	caller, err := middleware.Caller(r)
	if err != nil {
		return err
	}
	var in models.ReviewInput
	if err := web.Decode(w, r, &in); err != nil {
		return err
	}
	review, err := h.svc.Create(r.Context(), caller, chi.URLParam(r, "bootcampId"), in)
	if err != nil {
		return err
	}
	web.Data(w, http.StatusCreated, review)
	return nil
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	caller, err := middleware.Caller(r)
	if err != nil {
		return err
	}
	var in models.ReviewInput
	if err := web.Decode(w, r, &in); err != nil {
		return err
	}
	review, err := h.svc.Update(r.Context(), caller, chi.URLParam(r, "id"), in)
	if err != nil {
		return err
	}
	web.Data(w, http.StatusOK, review)
	return nil
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	caller, err := middleware.Caller(r)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		return err
	}
	web.Data(w, http.StatusOK, struct{}{})
	return nil
}
