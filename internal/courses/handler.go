package courses

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/devcamper/backend/internal/middleware"
	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/query"
	"github.com/ayush/devcamper/backend/internal/web"
)

// Handler holds course HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List serves both /courses and /bootcamps/{bootcampId}/courses. The nested
// form returns every course of the bootcamp without pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	if bootcampID := chi.URLParam(r, "bootcampId"); bootcampID != "" {
		items, err := h.svc.ListByBootcamp(r.Context(), bootcampID)
		if err != nil {
			return err
		}
		web.List(w, items)
		return nil
	}

	q, err := query.Parse(r.URL.Query(), models.CourseSchema)
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
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	web.Data(w, http.StatusOK, c)
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	caller, err := middleware.Caller(r)
	if err != nil {
		return err
	}
	var in models.CourseInput
	if err := web.Decode(w, r, &in); err != nil {
		return err
	}
	c, err := h.svc.Create(r.Context(), caller, chi.URLParam(r, "bootcampId"), in)
	if err != nil {
		return err
	}
	web.Data(w, http.StatusCreated, c)
	return nil
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	caller, err := middleware.Caller(r)
	if err != nil {
		return err
	}
	var in models.CourseInput
	if err := web.Decode(w, r, &in); err != nil {
		return err
	}
	c, err := h.svc.Update(r.Context(), caller, chi.URLParam(r, "id"), in)
	if err != nil {
		return err
	}
	web.Data(w, http.StatusOK, c)
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
