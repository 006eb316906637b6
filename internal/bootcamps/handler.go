package bootcamps

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/devcamper/backend/internal/apperr"
	"github.com/ayush/devcamper/backend/internal/middleware"
	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/query"
	"github.com/ayush/devcamper/backend/internal/web"
)

// multipartOverhead leaves room for form boundaries around the photo.
const multipartOverhead = 1 << 20

// Handler holds bootcamp HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	q, err := query.Parse(r.URL.Query(), models.BootcampSchema)
	if err != nil {
		return err
	}
	items, total, err := h.svc.List(r.Context(), q)
	if err != nil {
		return err
	}
	data, err := query.Sparse(q, items, "courses")
	if err != nil {
		return err
	}
	web.Paged(w, data, total, q.Paginate(total))
	return nil
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	web.Data(w, http.StatusOK, b)
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	caller, err := middleware.Caller(r)
	if err != nil {
		return err
	}
	var in models.BootcampInput
	if err := web.Decode(w, r, &in); err != nil {
		return err
	}
	b, err := h.svc.Create(r.Context(), caller, in)
	if err != nil {
		return err
	}
	web.Data(w, http.StatusCreated, b)
	return nil
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	caller, err := middleware.Caller(r)
	if err != nil {
		return err
	}
	var in models.BootcampInput
	if err := web.Decode(w, r, &in); err != nil {
		return err
	}
	b, err := h.svc.Update(r.Context(), caller, chi.URLParam(r, "id"), in)
	if err != nil {
		return err
	}
	web.Data(w, http.StatusOK, b)
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

// WithinRadius serves GET /bootcamps/radius/{zipcode}/{distance}?unit=km.
func (h *Handler) WithinRadius(w http.ResponseWriter, r *http.Request) error {
	items, err := h.svc.WithinRadius(r.Context(),
		chi.URLParam(r, "zipcode"), chi.URLParam(r, "distance"), r.URL.Query().Get("unit"))
	if err != nil {
		return err
	}
	web.List(w, items)
	return nil
}

// UploadPhoto serves PUT /bootcamps/{id}/photo with a multipart "file" field.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) error {
	caller, err := middleware.Caller(r)
	if err != nil {
		return err
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.svc.maxPhoto+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("Please upload an image less than %d", h.svc.maxPhoto)
		}
		return apperr.Validation("Please upload a file")
	}
	defer file.Close()

	name, err := h.svc.UploadPhoto(r.Context(), caller, chi.URLParam(r, "id"), Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		return err
	}
	web.Data(w, http.StatusOK, name)
	return nil
}

// Photo streams a stored photo: GET /uploads/{name}.
func (h *Handler) Photo(w http.ResponseWriter, r *http.Request) error {
	photo, err := h.svc.Photo(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		return err
	}
	defer photo.Body.Close()

	w.Header().Set("Content-Type", photo.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(photo.Size, 10))
	if _, err := io.Copy(w, photo.Body); err != nil {
		slog.Warn("stream photo", "error", err)
	}
	return nil
}
