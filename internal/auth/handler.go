package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/devcamper/backend/internal/middleware"
	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/web"
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc    *Service
	cookie CookieConfig
}

func NewHandler(svc *Service, cookie CookieConfig) *Handler {
	return &Handler{svc: svc, cookie: cookie}
}

// sendToken answers with the token in the body and the cookie.
func (h *Handler) sendToken(w http.ResponseWriter, token string) {
	h.cookie.set(w, token)
	web.Token(w, token)
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) error {
	var req models.RegisterRequest
	if err := web.Decode(w, r, &req); err != nil {
		return err
	}
	token, err := h.svc.Register(r.Context(), req)
	if err != nil {
		return err
	}
	h.sendToken(w, token)
	return nil
}

// Login authenticates a user and issues a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	var req models.LoginRequest
	if err := web.Decode(w, r, &req); err != nil {
		return err
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.sendToken(w, token)
	return nil
}

// Logout revokes the presented token and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) error {
	if err := h.svc.Logout(r.Context(), middleware.TokenFromRequest(r)); err != nil {
		return err
	}
	h.cookie.clear(w)
	web.Data(w, http.StatusOK, struct{}{})
	return nil
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) error {
	p, err := middleware.Caller(r)
	if err != nil {
		return err
	}
	u, err := h.svc.Me(r.Context(), p.ID)
	if err != nil {
		return err
	}
	web.Data(w, http.StatusOK, u)
	return nil
}

func (h *Handler) UpdateDetails(w http.ResponseWriter, r *http.Request) error {
	p, err := middleware.Caller(r)
	if err != nil {
		return err
	}
	var req models.UpdateDetailsRequest
	if err := web.Decode(w, r, &req); err != nil {
		return err
	}
	u, err := h.svc.UpdateDetails(r.Context(), p.ID, req)
	if err != nil {
		return err
	}
	web.Data(w, http.StatusOK, u)
	return nil
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) error {
	p, err := middleware.Caller(r)
	if err != nil {
		return err
	}
	var req models.UpdatePasswordRequest
	if err := web.Decode(w, r, &req); err != nil {
		return err
	}
	token, err := h.svc.UpdatePassword(r.Context(), p.ID, req)
	if err != nil {
		return err
	}
	h.sendToken(w, token)
	return nil
}

// ForgotPassword mails a reset link pointing back at this server.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) error {
	var req models.ForgotPasswordRequest
	if err := web.Decode(w, r, &req); err != nil {
		return err
	}
	if err := h.svc.ForgotPassword(r.Context(), req.Email, baseURL(r)); err != nil {
		return err
	}
	web.Data(w, http.StatusOK, "Email sent")
	return nil
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) error {
	var req models.ResetPasswordRequest
	if err := web.Decode(w, r, &req); err != nil {
		return err
	}
	token, err := h.svc.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password)
	if err != nil {
		return err
	}
	h.sendToken(w, token)
	return nil
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
