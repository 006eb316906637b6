package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/devcamper/backend/internal/auth"
	"github.com/ayush/devcamper/backend/internal/bootcamps"
	"github.com/ayush/devcamper/backend/internal/config"
	"github.com/ayush/devcamper/backend/internal/courses"
	"github.com/ayush/devcamper/backend/internal/middleware"
	"github.com/ayush/devcamper/backend/internal/policy"
	"github.com/ayush/devcamper/backend/internal/reviews"
	"github.com/ayush/devcamper/backend/internal/users"
	"github.com/ayush/devcamper/backend/internal/web"
)

type routes struct {
	cfg       *config.Config
	authSvc   middleware.Authenticator
	auth      *auth.Handler
	bootcamps *bootcamps.Handler
	courses   *courses.Handler
	reviews   *reviews.Handler
	users     *users.Handler
	done      <-chan struct{}
}

func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(
		chimw.SetHeader("X-Content-Type-Options", "nosniff"),
		chimw.SetHeader("X-Frame-Options", "SAMEORIGIN"),
		chimw.SetHeader("X-DNS-Prefetch-Control", "off"),
		chimw.SetHeader("Referrer-Policy", "no-referrer"),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/uploads/{name}", web.Handle(rt.bootcamps.Photo))

	authn := middleware.Authenticate(rt.authSvc)
	h := web.Handle

	r.Route("/api/v1", func(r chi.Router) {
		// Auth
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(rt.cfg.AuthRateLimit, rt.cfg.AuthRateBurst, rt.done))
				r.Post("/register", h(rt.auth.Register))
				r.Post("/login", h(rt.auth.Login))
				r.Post("/forgotpassword", h(rt.auth.ForgotPassword))
				r.Put("/resetpassword/{token}", h(rt.auth.ResetPassword))
			})
			r.Get("/logout", h(rt.auth.Logout))
			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Get("/me", h(rt.auth.Me))
				r.Put("/updatedetails", h(rt.auth.UpdateDetails))
				r.Put("/updatepassword", h(rt.auth.UpdatePassword))
			})
		})

		// Bootcamps, with their nested courses and reviews
		r.Route("/bootcamps", func(r chi.Router) {
			r.Get("/", h(rt.bootcamps.List))
			r.Get("/radius/{zipcode}/{distance}", h(rt.bootcamps.WithinRadius))
			r.With(authn, middleware.Authorize(policy.Publishers...)).Post("/", h(rt.bootcamps.Create))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h(rt.bootcamps.Get))
				r.Group(func(r chi.Router) {
					r.Use(authn, middleware.Authorize(policy.Publishers...))
					r.Put("/", h(rt.bootcamps.Update))
					r.Delete("/", h(rt.bootcamps.Delete))
					r.Put("/photo", h(rt.bootcamps.UploadPhoto))
				})
			})

			r.Get("/{bootcampId}/courses", h(rt.courses.List))
			r.With(authn, middleware.Authorize(policy.Publishers...)).Post("/{bootcampId}/courses", h(rt.courses.Create))
			r.Get("/{bootcampId}/reviews", h(rt.reviews.List))
			r.With(authn, middleware.Authorize(policy.Reviewers...)).Post("/{bootcampId}/reviews", h(rt.reviews.Create))
		})

		// Courses
		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h(rt.courses.List))
			r.Get("/{id}", h(rt.courses.Get))
			r.Group(func(r chi.Router) {
				r.Use(authn, middleware.Authorize(policy.Publishers...))
				r.Put("/{id}", h(rt.courses.Update))
				r.Delete("/{id}", h(rt.courses.Delete))
			})
		})

		// Reviews
		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", h(rt.reviews.List))
			r.Get("/{id}", h(rt.reviews.Get))
			r.Group(func(r chi.Router) {
				r.Use(authn, middleware.Authorize(policy.Reviewers...))
				r.Put("/{id}", h(rt.reviews.Update))
				r.Delete("/{id}", h(rt.reviews.Delete))
			})
		})

		// Users (admin)
		r.Route("/users", func(r chi.Router) {
			r.Use(authn, middleware.Authorize(policy.Admins...))
			r.Get("/", h(rt.users.List))
			r.Post("/", h(rt.users.Create))
			r.Get("/{id}", h(rt.users.Get))
			r.Put("/{id}", h(rt.users.Update))
			r.Delete("/{id}", h(rt.users.Delete))
		})
	})

	return r
}
