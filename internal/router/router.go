// Package router sets up all HTTP routes and middleware chains for the
// NextPing API. It organizes routes into public, authenticated, and admin
// groups with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"nextping/internal/handlers"
	"nextping/internal/middleware"
	"nextping/internal/session"
)

// Deps bundles everything the route tree needs.
type Deps struct {
	Sessions    *session.Store
	RateLimiter *middleware.RateLimiter

	Auth      *handlers.Auth
	Posts     *handlers.Posts
	Topics    *handlers.Topics
	Generate  *handlers.Generate
	Upload    *handlers.Upload
	Analytics *handlers.Analytics
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.LoadSession(d.Sessions))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Auth.
		r.Post("/auth/register", d.Auth.Register)
		r.Post("/auth/login", d.Auth.Login)
		r.Post("/auth/logout", d.Auth.Logout)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/auth/me", d.Auth.Me)
			// 2FA endpoints require auth but NOT completed verification.
			r.Post("/auth/2fa/setup", d.Auth.TwoFASetup)
			r.Post("/auth/2fa/verify", d.Auth.TwoFAVerify)
		})

		// Public blog reads.
		r.Get("/posts", d.Posts.List)
		r.Get("/posts/featured", d.Posts.Featured)
		r.Get("/posts/categories", d.Posts.Categories)
		r.Get("/posts/{slug}", d.Posts.BySlug)

		// Authenticated writes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Post("/posts", d.Posts.Create)
			r.Put("/posts/{id}", d.Posts.Update)
			r.Delete("/posts/{id}", d.Posts.Delete)

			// Topic queue.
			r.Route("/topics", func(r chi.Router) {
				r.Get("/", d.Topics.List)
				r.Post("/", d.Topics.Create)
				r.Delete("/{id}", d.Topics.Delete)
			})

			// Media uploads.
			r.Post("/upload", d.Upload.Image)
			r.Delete("/upload", d.Upload.Delete)
		})

		// Admin area.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Use(middleware.RequireAdmin)

			r.Get("/posts", d.Posts.AdminList)
			r.Patch("/posts/{id}/featured", d.Posts.SetFeatured)
			r.Get("/analytics", d.Analytics.Dashboard)

			// Generation endpoints are expensive; rate-limit them.
			r.Group(func(r chi.Router) {
				if d.RateLimiter != nil {
					r.Use(d.RateLimiter.Middleware)
				}
				r.Post("/generate", d.Generate.OnDemand)
				r.Post("/generate/run", d.Generate.RunScheduler)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
