// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Inkwell API. It organizes routes into public, authenticated and admin
// groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"inkwell/internal/cache"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/session"
	"inkwell/internal/storage"
)

// Deps carries everything the router wires together. Cache, the rate
// limiters and UploadDir are optional.
type Deps struct {
	Sessions      middleware.SessionGetter
	Cache         *cache.ResponseCache
	AuthLimiter   *middleware.RateLimiter
	SignupLimiter *middleware.RateLimiter
	CORSOrigins   []string
	SecureCookies bool
	UploadDir     string

	Posts  *handlers.Posts
	Auth   *handlers.Auth
	Public *handlers.Public
	Admin  *handlers.Admin
	Users  *handlers.Users
	Upload *handlers.Upload
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(d.CORSOrigins))

	r.NotFound(jsonStatus(http.StatusNotFound, "Not found"))
	r.MethodNotAllowed(jsonStatus(http.StatusMethodNotAllowed, "Method not allowed"))

	// Health check: no session, no CSRF.
	r.Get("/health", healthHandler)

	if d.UploadDir != "" {
		r.Get("/uploads/*", uploadsHandler(d.UploadDir))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.LoadSession(d.Sessions))
		r.Use(middleware.NewCSRF(d.SecureCookies))

		cached := passthrough
		if d.Cache != nil {
			cached = d.Cache.Middleware(session.CookieName)
		}

		r.Route("/auth", func(r chi.Router) {
			r.Get("/session", d.Auth.Session)
			r.Group(func(r chi.Router) {
				if d.AuthLimiter != nil {
					r.Use(d.AuthLimiter.Middleware)
				}
				r.Post("/register", d.Auth.Register)
				r.Post("/login", d.Auth.Login)
				r.Post("/forgot-password", d.Auth.ForgotPassword)
				r.Post("/reset-password", d.Auth.ResetPassword)
			})
			r.Post("/logout", d.Auth.Logout)
		})

		r.Route("/posts", func(r chi.Router) {
			r.With(cached).Get("/", d.Posts.List)
			r.Get("/search", d.Posts.Search)
			r.Get("/{slug}", d.Posts.Get)
			r.Get("/{slug}/comments", d.Posts.ListComments)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", d.Posts.Create)
				r.Put("/{slug}", d.Posts.Update)
				r.Delete("/{slug}", d.Posts.Delete)
				r.Post("/{slug}/comments", d.Posts.CreateComment)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.With(cached).Get("/", d.Public.Categories)
			r.With(cached).Get("/{slug}", d.Public.Category)
			r.With(middleware.RequireAdmin).Post("/", d.Admin.CreateCategory)
		})

		r.Get("/authors/{username}", d.Public.Author)

		r.Group(func(r chi.Router) {
			if d.SignupLimiter != nil {
				r.Use(d.SignupLimiter.Middleware)
			}
			r.Post("/newsletter", d.Public.Subscribe)
		})

		// Authenticated user area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/user/profile", d.Users.Profile)
			r.Put("/user/profile", d.Users.UpdateProfile)
			r.Get("/user/posts", d.Users.Posts)
			r.Post("/upload", d.Upload.Create)
		})

		// Maintenance, admin only.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Delete("/posts", d.Admin.DeletePostsByCategory)
			r.Post("/posts/fix-images", d.Admin.FixImages)
		})
	})

	return r
}

// passthrough is the no-op middleware used when caching is disabled.
func passthrough(next http.Handler) http.Handler { return next }

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// jsonStatus answers every request with status and a {"message"} body.
func jsonStatus(status int, message string) http.HandlerFunc {
	body := `{"message":"` + message + `"}`
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

// uploadsHandler serves files saved by storage.Disk. File names embed a
// timestamp and random suffix, so responses are cached forever.
// Directory listings are not served.
func uploadsHandler(dir string) http.HandlerFunc {
	fs := http.StripPrefix(storage.URLPrefix, http.FileServer(http.Dir(dir)))
	notFound := jsonStatus(http.StatusNotFound, "Not found")
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			notFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", storage.ImmutableCacheControl)
		fs.ServeHTTP(w, r)
	}
}
