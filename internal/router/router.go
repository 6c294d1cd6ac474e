// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// blog. Routes are split into the public site, the author pages, account
// pages and the staff admin area.
package router

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"blogpress/internal/handlers"
	"blogpress/internal/middleware"
	"blogpress/internal/render"
	"blogpress/web"
)

// Config carries the handler groups and the middleware settings.
type Config struct {
	Sessions middleware.SessionGetter
	Renderer *render.Renderer

	Public *handlers.Public
	Author *handlers.Author
	Auth   *handlers.Auth
	Admin  *handlers.Admin
	Health http.Handler

	// Media serves uploaded files under MediaPrefix. Nil when uploads
	// live in object storage.
	Media       http.Handler
	MediaPrefix string

	// Limiter throttles login and comment submissions. Optional.
	Limiter *middleware.RateLimiter

	SecureCookies bool
	MaxBodyBytes  int64
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(cfg Config) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(cfg.SecureCookies))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		cfg.Renderer.Error(w, r, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		cfg.Renderer.Error(w, r, http.StatusMethodNotAllowed)
	})

	// No session, no CSRF.
	r.Get("/health", cfg.Health.ServeHTTP)

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	if cfg.Media != nil {
		prefix := "/" + strings.Trim(cfg.MediaPrefix, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", cfg.Media))
	}

	throttle := func(next http.Handler) http.Handler { return next }
	if cfg.Limiter != nil {
		throttle = cfg.Limiter.Middleware
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))
		r.Use(middleware.NewCSRF(cfg.SecureCookies))
		r.Use(middleware.LoadSession(cfg.Sessions))

		// Public site.
		r.Get("/", cfg.Public.Home)
		r.Get("/category/{slug}/", cfg.Public.CategoryPosts)
		r.Get("/tag/{slug}/", cfg.Public.TagPosts)
		r.Get("/post/{slug}/", cfg.Public.PostDetail)
		r.With(throttle).Post("/post/{slug}/", cfg.Public.CommentSubmit)

		// Author pages. Ownership is checked by the service.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireLogin)
			r.Get("/post/create/", cfg.Author.CreatePage)
			r.Post("/post/create/", cfg.Author.Create)
			r.Get("/post/{slug}/update/", cfg.Author.UpdatePage)
			r.Post("/post/{slug}/update/", cfg.Author.Update)
			r.Get("/post/{slug}/delete/", cfg.Author.DeletePage)
			r.Post("/post/{slug}/delete/", cfg.Author.Delete)
			r.Post("/post/{slug}/delete-image/", cfg.Author.DeleteImage)
		})

		// Accounts. The 2FA pages check for a pending staff session themselves.
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/login/", cfg.Auth.LoginPage)
			r.With(throttle).Post("/login/", cfg.Auth.LoginSubmit)
			r.Post("/logout/", cfg.Auth.Logout)
			r.Get("/2fa/setup/", cfg.Auth.TwoFASetupPage)
			r.With(throttle).Post("/2fa/setup/", cfg.Auth.TwoFASetupSubmit)
			r.Get("/2fa/verify/", cfg.Auth.TwoFAVerifyPage)
			r.With(throttle).Post("/2fa/verify/", cfg.Auth.TwoFAVerifySubmit)
		})

		// Staff admin area, 2FA required.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireStaff)
			adminRoutes(r, cfg.Admin)
		})
	})

	return r
}

func adminRoutes(r chi.Router, admin *handlers.Admin) {
	r.Get("/", admin.Dashboard)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", admin.PostsList)
		r.Get("/{id}/", admin.PostEdit)
		r.Post("/{id}/", admin.PostUpdate)
		r.Get("/{id}/delete/", admin.PostDeletePage)
		r.Post("/{id}/delete/", admin.PostDelete)
	})

	r.Route("/comments", func(r chi.Router) {
		r.Get("/", admin.CommentsList)
		r.Post("/approve/", admin.CommentsApprove)
		r.Post("/{id}/approve/", admin.CommentApprove)
		r.Get("/{id}/delete/", admin.CommentDeletePage)
		r.Post("/{id}/delete/", admin.CommentDelete)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", admin.CategoriesList)
		r.Get("/new/", admin.CategoryNew)
		r.Post("/new/", admin.CategoryCreate)
		r.Get("/{id}/", admin.CategoryEdit)
		r.Post("/{id}/", admin.CategoryUpdate)
		r.Get("/{id}/delete/", admin.CategoryDeletePage)
		r.Post("/{id}/delete/", admin.CategoryDelete)
	})

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", admin.TagsList)
		r.Get("/new/", admin.TagNew)
		r.Post("/new/", admin.TagCreate)
		r.Get("/{id}/", admin.TagEdit)
		r.Post("/{id}/", admin.TagUpdate)
		r.Get("/{id}/delete/", admin.TagDeletePage)
		r.Post("/{id}/delete/", admin.TagDelete)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", admin.UsersList)
		r.Get("/new/", admin.UserNew)
		r.Post("/new/", admin.UserCreate)
		r.Post("/{id}/reset-2fa/", admin.UserResetTwoFA)
	})
}
