// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the blog. Handlers are
// grouped by concern (public, author, auth, admin) and receive their
// dependencies through the handler struct.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogpress/internal/blog"
	"blogpress/internal/middleware"
	"blogpress/internal/render"
	"blogpress/internal/session"
)

// SessionStore is the part of the session store the handlers write to.
type SessionStore interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// callerFromCtx returns the signed-in user. Staff who have not passed
// 2FA yet are treated as anonymous.
func callerFromCtx(ctx context.Context) *blog.Caller {
	sess := middleware.SessionFromCtx(ctx)
	if sess == nil || !sess.TwoFADone {
		return nil
	}
	return &blog.Caller{ID: sess.UserID, Username: sess.Username, IsStaff: sess.IsStaff}
}

// fail maps service errors onto responses.
func fail(rn *render.Renderer, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, blog.ErrNotFound):
		rn.Error(w, r, http.StatusNotFound)
	case errors.Is(err, blog.ErrUnauthenticated):
		http.Redirect(w, r, middleware.LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
	case errors.Is(err, blog.ErrForbidden):
		rn.Error(w, r, http.StatusForbidden)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		rn.Error(w, r, http.StatusInternalServerError)
	}
}

// redirectWith queues a flash and sends a 303 to target.
func redirectWith(w http.ResponseWriter, r *http.Request, level, message, target string) {
	session.AddFlash(w, r, level, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// postInput binds the post form. The slug is only read when withSlug is
// set (admin form).
func postInput(r *http.Request, withSlug bool) blog.PostInput {
	in := blog.PostInput{
		Title:           r.PostFormValue("title"),
		Content:         r.PostFormValue("content"),
		Category:        r.PostFormValue("category"),
		Tags:            r.PostForm["tags"],
		Status:          r.PostFormValue("status"),
		MetaTitle:       r.PostFormValue("meta_title"),
		MetaDescription: r.PostFormValue("meta_description"),
	}
	if withSlug {
		in.Slug = r.PostFormValue("slug")
	}
	return in
}

// readUpload returns the featured image sent with a multipart form, or
// nil if none was chosen.
func readUpload(r *http.Request) (*blog.Upload, error) {
	f, hdr, err := r.FormFile("featured_image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	defer f.Close()

	if hdr.Filename == "" {
		return nil, nil
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &blog.Upload{Filename: hdr.Filename, Data: data}, nil
}

// safeNext returns next if it is a local path, otherwise fallback.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
