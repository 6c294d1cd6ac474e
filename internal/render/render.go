// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site and
// the admin area. Page names are "<area>/<page>", for example
// "public/post_list" or "admin/dashboard"; each page is paired with its
// area's base layout and the shared partials.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/blog"
	"blogpress/internal/markdown"
	"blogpress/internal/middleware"
	"blogpress/internal/session"
)

//go:embed templates
var templateFS embed.FS

// areas are the template directories, each with its own base.html.
var areas = []string{"public", "admin"}

// PageData holds all data passed to templates.
type PageData struct {
	Title     string          // Page title for <title> tag
	Section   string          // Active navigation section (e.g., "posts")
	Session   *session.Data   // Current user session (nil if anonymous)
	CSRFToken string          // CSRF token for forms
	Flashes   []session.Flash // One-time notices
	Data      map[string]any  // Page-specific data
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New parses every page template from the embedded filesystem. mediaURL
// turns a stored file key into a public URL.
func New(mediaURL func(key string) string) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"markdown": markdown.Render,
			"mediaURL": func(key *string) string {
				if key == nil || *key == "" {
					return ""
				}
				return mediaURL(*key)
			},
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			// uuidEq compares a *uuid.UUID pointer with a uuid.UUID value.
			"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
				return ptr != nil && *ptr == val
			},
			"date": func(t time.Time) string {
				return t.Format("January 2, 2006")
			},
			"datetime": func(t time.Time) string {
				return t.Format("Jan 2, 2006 15:04")
			},
			"fieldError": func(errs blog.ValidationErrors, field string) string {
				return errs[field]
			},
			"excerpt":  excerpt,
			"withPage": withPage,
			"activeClass": func(current, target string) string {
				if current == target {
					return "active"
				}
				return ""
			},
		},
	}

	for _, area := range areas {
		dir := "templates/" + area
		entries, err := fs.ReadDir(templateFS, dir)
		if err != nil {
			return nil, fmt.Errorf("read embedded templates: %w", err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || name == "base.html" || path.Ext(name) != ".html" {
				continue
			}
			tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
				templateFS, "templates/partials.html", dir+"/base.html", dir+"/"+name,
			)
			if err != nil {
				return nil, fmt.Errorf("parse template %s/%s: %w", area, name, err)
			}
			r.templates[area+"/"+strings.TrimSuffix(name, ".html")] = tmpl
		}
	}

	return r, nil
}

// Page renders a full page with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders a full page with the given status. The page is
// executed into a buffer first so a template error still yields a clean
// 500 response.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.Data == nil {
		data.Data = map[string]any{}
	}
	data.Flashes = append(data.Flashes, session.PopFlashes(w, r)...)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("write response", "template", name, "error", err)
	}
}

// Error renders the public error page.
func (rn *Renderer) Error(w http.ResponseWriter, r *http.Request, status int) {
	rn.PageStatus(w, r, status, "public/error", &PageData{
		Title: http.StatusText(status),
		Data: map[string]any{
			"Status":  status,
			"Message": http.StatusText(status),
		},
	})
}

// excerpt shortens s to at most words words.
func excerpt(s string, words int) string {
	fields := strings.Fields(s)
	if len(fields) <= words {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:words], " ") + " …"
}

// withPage returns "?<query>" with page set to n, keeping other filters.
func withPage(q url.Values, n int) string {
	v := url.Values{}
	for k, vals := range q {
		v[k] = append([]string(nil), vals...)
	}
	v.Set("page", strconv.Itoa(n))
	return "?" + v.Encode()
}
