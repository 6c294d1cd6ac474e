// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the handler
// tests. Handlers run against the in-memory store and a map-backed
// session store, so no external services are needed.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"blogpress/internal/blog"
	"blogpress/internal/middleware"
	"blogpress/internal/models"
	"blogpress/internal/render"
	"blogpress/internal/session"
	"blogpress/internal/storage"
	"blogpress/internal/store/memory"
)

const testPassword = "correct horse"

// fakeSessions keys sessions by the session cookie value.
type fakeSessions map[string]*session.Data

func (f fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	id := uuid.NewString()
	f[id] = data
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: id, Path: "/"})
	return id, nil
}

func (f fakeSessions) Update(_ context.Context, r *http.Request, data *session.Data) error {
	c, err := r.Cookie(session.CookieName)
	if err != nil {
		return errors.New("no session cookie")
	}
	f[c.Value] = data
	return nil
}

func (f fakeSessions) Destroy(_ context.Context, w http.ResponseWriter, r *http.Request) error {
	if c, err := r.Cookie(session.CookieName); err == nil {
		delete(f, c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "", Path: "/", MaxAge: -1})
	return nil
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	DB       *memory.DB
	Svc      *blog.Service
	Files    *storage.Local
	Sessions fakeSessions
	Renderer *render.Renderer
	Public   *Public
	Author   *Author
	Auth     *Auth
	Admin    *Admin
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	files, err := storage.NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)

	db := memory.New()
	svc := blog.NewService(blog.Deps{
		Posts:      db.Posts(),
		Categories: db.Categories(),
		Tags:       db.Tags(),
		Comments:   db.Comments(),
		Users:      db.Users(),
		Files:      files,
		PerPage:    5,
	})

	renderer, err := render.New(files.URL)
	require.NoError(t, err)

	sessions := fakeSessions{}
	return &testEnv{
		DB:       db,
		Svc:      svc,
		Files:    files,
		Sessions: sessions,
		Renderer: renderer,
		Public:   NewPublic(renderer, svc),
		Author:   NewAuthor(renderer, svc),
		Auth:     NewAuth(renderer, sessions, svc),
		Admin:    NewAdmin(renderer, svc),
	}
}

// testUser registers an account with testPassword.
func (e *testEnv) testUser(t *testing.T, name string, staff bool) *models.User {
	t.Helper()
	u, err := e.Svc.RegisterUser(context.Background(), blog.UserInput{
		Username: name,
		Email:    name + "@example.com",
		Password: testPassword,
		IsStaff:  staff,
	})
	require.NoError(t, err)
	return u
}

// testPost creates a post owned by author.
func (e *testEnv) testPost(t *testing.T, author *models.User, title string, status models.PostStatus) *models.Post {
	t.Helper()
	p, err := e.Svc.CreatePost(context.Background(), callerFor(author), blog.PostInput{
		Title:   title,
		Content: "Body of " + title,
		Status:  string(status),
	}, nil)
	require.NoError(t, err)
	return p
}

// testComment submits a comment by author on post.
func (e *testEnv) testComment(t *testing.T, author *models.User, post *models.Post, content string) *models.Comment {
	t.Helper()
	c, err := e.Svc.SubmitComment(context.Background(), callerFor(author), post, blog.CommentInput{Content: content})
	require.NoError(t, err)
	return c
}

func callerFor(u *models.User) *blog.Caller {
	return &blog.Caller{ID: u.ID, Username: u.Username, IsStaff: u.IsStaff}
}

// testSession creates a signed-in session for u.
func testSession(u *models.User) *session.Data {
	return &session.Data{
		UserID:    u.ID,
		Username:  u.Username,
		IsStaff:   u.IsStaff,
		TwoFADone: true,
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return middleware.WithSession(ctx, data)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both chi URL param and session to a request.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	r = withChiURLParam(r, key, value)
	return r.WithContext(ctxWithSession(r.Context(), sess))
}

// formRequest builds a urlencoded POST.
func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// flashesOf returns the notices a response queued for the next page.
func flashesOf(rec *httptest.ResponseRecorder) []session.Flash {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return session.PopFlashes(httptest.NewRecorder(), req)
}

// assertRedirect checks for a 303 to want.
func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != want {
		t.Errorf("Location: got %q, want %q", loc, want)
	}
}

// assertFlash checks that exactly one notice with msg was queued.
func assertFlash(t *testing.T, rec *httptest.ResponseRecorder, level, msg string) {
	t.Helper()
	got := flashesOf(rec)
	if len(got) != 1 || got[0].Level != level || got[0].Message != msg {
		t.Errorf("flashes: got %+v, want one %s %q", got, level, msg)
	}
}
