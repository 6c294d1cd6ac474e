// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/blog"
	"blogpress/internal/models"
	"blogpress/internal/render"
	"blogpress/internal/session"
)

// Admin groups the staff-only handlers under /admin. Routes are mounted
// behind middleware.RequireStaff; the service checks staff rights again.
type Admin struct {
	renderer *render.Renderer
	svc      *blog.Service
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, svc *blog.Service) *Admin {
	return &Admin{renderer: renderer, svc: svc}
}

func (a *Admin) page(w http.ResponseWriter, r *http.Request, status int, name, title, section string, data map[string]any) {
	a.renderer.PageStatus(w, r, status, "admin/"+name, &render.PageData{
		Title:   title,
		Section: section,
		Data:    data,
	})
}

// confirmDelete renders the shared "are you sure" page.
func (a *Admin) confirmDelete(w http.ResponseWriter, r *http.Request, section, kind, object, back, note string) {
	a.page(w, r, http.StatusOK, "confirm_delete", "Are you sure?", section, map[string]any{
		"Kind":   kind,
		"Object": object,
		"Action": r.URL.Path,
		"Back":   back,
		"Note":   note,
	})
}

func done(kind, name, verb string) string {
	return fmt.Sprintf("The %s “%s” was %s successfully.", kind, name, verb)
}

// Dashboard shows site-wide counters.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := a.svc.Stats(r.Context(), callerFromCtx(r.Context()))
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.page(w, r, http.StatusOK, "dashboard", "Dashboard", "dashboard", map[string]any{"Stats": stats})
}

// ---------- Posts ----------

// postFilter reads the list filters. Unknown values are ignored.
// postFilter reads the post list filters. created is the recognised
// created-date choice, or blank for any date.
func postFilter(q url.Values, now time.Time) (f blog.PostFilter, created string) {
	f.Search = strings.TrimSpace(q.Get("q"))
	if s := models.PostStatus(q.Get("status")); s.Valid() {
		f.Status = s
	}
	if id, err := uuid.Parse(q.Get("category")); err == nil {
		f.CategoryID = &id
	}
	if since, ok := blog.CreatedSince(q.Get("created"), now); ok {
		f.CreatedSince = since
		created = q.Get("created")
	}
	return f, created
}

// PostsList lists posts of every status with filters and search.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, created := postFilter(q, time.Now())
	page, err := a.svc.AdminPosts(r.Context(), callerFromCtx(r.Context()), f, q.Get("page"))
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	cats, err := a.svc.Categories(r.Context())
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	q.Del("page")
	a.page(w, r, http.StatusOK, "posts", "Posts", "posts", map[string]any{
		"Page":       page,
		"Filter":     f,
		"Created":    created,
		"Query":      q,
		"Categories": cats,
	})
}

func (a *Admin) postForm(w http.ResponseWriter, r *http.Request, status int, post *models.Post, in blog.PostInput, errs blog.ValidationErrors) {
	caller := callerFromCtx(r.Context())
	comments, err := a.svc.PostComments(r.Context(), caller, post.ID)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	cats, err := a.svc.Categories(r.Context())
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	tags, err := a.svc.Tags(r.Context())
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.page(w, r, status, "post_form", "Change post", "posts", map[string]any{
		"Action":     fmt.Sprintf("/admin/posts/%s/", post.ID),
		"Post":       post,
		"Form":       in,
		"Errors":     errs,
		"Comments":   comments,
		"Categories": cats,
		"Tags":       tags,
	})
}

// PostEdit renders the admin post form.
func (a *Admin) PostEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	post, err := a.svc.PostByID(r.Context(), callerFromCtx(r.Context()), id)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.postForm(w, r, http.StatusOK, post, blog.FromPost(post), blog.ValidationErrors{})
}

// PostUpdate saves the admin post form. The slug is editable here.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	in := postInput(r, true)
	upload, err := readUpload(r)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	post, err := a.svc.AdminUpdatePost(r.Context(), callerFromCtx(r.Context()), id, in, upload)
	if err != nil {
		if errs, ok := blog.AsValidation(err); ok && post != nil {
			in.Normalize()
			a.postForm(w, r, http.StatusOK, post, in, errs)
			return
		}
		fail(a.renderer, w, r, err)
		return
	}
	redirectWith(w, r, session.LevelSuccess, done("post", post.Title, "changed"), "/admin/posts/")
}

// PostDeletePage asks for confirmation.
func (a *Admin) PostDeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	post, err := a.svc.PostByID(r.Context(), callerFromCtx(r.Context()), id)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.confirmDelete(w, r, "posts", "post", post.Title, "/admin/posts/", "Its comments will be deleted too.")
}

// PostDelete removes any post.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	caller := callerFromCtx(r.Context())
	post, err := a.svc.PostByID(r.Context(), caller, id)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	if err := a.svc.AdminDeletePost(r.Context(), caller, id); err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	redirectWith(w, r, session.LevelSuccess, done("post", post.Title, "deleted"), "/admin/posts/")
}

// ---------- Comments ----------

// CommentsList lists comments for moderation.
func (a *Admin) CommentsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := blog.CommentFilter{Search: strings.TrimSpace(q.Get("q"))}
	approved := q.Get("approved")
	switch approved {
	case "1":
		v := true
		f.Approved = &v
	case "0":
		v := false
		f.Approved = &v
	default:
		approved = ""
	}

	page, err := a.svc.AdminComments(r.Context(), callerFromCtx(r.Context()), f, q.Get("page"))
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	q.Del("page")
	a.page(w, r, http.StatusOK, "comments", "Comments", "comments", map[string]any{
		"Page":     page,
		"Filter":   f,
		"Approved": approved,
		"Query":    q,
	})
}

// CommentsApprove runs the bulk approve_comments action on the selected
// comments.
func (a *Admin) CommentsApprove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	var ids []uuid.UUID
	for _, raw := range r.PostForm["ids"] {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		redirectWith(w, r, session.LevelInfo,
			"Items must be selected in order to perform actions on them. No items have been changed.",
			"/admin/comments/")
		return
	}
	a.approve(w, r, ids)
}

// CommentApprove approves a single comment.
func (a *Admin) CommentApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	a.approve(w, r, []uuid.UUID{id})
}

func (a *Admin) approve(w http.ResponseWriter, r *http.Request, ids []uuid.UUID) {
	n, err := a.svc.ApproveComments(r.Context(), callerFromCtx(r.Context()), ids...)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	switch n {
	case 0:
		redirectWith(w, r, session.LevelInfo, "The selected comments were already approved. No items have been changed.", "/admin/comments/")
	case 1:
		redirectWith(w, r, session.LevelSuccess, "1 comment was approved.", "/admin/comments/")
	default:
		redirectWith(w, r, session.LevelSuccess, fmt.Sprintf("%d comments were approved.", n), "/admin/comments/")
	}
}

// CommentDeletePage asks for confirmation.
func (a *Admin) CommentDeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	c, err := a.svc.Comment(r.Context(), callerFromCtx(r.Context()), id)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.confirmDelete(w, r, "comments", "comment", c.String(), "/admin/comments/", "")
}

// CommentDelete removes a comment.
func (a *Admin) CommentDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	if err := a.svc.DeleteComment(r.Context(), callerFromCtx(r.Context()), id); err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	redirectWith(w, r, session.LevelSuccess, "The comment was deleted successfully.", "/admin/comments/")
}

// ---------- Users ----------

// UsersList lists all accounts.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.svc.Users(r.Context(), callerFromCtx(r.Context()))
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.page(w, r, http.StatusOK, "users", "Users", "users", map[string]any{"Users": users})
}

// UserNew renders the add-user form.
func (a *Admin) UserNew(w http.ResponseWriter, r *http.Request) {
	a.page(w, r, http.StatusOK, "user_form", "Add user", "users", map[string]any{
		"Form":   blog.UserInput{},
		"Errors": blog.ValidationErrors{},
	})
}

// UserCreate adds an account.
func (a *Admin) UserCreate(w http.ResponseWriter, r *http.Request) {
	in := blog.UserInput{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		IsStaff:  r.PostFormValue("is_staff") == "on",
	}
	user, err := a.svc.CreateUser(r.Context(), callerFromCtx(r.Context()), in)
	if err != nil {
		if errs, ok := blog.AsValidation(err); ok {
			in.Normalize()
			in.Password = ""
			a.page(w, r, http.StatusOK, "user_form", "Add user", "users", map[string]any{
				"Form":   in,
				"Errors": errs,
			})
			return
		}
		fail(a.renderer, w, r, err)
		return
	}
	redirectWith(w, r, session.LevelSuccess, done("user", user.Username, "added"), "/admin/users/")
}

// UserResetTwoFA clears a user's TOTP enrollment.
func (a *Admin) UserResetTwoFA(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	if err := a.svc.ResetTwoFA(r.Context(), callerFromCtx(r.Context()), id); err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	redirectWith(w, r, session.LevelSuccess, "Two-factor authentication was reset.", "/admin/users/")
}
