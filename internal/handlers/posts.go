package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogpress/internal/blog"
	"blogpress/internal/models"
	"blogpress/internal/render"
	"blogpress/internal/session"
)

// Author groups the handlers through which signed-in users write their
// own posts. Routes are mounted behind middleware.RequireLogin.
type Author struct {
	renderer *render.Renderer
	svc      *blog.Service
}

// NewAuthor creates a new Author handler group.
func NewAuthor(renderer *render.Renderer, svc *blog.Service) *Author {
	return &Author{renderer: renderer, svc: svc}
}

func (a *Author) form(w http.ResponseWriter, r *http.Request, status int, title, action string, post *models.Post, in blog.PostInput, errs blog.ValidationErrors) {
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
	a.renderer.PageStatus(w, r, status, "public/post_form", &render.PageData{
		Title:   title,
		Section: "posts",
		Data: map[string]any{
			"Action":     action,
			"Post":       post,
			"Form":       in,
			"Errors":     errs,
			"Categories": cats,
			"Tags":       tags,
		},
	})
}

// CreatePage renders an empty post form.
func (a *Author) CreatePage(w http.ResponseWriter, r *http.Request) {
	in := blog.PostInput{Status: string(models.PostStatusDraft)}
	a.form(w, r, http.StatusOK, "New post", "/post/create/", nil, in, blog.ValidationErrors{})
}

// Create stores a new post authored by the signed-in user.
func (a *Author) Create(w http.ResponseWriter, r *http.Request) {
	in := postInput(r, false)
	upload, err := readUpload(r)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}

	post, err := a.svc.CreatePost(r.Context(), callerFromCtx(r.Context()), in, upload)
	if err != nil {
		if errs, ok := blog.AsValidation(err); ok {
			in.Normalize()
			a.form(w, r, http.StatusOK, "New post", "/post/create/", nil, in, errs)
			return
		}
		fail(a.renderer, w, r, err)
		return
	}

	redirectWith(w, r, session.LevelSuccess, "Post created successfully!", post.URL())
}

// editable loads the post named in the URL for its owner. Anyone else is
// sent back to the post with msg.
func (a *Author) editable(w http.ResponseWriter, r *http.Request, msg string) (*models.Post, bool) {
	post, err := a.svc.PostForEdit(r.Context(), callerFromCtx(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		a.denied(w, r, post, err, msg)
		return nil, false
	}
	return post, true
}

func (a *Author) denied(w http.ResponseWriter, r *http.Request, post *models.Post, err error, msg string) {
	if errors.Is(err, blog.ErrForbidden) && post != nil {
		redirectWith(w, r, session.LevelError, msg, post.URL())
		return
	}
	fail(a.renderer, w, r, err)
}

// UpdatePage renders the post form pre-filled for the owner.
func (a *Author) UpdatePage(w http.ResponseWriter, r *http.Request) {
	post, ok := a.editable(w, r, "You can only edit your own posts.")
	if !ok {
		return
	}
	a.form(w, r, http.StatusOK, "Edit post", "/post/"+post.Slug+"/update/", post, blog.FromPost(post), blog.ValidationErrors{})
}

// Update saves the owner's changes. A new upload replaces the image.
func (a *Author) Update(w http.ResponseWriter, r *http.Request) {
	in := postInput(r, false)
	upload, err := readUpload(r)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}

	post, err := a.svc.UpdatePost(r.Context(), callerFromCtx(r.Context()), chi.URLParam(r, "slug"), in, upload)
	if err != nil {
		if errs, ok := blog.AsValidation(err); ok {
			in.Normalize()
			a.form(w, r, http.StatusOK, "Edit post", "/post/"+post.Slug+"/update/", post, in, errs)
			return
		}
		a.denied(w, r, post, err, "You can only edit your own posts.")
		return
	}

	redirectWith(w, r, session.LevelSuccess, "Post updated successfully!", post.URL())
}

// DeletePage asks the owner to confirm.
func (a *Author) DeletePage(w http.ResponseWriter, r *http.Request) {
	post, ok := a.editable(w, r, "You can only delete your own posts.")
	if !ok {
		return
	}
	a.renderer.Page(w, r, "public/post_confirm_delete", &render.PageData{
		Title:   "Delete post",
		Section: "posts",
		Data:    map[string]any{"Post": post},
	})
}

// Delete removes the owner's post.
func (a *Author) Delete(w http.ResponseWriter, r *http.Request) {
	post, err := a.svc.DeletePost(r.Context(), callerFromCtx(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		a.denied(w, r, post, err, "You can only delete your own posts.")
		return
	}
	redirectWith(w, r, session.LevelSuccess, "Post deleted successfully!", "/")
}

// DeleteImage clears the featured image and always returns to the edit
// form.
func (a *Author) DeleteImage(w http.ResponseWriter, r *http.Request) {
	post, removed, err := a.svc.DeletePostImage(r.Context(), callerFromCtx(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		a.denied(w, r, post, err, "You can only edit your own posts.")
		return
	}
	target := "/post/" + post.Slug + "/update/"
	if removed {
		redirectWith(w, r, session.LevelSuccess, "Image deleted successfully!", target)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
