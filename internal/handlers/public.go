// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogpress/internal/blog"
	"blogpress/internal/middleware"
	"blogpress/internal/models"
	"blogpress/internal/render"
	"blogpress/internal/session"
)

// Public groups the reader-facing handlers: listings, post detail and
// comment submission.
type Public struct {
	renderer *render.Renderer
	svc      *blog.Service
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, svc *blog.Service) *Public {
	return &Public{renderer: renderer, svc: svc}
}

// sidebar loads the category and tag lists shown next to every listing.
func (p *Public) sidebar(ctx context.Context, data map[string]any) error {
	cats, err := p.svc.Categories(ctx)
	if err != nil {
		return err
	}
	tags, err := p.svc.Tags(ctx)
	if err != nil {
		return err
	}
	data["Categories"] = cats
	data["Tags"] = tags
	return nil
}

func (p *Public) list(w http.ResponseWriter, r *http.Request, title string, data map[string]any) {
	if err := p.sidebar(r.Context(), data); err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	data["Heading"] = title
	p.renderer.Page(w, r, "public/post_list", &render.PageData{
		Title:   title,
		Section: "posts",
		Data:    data,
	})
}

// Home lists published posts, newest first.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	page, err := p.svc.PublishedPosts(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	p.list(w, r, "Latest posts", map[string]any{"Page": page})
}

// CategoryPosts lists the published posts of one category.
func (p *Public) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	cat, page, err := p.svc.CategoryPosts(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("page"))
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	p.list(w, r, "Category: "+cat.Name, map[string]any{"Page": page, "Category": cat})
}

// TagPosts lists the published posts carrying one tag.
func (p *Public) TagPosts(w http.ResponseWriter, r *http.Request) {
	tag, page, err := p.svc.TagPosts(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("page"))
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	p.list(w, r, "Tag: "+tag.Name, map[string]any{"Page": page, "Tag": tag})
}

// PostDetail shows a published post with its approved comments.
func (p *Public) PostDetail(w http.ResponseWriter, r *http.Request) {
	post, err := p.svc.PublishedPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	p.detail(w, r, post, blog.CommentInput{}, blog.ValidationErrors{})
}

func (p *Public) detail(w http.ResponseWriter, r *http.Request, post *models.Post, form blog.CommentInput, errs blog.ValidationErrors) {
	comments, err := p.svc.ApprovedComments(r.Context(), post.ID)
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	data := map[string]any{
		"Post":            post,
		"Comments":        comments,
		"Form":            form,
		"Errors":          errs,
		"CanEdit":         blog.CanModify(callerFromCtx(r.Context()), post),
		"MetaDescription": post.MetaDescription,
	}
	if err := p.sidebar(r.Context(), data); err != nil {
		fail(p.renderer, w, r, err)
		return
	}
	title := post.Title
	if post.MetaTitle != "" {
		title = post.MetaTitle
	}
	p.renderer.Page(w, r, "public/post_detail", &render.PageData{
		Title:   title,
		Section: "posts",
		Data:    data,
	})
}

// CommentSubmit stores a comment for moderation. Unknown or draft posts are
// a 404 for everyone; anonymous visitors are then sent to the login page and
// nothing is saved.
func (p *Public) CommentSubmit(w http.ResponseWriter, r *http.Request) {
	post, err := p.svc.PublishedPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		fail(p.renderer, w, r, err)
		return
	}

	caller := callerFromCtx(r.Context())
	if caller == nil {
		redirectWith(w, r, session.LevelError, "You must be logged in to comment.",
			middleware.LoginURL(post.URL()))
		return
	}

	in := blog.CommentInput{Content: r.PostFormValue("content")}
	if _, err := p.svc.SubmitComment(r.Context(), caller, post, in); err != nil {
		if errs, ok := blog.AsValidation(err); ok {
			p.detail(w, r, post, in, errs)
			return
		}
		if errors.Is(err, blog.ErrUnauthenticated) {
			http.Redirect(w, r, middleware.LoginURL(post.URL()), http.StatusSeeOther)
			return
		}
		fail(p.renderer, w, r, err)
		return
	}

	redirectWith(w, r, session.LevelSuccess, "Your comment has been submitted for approval.", post.URL())
}
