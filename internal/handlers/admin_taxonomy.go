package handlers

import (
	"fmt"
	"net/http"

	"blogpress/internal/blog"
	"blogpress/internal/session"
)

// ---------- Categories ----------

// CategoriesList lists categories with their published post counts.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	cats, err := a.svc.Categories(r.Context())
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.page(w, r, http.StatusOK, "categories", "Categories", "categories", map[string]any{"Categories": cats})
}

func categoryInput(r *http.Request) blog.CategoryInput {
	return blog.CategoryInput{
		Name:        r.PostFormValue("name"),
		Slug:        r.PostFormValue("slug"),
		Description: r.PostFormValue("description"),
	}
}

func (a *Admin) categoryForm(w http.ResponseWriter, r *http.Request, title, action string, in blog.CategoryInput, errs blog.ValidationErrors) {
	a.page(w, r, http.StatusOK, "category_form", title, "categories", map[string]any{
		"Action": action,
		"Form":   in,
		"Errors": errs,
	})
}

// CategoryNew renders an empty category form.
func (a *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	a.categoryForm(w, r, "Add category", "/admin/categories/new/", blog.CategoryInput{}, blog.ValidationErrors{})
}

// CategoryCreate adds a category.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	in := categoryInput(r)
	cat, err := a.svc.CreateCategory(r.Context(), callerFromCtx(r.Context()), in)
	if err != nil {
		if errs, ok := blog.AsValidation(err); ok {
			in.Normalize()
			a.categoryForm(w, r, "Add category", "/admin/categories/new/", in, errs)
			return
		}
		fail(a.renderer, w, r, err)
		return
	}
	redirectWith(w, r, session.LevelSuccess, done("category", cat.Name, "added"), "/admin/categories/")
}

// CategoryEdit renders the form for an existing category.
func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	cat, err := a.svc.Category(r.Context(), callerFromCtx(r.Context()), id)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	in := blog.CategoryInput{Name: cat.Name, Slug: cat.Slug, Description: cat.Description}
	a.categoryForm(w, r, "Change category", fmt.Sprintf("/admin/categories/%s/", id), in, blog.ValidationErrors{})
}

// CategoryUpdate saves a category.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	in := categoryInput(r)
	cat, err := a.svc.UpdateCategory(r.Context(), callerFromCtx(r.Context()), id, in)
	if err != nil {
		if errs, ok := blog.AsValidation(err); ok {
			in.Normalize()
			a.categoryForm(w, r, "Change category", fmt.Sprintf("/admin/categories/%s/", id), in, errs)
			return
		}
		fail(a.renderer, w, r, err)
		return
	}
	redirectWith(w, r, session.LevelSuccess, done("category", cat.Name, "changed"), "/admin/categories/")
}

// CategoryDeletePage asks for confirmation.
func (a *Admin) CategoryDeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	cat, err := a.svc.Category(r.Context(), callerFromCtx(r.Context()), id)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.confirmDelete(w, r, "categories", "category", cat.Name, "/admin/categories/",
		"Its posts are kept without a category.")
}

// CategoryDelete removes a category.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	caller := callerFromCtx(r.Context())
	cat, err := a.svc.Category(r.Context(), caller, id)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	if err := a.svc.DeleteCategory(r.Context(), caller, id); err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	redirectWith(w, r, session.LevelSuccess, done("category", cat.Name, "deleted"), "/admin/categories/")
}

// ---------- Tags ----------

// TagsList lists tags.
func (a *Admin) TagsList(w http.ResponseWriter, r *http.Request) {
	tags, err := a.svc.Tags(r.Context())
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.page(w, r, http.StatusOK, "tags", "Tags", "tags", map[string]any{"Tags": tags})
}

func tagInput(r *http.Request) blog.TagInput {
	return blog.TagInput{Name: r.PostFormValue("name"), Slug: r.PostFormValue("slug")}
}

func (a *Admin) tagForm(w http.ResponseWriter, r *http.Request, title, action string, in blog.TagInput, errs blog.ValidationErrors) {
	a.page(w, r, http.StatusOK, "tag_form", title, "tags", map[string]any{
		"Action": action,
		"Form":   in,
		"Errors": errs,
	})
}

// TagNew renders an empty tag form.
func (a *Admin) TagNew(w http.ResponseWriter, r *http.Request) {
	a.tagForm(w, r, "Add tag", "/admin/tags/new/", blog.TagInput{}, blog.ValidationErrors{})
}

// TagCreate adds a tag.
func (a *Admin) TagCreate(w http.ResponseWriter, r *http.Request) {
	in := tagInput(r)
	tag, err := a.svc.CreateTag(r.Context(), callerFromCtx(r.Context()), in)
	if err != nil {
		if errs, ok := blog.AsValidation(err); ok {
			in.Normalize()
			a.tagForm(w, r, "Add tag", "/admin/tags/new/", in, errs)
			return
		}
		fail(a.renderer, w, r, err)
		return
	}
	redirectWith(w, r, session.LevelSuccess, done("tag", tag.Name, "added"), "/admin/tags/")
}

// TagEdit renders the form for an existing tag.
func (a *Admin) TagEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	tag, err := a.svc.Tag(r.Context(), callerFromCtx(r.Context()), id)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.tagForm(w, r, "Change tag", fmt.Sprintf("/admin/tags/%s/", id),
		blog.TagInput{Name: tag.Name, Slug: tag.Slug}, blog.ValidationErrors{})
}

// TagUpdate saves a tag.
func (a *Admin) TagUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	in := tagInput(r)
	tag, err := a.svc.UpdateTag(r.Context(), callerFromCtx(r.Context()), id, in)
	if err != nil {
		if errs, ok := blog.AsValidation(err); ok {
			in.Normalize()
			a.tagForm(w, r, "Change tag", fmt.Sprintf("/admin/tags/%s/", id), in, errs)
			return
		}
		fail(a.renderer, w, r, err)
		return
	}
	redirectWith(w, r, session.LevelSuccess, done("tag", tag.Name, "changed"), "/admin/tags/")
}

// TagDeletePage asks for confirmation.
func (a *Admin) TagDeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	tag, err := a.svc.Tag(r.Context(), callerFromCtx(r.Context()), id)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.confirmDelete(w, r, "tags", "tag", tag.Name, "/admin/tags/", "It is removed from every post.")
}

// TagDelete removes a tag.
func (a *Admin) TagDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		a.renderer.Error(w, r, http.StatusNotFound)
		return
	}
	caller := callerFromCtx(r.Context())
	tag, err := a.svc.Tag(r.Context(), caller, id)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	if err := a.svc.DeleteTag(r.Context(), caller, id); err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	redirectWith(w, r, session.LevelSuccess, done("tag", tag.Name, "deleted"), "/admin/tags/")
}
