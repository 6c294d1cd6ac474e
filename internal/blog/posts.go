package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"blogpress/internal/models"
	"blogpress/internal/slug"
)

// maxSlugAttempts bounds the -2, -3, ... suffixes tried for a derived slug.
const maxSlugAttempts = 100

// reservedPostSlugs are taken by fixed routes under /post/.
var reservedPostSlugs = map[string]bool{"create": true}

// resolveRefs checks that the selected category and tags exist and returns
// them in the form the post stores.
func (s *Service) resolveRefs(ctx context.Context, in PostInput, errs ValidationErrors) (*uuid.UUID, []models.Tag, error) {
	var categoryID *uuid.UUID
	if in.Category != "" && !errs.Has("category") {
		id := uuid.MustParse(in.Category)
		cat, err := s.categories.FindByID(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("find category: %w", err)
		}
		if cat == nil {
			errs.Add("category", msgInvalidChoice)
		} else {
			categoryID = &cat.ID
		}
	}

	var tags []models.Tag
	if len(in.Tags) > 0 && !errs.Has("tags") {
		seen := make(map[uuid.UUID]bool, len(in.Tags))
		ids := make([]uuid.UUID, 0, len(in.Tags))
		for _, raw := range in.Tags {
			id := uuid.MustParse(raw)
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		found, err := s.tags.FindByIDs(ctx, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("find tags: %w", err)
		}
		if len(found) != len(ids) {
			errs.Add("tags", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", missingTag(ids, found)))
		} else {
			tags = found
		}
	}
	return categoryID, tags, nil
}

func missingTag(ids []uuid.UUID, found []models.Tag) string {
	have := make(map[uuid.UUID]bool, len(found))
	for _, t := range found {
		have[t.ID] = true
	}
	for _, id := range ids {
		if !have[id] {
			return id.String()
		}
	}
	return ""
}

// bindPost validates in and, when valid, copies it onto p. The slug and
// author are left to the caller.
func (s *Service) bindPost(ctx context.Context, p *models.Post, in PostInput, upload *Upload) error {
	errs := in.Validate()
	categoryID, tags, err := s.resolveRefs(ctx, in, errs)
	if err != nil {
		return err
	}
	if upload != nil {
		s.checkUpload(upload, errs)
	}
	if err := errs.Err(); err != nil {
		return err
	}

	p.Title = in.Title
	p.Content = in.Content
	p.CategoryID = categoryID
	p.Tags = tags
	p.Status = models.PostStatus(in.Status)
	p.MetaTitle = in.MetaTitle
	p.MetaDescription = in.MetaDescription
	return nil
}

// CreatePost creates a post authored by caller. A featured image is
// stored before the row is inserted and removed again if the insert fails.
func (s *Service) CreatePost(ctx context.Context, caller *Caller, in PostInput, upload *Upload) (*models.Post, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	in.Normalize()

	post := &models.Post{AuthorID: caller.ID}
	if err := s.bindPost(ctx, post, in, upload); err != nil {
		return nil, err
	}

	if upload != nil {
		key, err := s.storeImage(ctx, upload)
		if err != nil {
			return nil, err
		}
		post.FeaturedImage = &key
	}

	if err := s.insertPost(ctx, post, in.Slug); err != nil {
		s.discardImage(ctx, post.FeaturedImage)
		return nil, err
	}

	slog.Info("post created", "slug", post.Slug, "author", caller.Username)
	return post, nil
}

// insertPost inserts p. An explicit slug must be free; a derived one is
// suffixed until the unique constraint accepts it.
func (s *Service) insertPost(ctx context.Context, p *models.Post, explicit string) error {
	if explicit != "" {
		p.Slug = explicit
		return s.postWriteError(s.posts.Create(ctx, p))
	}

	base := slug.Generate(p.Title)
	for n := 1; n <= maxSlugAttempts; n++ {
		p.Slug = slug.WithSuffix(base, n, MaxSlugLen)
		if reservedPostSlugs[p.Slug] {
			continue
		}
		err := s.posts.Create(ctx, p)
		if err == nil {
			return nil
		}
		if field, ok := conflictField(err); ok && field == "slug" {
			continue
		}
		return s.postWriteError(err)
	}
	return fmt.Errorf("create post: no free slug for %q after %d attempts", base, maxSlugAttempts)
}

// postWriteError turns a slug conflict into a form error.
func (s *Service) postWriteError(err error) error {
	if err == nil {
		return nil
	}
	if field, ok := conflictField(err); ok {
		if field == "" {
			field = FormField
		}
		return ValidationErrors{field: "Post with this Slug already exists."}
	}
	return fmt.Errorf("save post: %w", err)
}

// PostForEdit loads a post by slug, whatever its status, and checks that
// caller may modify it. On ErrForbidden the post is still returned so the
// caller can redirect to it.
func (s *Service) PostForEdit(ctx context.Context, caller *Caller, slug string) (*models.Post, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	post, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if !CanModify(caller, post) {
		return post, ErrForbidden
	}
	return post, nil
}

// UpdatePost applies in to the caller's post. The slug and the author
// never change here. A new upload replaces the featured image.
func (s *Service) UpdatePost(ctx context.Context, caller *Caller, slug string, in PostInput, upload *Upload) (*models.Post, error) {
	post, err := s.PostForEdit(ctx, caller, slug)
	if err != nil {
		return post, err
	}
	in.Normalize()
	in.Slug = post.Slug

	if err := s.savePost(ctx, post, in, upload); err != nil {
		return post, err
	}
	slog.Info("post updated", "slug", post.Slug, "author", caller.Username)
	return post, nil
}

// savePost binds in onto post, swaps the featured image if one was
// uploaded and persists the result.
func (s *Service) savePost(ctx context.Context, post *models.Post, in PostInput, upload *Upload) error {
	updated := *post
	if err := s.bindPost(ctx, &updated, in, upload); err != nil {
		return err
	}
	updated.Slug = in.Slug

	var oldImage *string
	if upload != nil {
		key, err := s.storeImage(ctx, upload)
		if err != nil {
			return err
		}
		oldImage = updated.FeaturedImage
		updated.FeaturedImage = &key
	}

	if err := s.postWriteError(s.posts.Update(ctx, &updated)); err != nil {
		if upload != nil {
			s.discardImage(ctx, updated.FeaturedImage)
		}
		return err
	}
	s.discardImage(ctx, oldImage)

	*post = updated
	return nil
}

// DeletePost removes the caller's post. Its comments go with it.
func (s *Service) DeletePost(ctx context.Context, caller *Caller, slug string) (*models.Post, error) {
	post, err := s.PostForEdit(ctx, caller, slug)
	if err != nil {
		return post, err
	}
	if err := s.deletePost(ctx, post); err != nil {
		return post, err
	}
	slog.Info("post deleted", "slug", post.Slug, "author", caller.Username)
	return post, nil
}

func (s *Service) deletePost(ctx context.Context, post *models.Post) error {
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	s.discardImage(ctx, post.FeaturedImage)
	return nil
}

// DeletePostImage detaches the featured image of the caller's post and
// removes the stored file if it is still there. A post without an image
// is left as is.
func (s *Service) DeletePostImage(ctx context.Context, caller *Caller, slug string) (*models.Post, bool, error) {
	post, err := s.PostForEdit(ctx, caller, slug)
	if err != nil {
		return post, false, err
	}
	if !post.HasImage() {
		return post, false, nil
	}

	key := *post.FeaturedImage
	if s.files != nil {
		exists, err := s.files.Exists(ctx, key)
		if err != nil {
			return post, false, fmt.Errorf("check image: %w", err)
		}
		if exists {
			if err := s.files.Delete(ctx, key); err != nil {
				return post, false, fmt.Errorf("delete image: %w", err)
			}
		}
	}

	post.FeaturedImage = nil
	if err := s.posts.Update(ctx, post); err != nil {
		return post, false, fmt.Errorf("save post: %w", err)
	}
	slog.Info("featured image removed", "slug", post.Slug, "key", key)
	return post, true, nil
}
