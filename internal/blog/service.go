// Package blog holds the blog's business rules: visibility of drafts,
// post ownership, comment moderation and the admin operations on top of
// the repositories. HTTP handlers translate its sentinel errors into
// redirects and status codes.
package blog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"blogpress/internal/models"
	"blogpress/internal/paginate"
)

// DefaultPerPage is the listing page size used when none is configured.
const DefaultPerPage = 10

// Deps are the collaborators of a Service. Files may be nil, in which
// case image uploads are rejected and image removal only clears the
// reference.
type Deps struct {
	Posts      PostRepository
	Categories CategoryRepository
	Tags       TagRepository
	Comments   CommentRepository
	Users      UserRepository
	Files      FileStore
	PerPage    int
}

// Service implements the blog operations.
type Service struct {
	posts      PostRepository
	categories CategoryRepository
	tags       TagRepository
	comments   CommentRepository
	users      UserRepository
	files      FileStore
	perPage    int
}

// NewService wires a Service from its dependencies.
func NewService(d Deps) *Service {
	perPage := d.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return &Service{
		posts:      d.Posts,
		categories: d.Categories,
		tags:       d.Tags,
		comments:   d.Comments,
		users:      d.Users,
		files:      d.Files,
		perPage:    perPage,
	}
}

// PerPage returns the listing page size.
func (s *Service) PerPage() int {
	return s.perPage
}

// listPosts resolves rawPage against the filtered count and loads the page.
func (s *Service) listPosts(ctx context.Context, f PostFilter, rawPage string) (paginate.Page[models.Post], error) {
	total, err := s.posts.Count(ctx, f)
	if err != nil {
		return paginate.Page[models.Post]{}, fmt.Errorf("count posts: %w", err)
	}
	win := paginate.New(rawPage, total, s.perPage)
	items, err := s.posts.List(ctx, f, win.PerPage, win.Offset())
	if err != nil {
		return paginate.Page[models.Post]{}, fmt.Errorf("list posts: %w", err)
	}
	return paginate.Page[models.Post]{Window: win, Items: items}, nil
}

// PublishedPosts returns one page of published posts, newest first.
func (s *Service) PublishedPosts(ctx context.Context, rawPage string) (paginate.Page[models.Post], error) {
	return s.listPosts(ctx, PostFilter{Status: models.PostStatusPublished}, rawPage)
}

// CategoryPosts returns the category identified by slug and one page of
// its published posts.
func (s *Service) CategoryPosts(ctx context.Context, slug, rawPage string) (*models.Category, paginate.Page[models.Post], error) {
	cat, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, paginate.Page[models.Post]{}, fmt.Errorf("find category: %w", err)
	}
	if cat == nil {
		return nil, paginate.Page[models.Post]{}, ErrNotFound
	}
	page, err := s.listPosts(ctx, PostFilter{Status: models.PostStatusPublished, CategoryID: &cat.ID}, rawPage)
	return cat, page, err
}

// TagPosts returns the tag identified by slug and one page of its
// published posts.
func (s *Service) TagPosts(ctx context.Context, slug, rawPage string) (*models.Tag, paginate.Page[models.Post], error) {
	tag, err := s.tags.FindBySlug(ctx, slug)
	if err != nil {
		return nil, paginate.Page[models.Post]{}, fmt.Errorf("find tag: %w", err)
	}
	if tag == nil {
		return nil, paginate.Page[models.Post]{}, ErrNotFound
	}
	page, err := s.listPosts(ctx, PostFilter{Status: models.PostStatusPublished, TagID: &tag.ID}, rawPage)
	return tag, page, err
}

// PublishedPost looks up a post by slug for public display. Drafts are
// reported as ErrNotFound so their existence does not leak.
func (s *Service) PublishedPost(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if post == nil || !post.IsPublished() {
		return nil, ErrNotFound
	}
	return post, nil
}

// ApprovedComments returns the approved comments of a post, oldest first.
func (s *Service) ApprovedComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	comments, err := s.comments.ListForPost(ctx, postID, true)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Categories lists every category by name.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Tags lists every tag by name.
func (s *Service) Tags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}
