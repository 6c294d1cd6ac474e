package blog

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/models"
)

// Repositories return (nil, nil) from Find methods when nothing matches and
// report unique-constraint violations as *ConflictError. Implementations
// live in internal/store (PostgreSQL) and internal/store/memory.

// PostFilter narrows post listings. Zero values mean "no constraint".
type PostFilter struct {
	Status     models.PostStatus
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
	Search     string // case-insensitive match on title or content
	// CreatedSince keeps posts created at or after this instant.
	CreatedSince time.Time
}

// PostRepository persists posts and their tag links. Listings are ordered
// newest first by created_at.
type PostRepository interface {
	// Create inserts p with its tag links and fills ID and timestamps.
	Create(ctx context.Context, p *models.Post) error
	// Update rewrites every mutable column and the tag links, refreshing UpdatedAt.
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, f PostFilter, limit, offset int) ([]models.Post, error)
	Count(ctx context.Context, f PostFilter) (int, error)
}

// CategoryRepository persists categories. Deleting a category nullifies the
// category of its posts.
type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

// TagRepository persists tags.
type TagRepository interface {
	Create(ctx context.Context, t *models.Tag) error
	Update(ctx context.Context, t *models.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tag, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error)
	List(ctx context.Context) ([]models.Tag, error)
}

// CommentFilter narrows comment listings in the admin interface.
type CommentFilter struct {
	PostID   *uuid.UUID
	Approved *bool
	Search   string
}

// CommentRepository persists comments.
type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	// ListForPost returns a post's comments oldest first.
	ListForPost(ctx context.Context, postID uuid.UUID, approvedOnly bool) ([]models.Comment, error)
	// List returns comments newest first.
	List(ctx context.Context, f CommentFilter, limit, offset int) ([]models.Comment, error)
	Count(ctx context.Context, f CommentFilter) (int, error)
	// Approve marks the given comments approved and returns how many
	// changed state. Already-approved comments are left untouched.
	Approve(ctx context.Context, ids []uuid.UUID) (int, error)
}

// UserRepository persists accounts.
type UserRepository interface {
	// Create inserts u; the caller sets PasswordHash.
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	SetTOTPSecret(ctx context.Context, id uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, id uuid.UUID) error
	ResetTOTP(ctx context.Context, id uuid.UUID) error
}

// FileStore holds uploaded featured images by key.
type FileStore interface {
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
