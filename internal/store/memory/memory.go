// Package memory implements the blog repositories on mutex-guarded maps.
// It keeps the uniqueness guarantees of the PostgreSQL schema and is used
// for local demos and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/blog"
	"blogpress/internal/models"
)

var (
	_ blog.PostRepository     = (*PostRepo)(nil)
	_ blog.CategoryRepository = (*CategoryRepo)(nil)
	_ blog.TagRepository      = (*TagRepo)(nil)
	_ blog.CommentRepository  = (*CommentRepo)(nil)
	_ blog.UserRepository     = (*UserRepo)(nil)
)

// DB holds every table. The repository views returned by its accessors
// share one lock.
type DB struct {
	mu         sync.RWMutex
	seq        int64
	order      map[uuid.UUID]int64 // insertion order, for stable ties
	users      map[uuid.UUID]*models.User
	categories map[uuid.UUID]*models.Category
	tags       map[uuid.UUID]*models.Tag
	posts      map[uuid.UUID]*models.Post
	postTags   map[uuid.UUID][]uuid.UUID
	comments   map[uuid.UUID]*models.Comment
}

// New returns an empty database.
func New() *DB {
	return &DB{
		order:      make(map[uuid.UUID]int64),
		users:      make(map[uuid.UUID]*models.User),
		categories: make(map[uuid.UUID]*models.Category),
		tags:       make(map[uuid.UUID]*models.Tag),
		posts:      make(map[uuid.UUID]*models.Post),
		postTags:   make(map[uuid.UUID][]uuid.UUID),
		comments:   make(map[uuid.UUID]*models.Comment),
	}
}

// Posts returns the post repository.
func (db *DB) Posts() *PostRepo { return &PostRepo{db: db} }

// Categories returns the category repository.
func (db *DB) Categories() *CategoryRepo { return &CategoryRepo{db: db} }

// Tags returns the tag repository.
func (db *DB) Tags() *TagRepo { return &TagRepo{db: db} }

// Comments returns the comment repository.
func (db *DB) Comments() *CommentRepo { return &CommentRepo{db: db} }

// Users returns the user repository.
func (db *DB) Users() *UserRepo { return &UserRepo{db: db} }

// track assigns an ID if missing and records insertion order.
// Caller holds the write lock.
func (db *DB) track(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	db.seq++
	db.order[*id] = db.seq
}

// now is truncated to microseconds like a PostgreSQL timestamptz.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// newerFirst orders by created_at descending, later inserts first on ties.
func (db *DB) newerFirst(a, b uuid.UUID, ta, tb time.Time) bool {
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return db.order[a] > db.order[b]
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// --- Users ---

// UserRepo implements blog.UserRepository.
type UserRepo struct{ db *DB }

func (r *UserRepo) Create(_ context.Context, u *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, other := range r.db.users {
		if other.Username == u.Username {
			return &blog.ConflictError{Field: "username"}
		}
		if u.Email != "" && strings.EqualFold(other.Email, u.Email) {
			return &blog.ConflictError{Field: "email"}
		}
	}
	r.db.track(&u.ID)
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.db.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(_ context.Context) ([]models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	items := make([]models.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		items = append(items, *u)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Username < items[j].Username })
	return items, nil
}

func (r *UserRepo) update(id uuid.UUID, fn func(u *models.User)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return blog.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = now()
	return nil
}

func (r *UserRepo) SetTOTPSecret(_ context.Context, id uuid.UUID, secret string) error {
	return r.update(id, func(u *models.User) { u.TOTPSecret = &secret })
}

func (r *UserRepo) EnableTOTP(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(u *models.User) { u.TOTPEnabled = true })
}

func (r *UserRepo) ResetTOTP(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(u *models.User) {
		u.TOTPSecret = nil
		u.TOTPEnabled = false
	})
}
