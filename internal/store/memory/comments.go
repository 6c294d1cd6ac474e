package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"blogpress/internal/blog"
	"blogpress/internal/models"
)

// CommentRepo implements blog.CommentRepository.
type CommentRepo struct{ db *DB }

func (db *DB) commentView(c *models.Comment) models.Comment {
	cp := *c
	if u, ok := db.users[c.AuthorID]; ok {
		cp.AuthorName = u.Username
	}
	if p, ok := db.posts[c.PostID]; ok {
		cp.PostTitle = p.Title
		cp.PostSlug = p.Slug
	}
	return cp
}

func (r *CommentRepo) Create(_ context.Context, c *models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.posts[c.PostID]; !ok {
		return blog.ErrNotFound
	}
	if _, ok := r.db.users[c.AuthorID]; !ok {
		return blog.ErrNotFound
	}
	r.db.track(&c.ID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now()
	}
	cp := *c
	cp.AuthorName, cp.PostTitle, cp.PostSlug = "", "", ""
	r.db.comments[c.ID] = &cp
	return nil
}

func (r *CommentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.comments[id]; !ok {
		return blog.ErrNotFound
	}
	delete(r.db.comments, id)
	return nil
}

func (r *CommentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.comments[id]
	if !ok {
		return nil, nil
	}
	v := r.db.commentView(c)
	return &v, nil
}

// ListForPost returns a post's comments oldest first.
func (r *CommentRepo) ListForPost(_ context.Context, postID uuid.UUID, approvedOnly bool) ([]models.Comment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var items []models.Comment
	for _, c := range r.db.comments {
		if c.PostID == postID && (!approvedOnly || c.Approved) {
			items = append(items, r.db.commentView(c))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return r.db.newerFirst(items[j].ID, items[i].ID, items[j].CreatedAt, items[i].CreatedAt)
	})
	return items, nil
}

func (db *DB) filterComments(f blog.CommentFilter) []*models.Comment {
	var matched []*models.Comment
	for _, c := range db.comments {
		if f.PostID != nil && c.PostID != *f.PostID {
			continue
		}
		if f.Approved != nil && c.Approved != *f.Approved {
			continue
		}
		if f.Search != "" && !containsFold(c.Content, f.Search) {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool {
		return db.newerFirst(matched[i].ID, matched[j].ID, matched[i].CreatedAt, matched[j].CreatedAt)
	})
	return matched
}

func (r *CommentRepo) List(_ context.Context, f blog.CommentFilter, limit, offset int) ([]models.Comment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	page := window(r.db.filterComments(f), limit, offset)
	items := make([]models.Comment, 0, len(page))
	for _, c := range page {
		items = append(items, r.db.commentView(c))
	}
	return items, nil
}

func (r *CommentRepo) Count(_ context.Context, f blog.CommentFilter) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return len(r.db.filterComments(f)), nil
}

// Approve flips pending comments to approved. Unknown IDs are ignored.
func (r *CommentRepo) Approve(_ context.Context, ids []uuid.UUID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n := 0
	for _, id := range ids {
		if c, ok := r.db.comments[id]; ok && !c.Approved {
			c.Approved = true
			n++
		}
	}
	return n, nil
}
