package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"blogpress/internal/blog"
	"blogpress/internal/models"
)

// PostRepo implements blog.PostRepository.
type PostRepo struct{ db *DB }

// postView copies a stored post and fills its virtual fields. Caller holds
// the lock.
func (db *DB) postView(p *models.Post) models.Post {
	cp := *p
	if u, ok := db.users[p.AuthorID]; ok {
		cp.AuthorName = u.Username
	}
	cp.Category = nil
	if p.CategoryID != nil {
		if c, ok := db.categories[*p.CategoryID]; ok {
			cat := *c
			cp.Category = &cat
		}
	}
	cp.Tags = db.tagsByIDs(db.postTags[p.ID])
	return cp
}

// checkPost enforces the references and the unique slug.
func (db *DB) checkPost(p *models.Post) error {
	if _, ok := db.users[p.AuthorID]; !ok {
		return blog.ErrNotFound
	}
	for id, other := range db.posts {
		if id != p.ID && other.Slug == p.Slug {
			return &blog.ConflictError{Field: "slug"}
		}
	}
	return nil
}

// storePost saves p and its tag links. Caller holds the write lock.
func (db *DB) storePost(p *models.Post) {
	cp := *p
	cp.AuthorName, cp.Category, cp.Tags = "", nil, nil
	db.posts[p.ID] = &cp
	db.postTags[p.ID] = p.TagIDs()
}

func (r *PostRepo) Create(_ context.Context, p *models.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if err := r.db.checkPost(p); err != nil {
		return err
	}
	r.db.track(&p.ID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	p.UpdatedAt = now()
	r.db.storePost(p)
	return nil
}

// Update rewrites p. CreatedAt and the author are kept from the stored row.
func (r *PostRepo) Update(_ context.Context, p *models.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.posts[p.ID]
	if !ok {
		return blog.ErrNotFound
	}
	if err := r.db.checkPost(p); err != nil {
		return err
	}
	p.CreatedAt = stored.CreatedAt
	p.AuthorID = stored.AuthorID
	p.UpdatedAt = now()
	r.db.storePost(p)
	return nil
}

// Delete removes the post, its tag links and its comments.
func (r *PostRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.posts[id]; !ok {
		return blog.ErrNotFound
	}
	delete(r.db.posts, id)
	delete(r.db.postTags, id)
	for cid, c := range r.db.comments {
		if c.PostID == id {
			delete(r.db.comments, cid)
		}
	}
	return nil
}

func (r *PostRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.posts[id]
	if !ok {
		return nil, nil
	}
	v := r.db.postView(p)
	return &v, nil
}

func (r *PostRepo) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, p := range r.db.posts {
		if p.Slug == slug {
			v := r.db.postView(p)
			return &v, nil
		}
	}
	return nil, nil
}

func (db *DB) matchPost(p *models.Post, f blog.PostFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
		return false
	}
	if f.TagID != nil {
		tagged := false
		for _, id := range db.postTags[p.ID] {
			if id == *f.TagID {
				tagged = true
				break
			}
		}
		if !tagged {
			return false
		}
	}
	if f.Search != "" && !containsFold(p.Title, f.Search) && !containsFold(p.Content, f.Search) {
		return false
	}
	if !f.CreatedSince.IsZero() && p.CreatedAt.Before(f.CreatedSince) {
		return false
	}
	return true
}

func (db *DB) filterPosts(f blog.PostFilter) []*models.Post {
	var matched []*models.Post
	for _, p := range db.posts {
		if db.matchPost(p, f) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return db.newerFirst(matched[i].ID, matched[j].ID, matched[i].CreatedAt, matched[j].CreatedAt)
	})
	return matched
}

func (r *PostRepo) List(_ context.Context, f blog.PostFilter, limit, offset int) ([]models.Post, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	page := window(r.db.filterPosts(f), limit, offset)
	items := make([]models.Post, 0, len(page))
	for _, p := range page {
		items = append(items, r.db.postView(p))
	}
	return items, nil
}

func (r *PostRepo) Count(_ context.Context, f blog.PostFilter) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return len(r.db.filterPosts(f)), nil
}
