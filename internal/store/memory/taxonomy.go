package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"blogpress/internal/blog"
	"blogpress/internal/models"
)

// CategoryRepo implements blog.CategoryRepository.
type CategoryRepo struct{ db *DB }

// checkCategory enforces unique name and slug. Caller holds the lock.
func (db *DB) checkCategory(c *models.Category) error {
	for id, other := range db.categories {
		if id == c.ID {
			continue
		}
		if other.Name == c.Name {
			return &blog.ConflictError{Field: "name"}
		}
		if other.Slug == c.Slug {
			return &blog.ConflictError{Field: "slug"}
		}
	}
	return nil
}

// publishedIn counts published posts matching fn. Caller holds the lock.
func (db *DB) publishedIn(fn func(p *models.Post) bool) int {
	n := 0
	for _, p := range db.posts {
		if p.IsPublished() && fn(p) {
			n++
		}
	}
	return n
}

func (db *DB) categoryView(c *models.Category) models.Category {
	cp := *c
	cp.PostCount = db.publishedIn(func(p *models.Post) bool {
		return p.CategoryID != nil && *p.CategoryID == c.ID
	})
	return cp
}

func (r *CategoryRepo) Create(_ context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if err := r.db.checkCategory(c); err != nil {
		return err
	}
	r.db.track(&c.ID)
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.db.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepo) Update(_ context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.categories[c.ID]
	if !ok {
		return blog.ErrNotFound
	}
	if err := r.db.checkCategory(c); err != nil {
		return err
	}
	c.CreatedAt = stored.CreatedAt
	c.UpdatedAt = now()
	cp := *c
	r.db.categories[c.ID] = &cp
	return nil
}

// Delete removes the category and uncategorizes its posts.
func (r *CategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.categories[id]; !ok {
		return blog.ErrNotFound
	}
	delete(r.db.categories, id)
	for _, p := range r.db.posts {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
		}
	}
	return nil
}

func (r *CategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.categories[id]
	if !ok {
		return nil, nil
	}
	v := r.db.categoryView(c)
	return &v, nil
}

func (r *CategoryRepo) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, c := range r.db.categories {
		if c.Slug == slug {
			v := r.db.categoryView(c)
			return &v, nil
		}
	}
	return nil, nil
}

func (r *CategoryRepo) List(_ context.Context) ([]models.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	items := make([]models.Category, 0, len(r.db.categories))
	for _, c := range r.db.categories {
		items = append(items, r.db.categoryView(c))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// TagRepo implements blog.TagRepository.
type TagRepo struct{ db *DB }

func (db *DB) checkTag(t *models.Tag) error {
	for id, other := range db.tags {
		if id == t.ID {
			continue
		}
		if other.Name == t.Name {
			return &blog.ConflictError{Field: "name"}
		}
		if other.Slug == t.Slug {
			return &blog.ConflictError{Field: "slug"}
		}
	}
	return nil
}

func (db *DB) tagView(t *models.Tag) models.Tag {
	cp := *t
	cp.PostCount = db.publishedIn(func(p *models.Post) bool {
		for _, id := range db.postTags[p.ID] {
			if id == t.ID {
				return true
			}
		}
		return false
	})
	return cp
}

func (r *TagRepo) Create(_ context.Context, t *models.Tag) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if err := r.db.checkTag(t); err != nil {
		return err
	}
	r.db.track(&t.ID)
	t.CreatedAt = now()
	cp := *t
	r.db.tags[t.ID] = &cp
	return nil
}

func (r *TagRepo) Update(_ context.Context, t *models.Tag) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.tags[t.ID]
	if !ok {
		return blog.ErrNotFound
	}
	if err := r.db.checkTag(t); err != nil {
		return err
	}
	t.CreatedAt = stored.CreatedAt
	cp := *t
	r.db.tags[t.ID] = &cp
	return nil
}

// Delete removes the tag and every link to it.
func (r *TagRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.tags[id]; !ok {
		return blog.ErrNotFound
	}
	delete(r.db.tags, id)
	for postID, ids := range r.db.postTags {
		kept := ids[:0]
		for _, tid := range ids {
			if tid != id {
				kept = append(kept, tid)
			}
		}
		r.db.postTags[postID] = kept
	}
	return nil
}

func (r *TagRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Tag, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, ok := r.db.tags[id]
	if !ok {
		return nil, nil
	}
	v := r.db.tagView(t)
	return &v, nil
}

func (r *TagRepo) FindBySlug(_ context.Context, slug string) (*models.Tag, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, t := range r.db.tags {
		if t.Slug == slug {
			v := r.db.tagView(t)
			return &v, nil
		}
	}
	return nil, nil
}

// FindByIDs returns the tags that exist among ids, by name.
func (r *TagRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return r.db.tagsByIDs(ids), nil
}

// tagsByIDs resolves ids to tags sorted by name. Caller holds the lock.
func (db *DB) tagsByIDs(ids []uuid.UUID) []models.Tag {
	seen := make(map[uuid.UUID]bool, len(ids))
	items := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := db.tags[id]; ok && !seen[id] {
			seen[id] = true
			items = append(items, *t)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

func (r *TagRepo) List(_ context.Context) ([]models.Tag, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	items := make([]models.Tag, 0, len(r.db.tags))
	for _, t := range r.db.tags {
		items = append(items, r.db.tagView(t))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}
