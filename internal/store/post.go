package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"blogpress/internal/blog"
	"blogpress/internal/models"
)

// PostStore manages posts and their tag links.
type PostStore struct {
	db *sql.DB
}

// NewPostStore returns a new PostStore.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postSelect joins the author name and category for display.
const postSelect = `
	SELECT p.id, p.title, p.slug, p.author_id, p.content, p.featured_image,
	       p.category_id, p.status, p.meta_title, p.meta_description,
	       p.created_at, p.updated_at,
	       u.username, c.name, c.slug
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var (
		p               models.Post
		catName, catSlg sql.NullString
	)
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.Content, &p.FeaturedImage,
		&p.CategoryID, &p.Status, &p.MetaTitle, &p.MetaDescription,
		&p.CreatedAt, &p.UpdatedAt,
		&p.AuthorName, &catName, &catSlg,
	)
	if err != nil {
		return nil, err
	}
	if p.CategoryID != nil && catName.Valid {
		p.Category = &models.Category{ID: *p.CategoryID, Name: catName.String, Slug: catSlg.String}
	}
	return &p, nil
}

// postWhere translates a filter into SQL conditions.
func postWhere(f blog.PostFilter) *where {
	w := &where{}
	if f.Status != "" {
		w.add("p.status = ?", string(f.Status))
	}
	if f.CategoryID != nil {
		w.add("p.category_id = ?", *f.CategoryID)
	}
	if f.TagID != nil {
		w.add("EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = ?)", *f.TagID)
	}
	if f.Search != "" {
		w.add("(p.title ILIKE ? OR p.content ILIKE ?)", likePattern(f.Search))
	}
	if !f.CreatedSince.IsZero() {
		w.add("p.created_at >= ?", f.CreatedSince)
	}
	return w
}

// attachTags loads the tags of every post in one query.
func (s *PostStore) attachTags(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	index := make(map[uuid.UUID]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.name, t.slug, t.created_at
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1::uuid[])
		ORDER BY t.name
	`, idArray(ids))
	if err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID uuid.UUID
			t      models.Tag
		)
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		i := index[postID]
		posts[i].Tags = append(posts[i].Tags, t)
	}
	return rows.Err()
}

func (s *PostStore) findOne(ctx context.Context, op, cond string, arg any) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, postSelect+` WHERE `+cond, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	posts := []models.Post{*p}
	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// FindByID retrieves a post of any status. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.findOne(ctx, "find post by id", "p.id = $1", id)
}

// FindBySlug retrieves a post of any status. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.findOne(ctx, "find post by slug", "p.slug = $1", slug)
}

// List returns posts matching f, newest first.
func (s *PostStore) List(ctx context.Context, f blog.PostFilter, limit, offset int) ([]models.Post, error) {
	w := postWhere(f)
	query := postSelect + w.String() +
		` ORDER BY p.created_at DESC, p.id DESC LIMIT ` + w.next(limit) + ` OFFSET ` + w.next(offset)

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Count returns the number of posts matching f.
func (s *PostStore) Count(ctx context.Context, f blog.PostFilter) (int, error) {
	w := postWhere(f)
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+w.String(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// replaceTags rewrites the tag links of a post inside tx.
func replaceTags(ctx context.Context, tx *sql.Tx, postID uuid.UUID, tags []models.Tag) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	for _, t := range tags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
		`, postID, t.ID); err != nil {
			return fmt.Errorf("link tag %s: %w", t.ID, err)
		}
	}
	return nil
}

// Create inserts p and its tag links in one transaction.
func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, author_id, content, featured_image, category_id,
		                   status, meta_title, meta_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, p.Title, p.Slug, p.AuthorID, p.Content, p.FeaturedImage, p.CategoryID,
		string(p.Status), p.MetaTitle, p.MetaDescription,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapError("create post", err)
	}
	if err := replaceTags(ctx, tx, p.ID, p.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// Update rewrites the mutable columns and tag links of p. The author and
// creation time are never touched.
func (s *PostStore) Update(ctx context.Context, p *models.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		UPDATE posts SET
			title = $1, slug = $2, content = $3, featured_image = $4, category_id = $5,
			status = $6, meta_title = $7, meta_description = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`, p.Title, p.Slug, p.Content, p.FeaturedImage, p.CategoryID,
		string(p.Status), p.MetaTitle, p.MetaDescription, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return blog.ErrNotFound
	}
	if err != nil {
		return mapError("update post", err)
	}
	if err := replaceTags(ctx, tx, p.ID, p.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a post. Comments and tag links cascade.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return expectOne("delete post", res)
}
