package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blogpress/internal/models"
)

// TagStore manages tags in the database.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

const tagSelect = `
	SELECT t.id, t.name, t.slug, t.created_at, COUNT(p.id) AS post_count
	FROM tags t
	LEFT JOIN post_tags pt ON pt.tag_id = t.id
	LEFT JOIN posts p ON p.id = pt.post_id AND p.status = 'published'`

func scanTag(scanner interface{ Scan(...any) error }) (*models.Tag, error) {
	var t models.Tag
	if err := scanner.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.PostCount); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TagStore) query(ctx context.Context, op, cond string, args ...any) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, tagSelect+cond+` GROUP BY t.id ORDER BY t.name`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// List returns all tags ordered by name, with published post counts.
func (s *TagStore) List(ctx context.Context) ([]models.Tag, error) {
	return s.query(ctx, "list tags", "")
}

// FindByIDs returns the tags that exist among ids.
func (s *TagStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.query(ctx, "find tags by ids", ` WHERE t.id = ANY($1::uuid[])`, idArray(ids))
}

func (s *TagStore) findOne(ctx context.Context, op, cond string, arg any) (*models.Tag, error) {
	items, err := s.query(ctx, op, ` WHERE `+cond, arg)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// FindByID retrieves a tag by ID. Returns nil if not found.
func (s *TagStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	return s.findOne(ctx, "find tag by id", "t.id = $1", id)
}

// FindBySlug retrieves a tag by slug. Returns nil if not found.
func (s *TagStore) FindBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	return s.findOne(ctx, "find tag by slug", "t.slug = $1", slug)
}

// Create inserts a new tag and fills its ID and timestamp.
func (s *TagStore) Create(ctx context.Context, t *models.Tag) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (name, slug) VALUES ($1, $2)
		RETURNING id, created_at
	`, t.Name, t.Slug).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return mapError("create tag", err)
	}
	return nil
}

// Update renames a tag.
func (s *TagStore) Update(ctx context.Context, t *models.Tag) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tags SET name = $1, slug = $2 WHERE id = $3`, t.Name, t.Slug, t.ID)
	if err != nil {
		return mapError("update tag", err)
	}
	return expectOne("update tag", res)
}

// Delete removes a tag. Links to posts go with it (ON DELETE CASCADE).
func (s *TagStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return expectOne("delete tag", res)
}
