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

// CommentStore manages comments in the database.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentSelect = `
	SELECT cm.id, cm.post_id, cm.author_id, cm.content, cm.approved, cm.created_at,
	       u.username, p.title, p.slug
	FROM comments cm
	JOIN users u ON u.id = cm.author_id
	JOIN posts p ON p.id = cm.post_id`

func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	err := scanner.Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.Approved, &c.CreatedAt,
		&c.AuthorName, &c.PostTitle, &c.PostSlug,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentStore) query(ctx context.Context, op, query string, args ...any) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Create inserts a comment and fills its ID and creation time.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, author_id, content, approved)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, c.PostID, c.AuthorID, c.Content, c.Approved).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return mapError("create comment", err)
	}
	return nil
}

// Delete removes a comment by ID.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return expectOne("delete comment", res)
}

// FindByID retrieves a comment. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, commentSelect+` WHERE cm.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

// ListForPost returns a post's comments oldest first.
func (s *CommentStore) ListForPost(ctx context.Context, postID uuid.UUID, approvedOnly bool) ([]models.Comment, error) {
	q := commentSelect + ` WHERE cm.post_id = $1`
	if approvedOnly {
		q += ` AND cm.approved`
	}
	return s.query(ctx, "list post comments", q+` ORDER BY cm.created_at, cm.id`, postID)
}

func commentWhere(f blog.CommentFilter) *where {
	w := &where{}
	if f.PostID != nil {
		w.add("cm.post_id = ?", *f.PostID)
	}
	if f.Approved != nil {
		w.add("cm.approved = ?", *f.Approved)
	}
	if f.Search != "" {
		w.add("cm.content ILIKE ?", likePattern(f.Search))
	}
	return w
}

// List returns comments matching f, newest first.
func (s *CommentStore) List(ctx context.Context, f blog.CommentFilter, limit, offset int) ([]models.Comment, error) {
	w := commentWhere(f)
	q := commentSelect + w.String() +
		` ORDER BY cm.created_at DESC, cm.id DESC LIMIT ` + w.next(limit) + ` OFFSET ` + w.next(offset)
	return s.query(ctx, "list comments", q, w.args...)
}

// Count returns the number of comments matching f.
func (s *CommentStore) Count(ctx context.Context, f blog.CommentFilter) (int, error) {
	w := commentWhere(f)
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments cm`+w.String(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}

// Approve marks pending comments approved in one statement and returns
// how many changed.
func (s *CommentStore) Approve(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE comments SET approved = TRUE
		WHERE id = ANY($1::uuid[]) AND NOT approved
	`, idArray(ids))
	if err != nil {
		return 0, fmt.Errorf("approve comments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("approve comments: %w", err)
	}
	return int(n), nil
}
