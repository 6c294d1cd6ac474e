// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides PostgreSQL access for the blog entities. Each
// store struct wraps a *sql.DB and implements one of the blog repository
// interfaces. Find methods return (nil, nil) when nothing matches.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"blogpress/internal/blog"
)

var (
	_ blog.PostRepository     = (*PostStore)(nil)
	_ blog.CategoryRepository = (*CategoryStore)(nil)
	_ blog.TagRepository      = (*TagStore)(nil)
	_ blog.CommentRepository  = (*CommentStore)(nil)
	_ blog.UserRepository     = (*UserStore)(nil)
)

// uniqueViolation is the SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

// constraintFields maps unique constraints to the form field they guard.
var constraintFields = map[string]string{
	"users_username_key":  "username",
	"users_email_key":     "email",
	"categories_name_key": "name",
	"categories_slug_key": "slug",
	"tags_name_key":       "name",
	"tags_slug_key":       "slug",
	"posts_slug_key":      "slug",
}

// mapError converts unique violations into *blog.ConflictError and wraps
// everything else with op.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &blog.ConflictError{Field: constraintFields[pgErr.ConstraintName]}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// expectOne reports blog.ErrNotFound when an UPDATE or DELETE matched no row.
func expectOne(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return blog.ErrNotFound
	}
	return nil
}

// idArray renders ids as a text array parameter for "= ANY($n::uuid[])".
func idArray(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// likePattern escapes LIKE wildcards in s and wraps it for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// where accumulates SQL conditions and their positional arguments.
type where struct {
	conds []string
	args  []any
}

// add appends a condition; every "?" in cond becomes the placeholder of arg.
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder for an argument appended after the conditions.
func (w *where) next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}
