package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is reader feedback on a post. New comments start unapproved and
// stay hidden from the public detail page until staff approve them.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`

	// Virtual fields populated by store methods.
	AuthorName string `json:"author_name"`
	PostTitle  string `json:"post_title"`
	PostSlug   string `json:"post_slug"`
}

// String renders "{author} on {post title}".
func (c *Comment) String() string {
	return c.AuthorName + " on " + c.PostTitle
}

// OwnerID returns the comment author.
func (c *Comment) OwnerID() uuid.UUID {
	return c.AuthorID
}
