// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post is a blog article. Only published posts are visible on the public
// site; the author is fixed at creation and gates every mutation.
type Post struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	AuthorID        uuid.UUID  `json:"author_id"`
	Content         string     `json:"content"`
	FeaturedImage   *string    `json:"featured_image,omitempty"` // storage key
	CategoryID      *uuid.UUID `json:"category_id,omitempty"`
	Status          PostStatus `json:"status"`
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	AuthorName string    `json:"author_name"`
	Category   *Category `json:"category,omitempty"`
	Tags       []Tag     `json:"tags,omitempty"`
}

func (p *Post) String() string {
	return p.Title
}

// URL returns the canonical detail path. Redirects after create, update
// and comment submission rely on it.
func (p *Post) URL() string {
	return "/post/" + p.Slug + "/"
}

// OwnerID returns the author, the only user allowed to modify the post.
func (p *Post) OwnerID() uuid.UUID {
	return p.AuthorID
}

// IsPublished returns true if the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// HasImage reports whether a featured image is attached.
func (p *Post) HasImage() bool {
	return p.FeaturedImage != nil && *p.FeaturedImage != ""
}

// TagIDs returns the IDs of the attached tags.
func (p *Post) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
