// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag labels posts in a many-to-many relationship.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`

	PostCount int `json:"post_count"`
}

func (t *Tag) String() string {
	return t.Name
}

// URL returns the public listing path for the tag.
func (t *Tag) URL() string {
	return "/tag/" + t.Slug + "/"
}
