// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is shared reference data. A post has at most one category;
// deleting a category leaves its posts uncategorized.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual field populated by store list methods.
	PostCount int `json:"post_count"`
}

func (c *Category) String() string {
	return c.Name
}

// URL returns the public listing path for the category.
func (c *Category) URL() string {
	return "/category/" + c.Slug + "/"
}
