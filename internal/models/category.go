// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Category groups posts. Each post belongs to exactly one category.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`

	// Virtual field populated by CategoryStore.List.
	PostCount int `json:"postCount"`
}

// Summary returns the category fields embedded in post views.
func (c *Category) Summary() CategorySummary {
	return CategorySummary{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

// CategorySummary is the subset of a category shown next to posts.
type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// CategoryNameFromSlug derives the display name of an implicitly created
// category: the slug with its first character upper-cased.
// Example: "technology" → "Technology"
func CategoryNameFromSlug(slug string) string {
	r, size := utf8.DecodeRuneInString(slug)
	if r == utf8.RuneError {
		return slug
	}
	return string(unicode.ToUpper(r)) + slug[size:]
}
