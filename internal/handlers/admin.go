// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// Admin groups the admin-only endpoints: category creation and content
// maintenance.
type Admin struct {
	posts      *store.PostStore
	categories *store.CategoryStore
	cache      *cache.ResponseCache
}

// NewAdmin creates a new Admin handler group. cache may be nil.
func NewAdmin(posts *store.PostStore, categories *store.CategoryStore, rc *cache.ResponseCache) *Admin {
	return &Admin{
		posts:      posts,
		categories: categories,
		cache:      rc,
	}
}

// CreateCategory creates a category explicitly. The name defaults to the
// capitalized slug.
func (a *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !bindJSON(w, r, &req) {
		return
	}
	if !slug.Valid(req.Slug) {
		writeMessage(w, http.StatusBadRequest, "Slug may only contain lowercase letters, numbers, hyphens and underscores")
		return
	}

	c, err := a.categories.Create(r.Context(), &models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		storeError(w, r, "create category", err)
		return
	}
	a.invalidate(r.Context())

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Category created successfully",
		"category": c,
	})
}

// DeletePostsByCategory removes every post in the category named by the
// ?category= query parameter. The category itself is kept.
func (a *Admin) DeletePostsByCategory(w http.ResponseWriter, r *http.Request) {
	categorySlug := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category")))
	if categorySlug == "" {
		writeMessage(w, http.StatusBadRequest, "Category is required")
		return
	}

	cat, err := a.categories.FindBySlug(r.Context(), categorySlug)
	if err != nil {
		serverError(w, r, "find category", err)
		return
	}
	if cat == nil {
		writeMessage(w, http.StatusNotFound, "Category not found")
		return
	}

	n, err := a.posts.DeleteByCategory(r.Context(), cat.ID)
	if err != nil {
		serverError(w, r, "delete posts by category", err)
		return
	}
	a.invalidate(r.Context())

	slog.Info("posts deleted by category", "category", categorySlug, "deleted", n)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      fmt.Sprintf("Successfully deleted %d posts from category %s", n, categorySlug),
		"deletedCount": n,
	})
}

// FixImages replaces every cover image that is not an absolute URL with
// the placeholder.
func (a *Admin) FixImages(w http.ResponseWriter, r *http.Request) {
	n, err := a.posts.NormalizeCoverImages(r.Context())
	if err != nil {
		serverError(w, r, "normalize cover images", err)
		return
	}
	a.invalidate(r.Context())

	slog.Info("cover images normalized", "updated", n)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      fmt.Sprintf("Successfully updated %d posts", n),
		"updatedCount": n,
	})
}

func (a *Admin) invalidate(ctx context.Context) {
	if a.cache != nil {
		a.cache.InvalidateAll(ctx)
	}
}
