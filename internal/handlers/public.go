// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Public groups the unauthenticated lookups: categories, author pages and
// the newsletter signup.
type Public struct {
	categories  *store.CategoryStore
	users       *store.UserStore
	posts       *store.PostStore
	subscribers *store.SubscriberStore
	appURL      string
}

// NewPublic creates a new Public handler group.
func NewPublic(categories *store.CategoryStore, users *store.UserStore, posts *store.PostStore, subscribers *store.SubscriberStore, appURL string) *Public {
	return &Public{
		categories:  categories,
		users:       users,
		posts:       posts,
		subscribers: subscribers,
		appURL:      appURL,
	}
}

// Categories lists all categories with their published post counts.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := p.categories.List(r.Context())
	if err != nil {
		serverError(w, r, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// Category returns one category by slug.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	c, err := p.categories.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		serverError(w, r, "find category", err)
		return
	}
	if c == nil {
		writeMessage(w, http.StatusNotFound, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": c})
}

// Author returns an author's public profile and their latest published
// posts.
func (p *Public) Author(w http.ResponseWriter, r *http.Request) {
	u, err := p.users.FindByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		serverError(w, r, "find author", err)
		return
	}
	if u == nil {
		writeMessage(w, http.StatusNotFound, "Author not found")
		return
	}

	page, err := p.posts.List(r.Context(), models.PostFilter{Author: u.ID.String()})
	if err != nil {
		serverError(w, r, "list author posts", err)
		return
	}
	for i := range page.Posts {
		presentPost(&page.Posts[i], p.appURL)
	}

	author := u.Summary()
	author.Image = models.ImageURL(author.Image, p.appURL)
	writeJSON(w, http.StatusOK, map[string]any{
		"author":     author,
		"posts":      page.Posts,
		"pagination": page.Pagination,
	})
}

// Subscribe adds an email address to the newsletter.
func (p *Public) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !bindJSON(w, r, &req) {
		return
	}

	if _, err := p.subscribers.Subscribe(r.Context(), req.Email); err != nil {
		storeError(w, r, "subscribe newsletter", err)
		return
	}
	writeMessage(w, http.StatusOK, "Successfully subscribed to newsletter")
}
