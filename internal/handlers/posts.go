// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notify"
	"inkwell/internal/session"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// Posts groups the post and comment endpoints.
type Posts struct {
	posts    *store.PostStore
	comments *store.CommentStore
	cache    *cache.ResponseCache
	notifier *notify.Notifier
	appURL   string
}

// NewPosts creates the post handler group. cache and notifier may be nil.
func NewPosts(posts *store.PostStore, comments *store.CommentStore, rc *cache.ResponseCache, notifier *notify.Notifier, appURL string) *Posts {
	return &Posts{
		posts:    posts,
		comments: comments,
		cache:    rc,
		notifier: notifier,
		appURL:   appURL,
	}
}

// List returns a page of posts. Listing anything other than published
// posts requires a session, and only the caller's own posts may be listed
// unless the caller is an admin.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.PostFilter{
		Featured: q.Get("featured") == "true",
		Limit:    intParam(q.Get("limit")),
		Page:     intParam(q.Get("page")),
		Category: q.Get("category"),
		Author:   q.Get("author"),
		Status:   models.PostStatus(q.Get("status")),
	}

	if f.Status != "" && !f.Status.Valid() {
		writeMessage(w, http.StatusBadRequest, "Status must be one of: draft published")
		return
	}
	if f.Status == models.PostStatusDraft {
		sess := middleware.SessionFromCtx(r.Context())
		if sess == nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		switch {
		case f.Author == "":
			f.Author = sess.UserID.String()
		case f.Author != sess.UserID.String() && f.Author != sess.Username && !sess.IsAdmin():
			writeMessage(w, http.StatusForbidden, "You can only list your own drafts")
			return
		}
	}

	page, err := h.posts.List(r.Context(), f)
	if err != nil {
		serverError(w, r, "list posts", err)
		return
	}
	for i := range page.Posts {
		presentPost(&page.Posts[i], h.appURL)
	}
	writeJSON(w, http.StatusOK, page)
}

// Create stores a new post owned by the caller. A missing slug is derived
// from the title. Publishing immediately announces the post to newsletter
// subscribers in the background.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createPostRequest
	if !bindJSON(w, r, &req) {
		return
	}
	if !validPostSlugs(w, req.Slug, req.Category) {
		return
	}

	postSlug := req.Slug
	if postSlug == "" {
		postSlug = slug.Generate(req.Title)
	}
	if postSlug == "" {
		writeMessage(w, http.StatusBadRequest, "Slug is required")
		return
	}
	cover := req.CoverImage
	if cover == "" {
		cover = models.PlaceholderCoverImage
	}

	post, err := h.posts.Create(r.Context(), models.NewPost{
		Title:      req.Title,
		Slug:       postSlug,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		CoverImage: cover,
		Category:   req.Category,
		Tags:       req.Tags,
		AuthorID:   sess.UserID,
		Status:     models.PostStatus(req.Status),
		Featured:   req.Featured && sess.IsAdmin(),
	})
	if err != nil {
		storeError(w, r, "create post", err)
		return
	}

	h.invalidate(r.Context())
	if post.IsPublished() {
		h.announce(post)
	}

	slog.Info("post created", "slug", post.Slug, "status", post.Status, "author", sess.UserID)

	view, err := h.posts.FindBySlug(r.Context(), post.Slug)
	if err != nil || view == nil {
		// The insert succeeded; fall back to the bare record.
		slog.Warn("reload created post failed", "slug", post.Slug, "error", err)
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Post created successfully", "post": post})
		return
	}
	presentPost(view, h.appURL)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Post created successfully", "post": view})
}

// Search runs a short substring search over published posts.
func (h *Posts) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results, err := h.posts.Search(r.Context(), q.Get("q"), store.SearchOptions{
		IncludeContent: q.Get("content") == "true",
	})
	if err != nil {
		serverError(w, r, "search posts", err)
		return
	}
	for i := range results {
		presentPost(&results[i], h.appURL)
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": results})
}

// Get returns one post and counts the view.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadVisible(w, r)
	if !ok {
		return
	}

	if view.IsPublished() {
		if err := h.posts.IncrementViews(r.Context(), view.Slug); err != nil {
			slog.Warn("increment views failed", "slug", view.Slug, "error", err)
		} else {
			view.Views++
		}
	}

	presentPost(view, h.appURL)
	writeJSON(w, http.StatusOK, map[string]any{"post": view})
}

// Update applies a partial update to a post owned by the caller. Empty
// fields are ignored; newSlug renames the post.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updatePostRequest
	if !bindJSON(w, r, &req) {
		return
	}
	if !validPostSlugs(w, req.NewSlug, req.Category) {
		return
	}

	sess, view, ok := h.loadOwned(w, r, "You are not authorized to edit this post")
	if !ok {
		return
	}

	var patch models.PostPatch
	if req.Title != "" {
		patch.Title = &req.Title
	}
	if req.NewSlug != "" {
		patch.Slug = &req.NewSlug
	}
	if req.Excerpt != "" {
		patch.Excerpt = &req.Excerpt
	}
	if req.Content != "" {
		patch.Content = &req.Content
	}
	if req.Category != "" {
		patch.Category = &req.Category
	}
	if req.CoverImage != "" {
		patch.CoverImage = &req.CoverImage
	}
	if req.Tags != nil {
		patch.Tags = req.Tags
	}
	if req.Status != "" {
		status := models.PostStatus(req.Status)
		patch.Status = &status
	}
	if req.Featured != nil && sess.IsAdmin() {
		patch.Featured = req.Featured
	}

	found, err := h.posts.Update(r.Context(), view.Slug, patch)
	if err != nil {
		storeError(w, r, "update post", err)
		return
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "Post not found")
		return
	}
	h.invalidate(r.Context())

	newSlug := view.Slug
	if patch.Slug != nil {
		newSlug = *patch.Slug
	}
	updated, err := h.posts.FindBySlug(r.Context(), newSlug)
	if err != nil {
		serverError(w, r, "reload updated post", err)
		return
	}
	if updated == nil {
		writeMessage(w, http.StatusNotFound, "Post not found")
		return
	}

	if firstPublish(&view.Post, &updated.Post) {
		h.announce(&updated.Post)
	}

	presentPost(updated, h.appURL)
	writeJSON(w, http.StatusOK, map[string]any{"post": updated})
}

// Delete removes a post owned by the caller. Its comments are kept.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	_, view, ok := h.loadOwned(w, r, "You are not authorized to delete this post")
	if !ok {
		return
	}

	if _, err := h.posts.Delete(r.Context(), view.Slug); err != nil {
		serverError(w, r, "delete post", err)
		return
	}
	h.invalidate(r.Context())

	slog.Info("post deleted", "slug", view.Slug)
	writeMessage(w, http.StatusOK, "Post deleted successfully")
}

// ListComments returns a post's comments, newest first.
func (h *Posts) ListComments(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadVisible(w, r)
	if !ok {
		return
	}

	comments, err := h.comments.ListByPost(r.Context(), view.ID)
	if err != nil {
		serverError(w, r, "list comments", err)
		return
	}
	for i := range comments {
		comments[i].Author.Image = models.ImageURL(comments[i].Author.Image, h.appURL)
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// CreateComment adds a comment by the caller. The response embeds the
// author from the session.
func (h *Posts) CreateComment(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req commentRequest
	if !bindJSON(w, r, &req) {
		return
	}

	view, ok := h.loadVisible(w, r)
	if !ok {
		return
	}

	c, err := h.comments.Create(r.Context(), models.NewComment{
		Content:  req.Content,
		PostID:   view.ID,
		AuthorID: sess.UserID,
	})
	if err != nil {
		serverError(w, r, "create comment", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Comment added successfully",
		"comment": models.CommentView{
			Comment: *c,
			Author: models.AuthorSummary{
				ID:       sess.UserID,
				Name:     sess.Name,
				Username: sess.Username,
				Image:    models.ImageURL(sess.Image, h.appURL),
			},
		},
	})
}

// loadVisible loads the post named in the URL. Drafts are only visible to
// their author and admins; everyone else gets 404.
func (h *Posts) loadVisible(w http.ResponseWriter, r *http.Request) (*models.PostView, bool) {
	view, err := h.posts.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		serverError(w, r, "find post", err)
		return nil, false
	}
	if view == nil || !canView(view, middleware.SessionFromCtx(r.Context())) {
		writeMessage(w, http.StatusNotFound, "Post not found")
		return nil, false
	}
	return view, true
}

// loadOwned loads the post named in the URL and checks that the caller
// wrote it.
func (h *Posts) loadOwned(w http.ResponseWriter, r *http.Request, forbidden string) (*session.Data, *models.PostView, bool) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return nil, nil, false
	}

	view, err := h.posts.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		serverError(w, r, "find post", err)
		return nil, nil, false
	}
	if view == nil {
		writeMessage(w, http.StatusNotFound, "Post not found")
		return nil, nil, false
	}
	if view.AuthorID != sess.UserID {
		writeMessage(w, http.StatusForbidden, forbidden)
		return nil, nil, false
	}
	return sess, view, true
}

// validPostSlugs rejects a client-supplied post or category slug that is not
// URL-safe. Empty values are left to the caller.
func validPostSlugs(w http.ResponseWriter, postSlug, category string) bool {
	if postSlug != "" && !slug.Valid(postSlug) {
		writeMessage(w, http.StatusBadRequest, "Slug may only contain lowercase letters, numbers, hyphens and underscores")
		return false
	}
	if category != "" && !slug.Valid(category) {
		writeMessage(w, http.StatusBadRequest, "Category may only contain lowercase letters, numbers, hyphens and underscores")
		return false
	}
	return true
}

// firstPublish reports whether an update moved a post that had never been
// published into published status.
func firstPublish(before, after *models.Post) bool {
	return before.PublishedAt == nil && after.IsPublished()
}

func (h *Posts) invalidate(ctx context.Context) {
	if h.cache != nil {
		h.cache.InvalidateAll(ctx)
	}
}

func (h *Posts) announce(post *models.Post) {
	if h.notifier != nil {
		h.notifier.AnnouncePostAsync(post)
	}
}

// canView reports whether sess may read the post.
func canView(v *models.PostView, sess *session.Data) bool {
	if v.IsPublished() {
		return true
	}
	return sess != nil && (sess.UserID == v.AuthorID || sess.IsAdmin())
}

// presentPost resolves image references to the URLs clients should load.
func presentPost(v *models.PostView, appURL string) {
	v.CoverImage = models.ImageURL(v.CoverImage, appURL)
	v.Author.Image = models.ImageURL(v.Author.Image, appURL)
}

// intParam parses a positive integer query parameter. Anything else is
// zero, which lets the store apply its default.
func intParam(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0
	}
	return n
}
