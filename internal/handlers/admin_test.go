package handlers

import (
	"context"
	"net/http"
	"testing"

	"inkwell/internal/models"
)

func TestCreateCategory(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newTestUser(t, models.RoleAdmin)
	catSlug := uniq("admincat")
	cleanCategories(t, env.DB, catSlug)

	body := map[string]string{"name": "Admin Cat", "slug": catSlug, "description": "Made by a test"}
	rec := serve(env.Admin.CreateCategory, newJSONRequest(t, http.MethodPost, "/api/categories", body, testSession(admin)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Category models.Category `json:"category"`
	}
	decodeJSON(t, rec, &created)
	if created.Category.Slug != catSlug || created.Category.Name != "Admin Cat" {
		t.Errorf("category = %+v", created.Category)
	}

	rec = serve(env.Admin.CreateCategory, newJSONRequest(t, http.MethodPost, "/api/categories", body, testSession(admin)))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate = %d, want 409", rec.Code)
	}

	bad := map[string]string{"name": "Bad", "slug": "has spaces"}
	rec = serve(env.Admin.CreateCategory, newJSONRequest(t, http.MethodPost, "/api/categories", bad, testSession(admin)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid slug = %d, want 400", rec.Code)
	}
}

func TestDeletePostsByCategory(t *testing.T) {
	env := newTestEnv(t)
	author := env.newTestUser(t, models.RoleUser)
	p := env.newTestPost(t, author, models.PostStatusPublished)

	var catSlug string
	if err := env.DB.QueryRow("SELECT slug FROM categories WHERE id = $1", p.CategoryID).Scan(&catSlug); err != nil {
		t.Fatalf("category lookup: %v", err)
	}

	rec := serve(env.Admin.DeletePostsByCategory, newJSONRequest(t, http.MethodDelete, "/api/admin/posts", nil, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing category = %d, want 400", rec.Code)
	}

	rec = serve(env.Admin.DeletePostsByCategory, newJSONRequest(t, http.MethodDelete, "/api/admin/posts?category=nope-"+uniq("c"), nil, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown category = %d, want 404", rec.Code)
	}

	rec = serve(env.Admin.DeletePostsByCategory, newJSONRequest(t, http.MethodDelete, "/api/admin/posts?category="+catSlug, nil, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	decodeJSON(t, rec, &body)
	if body.DeletedCount != 1 {
		t.Errorf("deletedCount = %d, want 1", body.DeletedCount)
	}

	view, err := env.PostStore.FindBySlug(context.Background(), p.Slug)
	if err != nil || view != nil {
		t.Errorf("post still present: %v, %v", view, err)
	}
	if c, _ := env.Categories.FindBySlug(context.Background(), catSlug); c == nil {
		t.Error("category was deleted along with its posts")
	}
}

func TestFixImages(t *testing.T) {
	env := newTestEnv(t)
	author := env.newTestUser(t, models.RoleUser)
	p := env.newTestPost(t, author, models.PostStatusPublished)
	if _, err := env.DB.Exec("UPDATE posts SET cover_image = 'local/cover.jpg' WHERE id = $1", p.ID); err != nil {
		t.Fatalf("set cover: %v", err)
	}

	rec := serve(env.Admin.FixImages, newJSONRequest(t, http.MethodPost, "/api/admin/posts/fix-images", nil, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		UpdatedCount int64 `json:"updatedCount"`
	}
	decodeJSON(t, rec, &body)
	if body.UpdatedCount < 1 {
		t.Errorf("updatedCount = %d, want at least 1", body.UpdatedCount)
	}

	var cover string
	env.DB.QueryRow("SELECT cover_image FROM posts WHERE id = $1", p.ID).Scan(&cover)
	if cover != models.PlaceholderCoverImage {
		t.Errorf("cover = %q, want placeholder", cover)
	}
}
