package store

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"
)

func TestCategoryStoreCreate(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()
	slug := uniq("explicit")
	cleanCategories(t, db, slug)

	c, err := s.Create(ctx, &models.Category{Name: "Explicit", Slug: slug, Description: "Made by hand"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Name != "Explicit" || c.Description != "Made by hand" {
		t.Errorf("got %+v", c)
	}

	_, err = s.Create(ctx, &models.Category{Name: "Again", Slug: slug})
	if !errors.Is(err, ErrCategorySlugTaken) {
		t.Errorf("duplicate Create: got %v, want ErrCategorySlugTaken", err)
	}
	if !errors.Is(err, ErrConflict) {
		t.Error("ErrCategorySlugTaken should wrap ErrConflict")
	}
}

func TestCategoryStoreCreateDefaultsName(t *testing.T) {
	db := testDB(t)
	slug := uniq("travel")
	cleanCategories(t, db, slug)

	c, err := NewCategoryStore(db).Create(context.Background(), &models.Category{Slug: slug})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Name != models.CategoryNameFromSlug(slug) {
		t.Errorf("name: got %q", c.Name)
	}
}

func TestCategoryStoreFindOrCreate(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()
	slug := uniq("food")
	cleanCategories(t, db, slug)

	first, err := s.FindOrCreate(ctx, slug)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	second, err := s.FindOrCreate(ctx, slug)
	if err != nil {
		t.Fatalf("second FindOrCreate: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("ids differ: %s vs %s", first.ID, second.ID)
	}

	byID, err := s.FindByID(ctx, first.ID)
	if err != nil || byID == nil || byID.Slug != slug {
		t.Errorf("FindByID: %v, %v", byID, err)
	}

	missing, err := s.FindBySlug(ctx, uniq("missing"))
	if err != nil || missing != nil {
		t.Errorf("FindBySlug missing: got %v, %v", missing, err)
	}
}

func TestCategoryStoreListCountsPublished(t *testing.T) {
	db := testDB(t)
	author := newTestUser(t, db)
	slug := uniq("counted")

	newTestPost(t, db, author.ID, slug, models.PostStatusPublished)
	newTestPost(t, db, author.ID, slug, models.PostStatusPublished)
	newTestPost(t, db, author.ID, slug, models.PostStatusDraft)

	cats, err := NewCategoryStore(db).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, c := range cats {
		if c.Slug == slug {
			if c.PostCount != 2 {
				t.Errorf("post count: got %d, want 2", c.PostCount)
			}
			return
		}
	}
	t.Errorf("category %s missing from List", slug)
}
