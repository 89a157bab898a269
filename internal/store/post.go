// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"inkwell/internal/models"
)

// Listing defaults.
const (
	DefaultPostLimit = 10
	MaxPostLimit     = 100
	SearchLimit      = 5
	minSearchLength  = 2
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// SearchOptions tunes Search.
type SearchOptions struct {
	// IncludeContent also matches against the post body.
	IncludeContent bool
}

const postColumns = `p.id, p.title, p.slug, p.excerpt, p.content, p.cover_image,
	p.category_id, p.tags, p.author_id, p.status, p.published_at,
	p.created_at, p.updated_at, p.featured, p.views, p.reading_time`

// postViewSelect joins author and category with LEFT JOINs so a dangling
// reference shows up as NULL columns instead of a missing row.
const postViewSelect = `SELECT ` + postColumns + `,
	u.id, u.name, u.username, u.image, u.bio,
	c.id, c.name, c.slug
	FROM posts p
	LEFT JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

func postScanDest(p *models.Post) []any {
	return []any{
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.CoverImage,
		&p.CategoryID, pq.Array(&p.Tags), &p.AuthorID, &p.Status, &p.PublishedAt,
		&p.CreatedAt, &p.UpdatedAt, &p.Featured, &p.Views, &p.ReadingTime,
	}
}

func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	if err := scanner.Scan(postScanDest(p)...); err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

// scanPostView scans a postViewSelect row. ok is false when the author or
// category of the post does not exist.
func scanPostView(scanner interface{ Scan(...any) error }) (v *models.PostView, ok bool, err error) {
	v = &models.PostView{}
	var (
		authorID, catID uuid.NullUUID

		authorName, authorUser, authorImg, authorBio sql.NullString
		catName, catSlug                             sql.NullString
	)
	dest := append(postScanDest(&v.Post),
		&authorID, &authorName, &authorUser, &authorImg, &authorBio,
		&catID, &catName, &catSlug,
	)
	if err := scanner.Scan(dest...); err != nil {
		return nil, false, err
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if !authorID.Valid || !catID.Valid {
		return v, false, nil
	}
	v.Author = models.AuthorSummary{
		ID:       authorID.UUID,
		Name:     authorName.String,
		Username: authorUser.String,
		Image:    authorImg.String,
		Bio:      authorBio.String,
	}
	v.Category = models.CategorySummary{ID: catID.UUID, Name: catName.String, Slug: catSlug.String}
	return v, true, nil
}

// queryPostViews runs a postViewSelect query and fails with
// ErrMissingRelation if any row has a dangling author or category.
func (s *PostStore) queryPostViews(ctx context.Context, op, query string, args ...any) ([]models.PostView, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	views := []models.PostView{}
	for rows.Next() {
		v, ok, err := scanPostView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: post %s: %w", op, v.Slug, ErrMissingRelation)
		}
		views = append(views, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return views, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Create inserts a new post and returns it. The category is looked up by
// slug and created if absent, in the same transaction as the insert. A slug
// that is already in use returns ErrSlugTaken.
func (s *PostStore) Create(ctx context.Context, np models.NewPost) (*models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, np.Slug).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check post slug: %w", err)
	}
	if exists {
		return nil, ErrSlugTaken
	}

	cat, err := findOrCreateCategory(ctx, tx, np.Category)
	if err != nil {
		return nil, err
	}

	status := np.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	var publishedAt *time.Time
	if status == models.PostStatusPublished {
		now := time.Now()
		publishedAt = &now
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO posts AS p (title, slug, excerpt, content, cover_image, category_id,
		                   tags, author_id, status, published_at, featured, reading_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+postColumns,
		np.Title, np.Slug, np.Excerpt, np.Content, np.CoverImage, cat.ID,
		pq.Array(normalizeTags(np.Tags)), np.AuthorID, status, publishedAt, np.Featured,
		models.ReadingTime(np.Content),
	)
	p, err := scanPost(row)
	if isUniqueViolation(err) {
		return nil, ErrSlugTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit post: %w", err)
	}
	return p, nil
}

// FindBySlug returns the denormalized post with the given slug. The slug is
// URL-decoded first. Returns nil if the post does not exist or its author or
// category is missing; the latter is logged as a data-integrity warning.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.PostView, error) {
	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}

	row := s.db.QueryRowContext(ctx, postViewSelect+` WHERE p.slug = $1`, slug)
	v, ok, err := scanPostView(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	if !ok {
		slog.Warn("post references missing author or category",
			"slug", v.Slug,
			"author_id", v.AuthorID,
			"category_id", v.CategoryID,
		)
		return nil, nil
	}
	return v, nil
}

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends a condition; "?" in cond is replaced by the next placeholder.
func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1))
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// List returns one page of denormalized posts matching f, newest published
// first. Category and author filters are applied only when the referenced
// record exists. Any post with a dangling author or category fails the whole
// call with ErrMissingRelation.
func (s *PostStore) List(ctx context.Context, f models.PostFilter) (*models.PostPage, error) {
	if f.Status == "" {
		f.Status = models.PostStatusPublished
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPostLimit
	}
	if f.Limit > MaxPostLimit {
		f.Limit = MaxPostLimit
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	w := &whereBuilder{}
	w.add("p.status = ?", f.Status)
	if f.Featured {
		w.add("p.featured = ?", true)
	}
	if f.Category != "" {
		var catID uuid.UUID
		err := s.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE slug = $1`, f.Category).Scan(&catID)
		switch {
		case err == nil:
			w.add("p.category_id = ?", catID)
		case err != sql.ErrNoRows:
			return nil, fmt.Errorf("resolve category filter: %w", err)
		}
	}
	if f.Author != "" {
		authorID, err := s.resolveAuthor(ctx, f.Author)
		if err != nil {
			return nil, err
		}
		if authorID != uuid.Nil {
			w.add("p.author_id = ?", authorID)
		}
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	pagination := models.Pagination{
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
		Pages: int(math.Ceil(float64(total) / float64(f.Limit))),
	}
	// Pages past the end are empty; skipping the query also keeps the
	// offset from overflowing on huge page numbers.
	if f.Page > pagination.Pages {
		return &models.PostPage{Posts: []models.PostView{}, Pagination: pagination}, nil
	}

	args := append(w.args, f.Limit, (f.Page-1)*f.Limit)
	n := len(w.args)
	query := postViewSelect + w.String() +
		` ORDER BY p.published_at DESC NULLS LAST, p.created_at DESC` +
		` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	posts, err := s.queryPostViews(ctx, "list posts", query, args...)
	if err != nil {
		return nil, err
	}

	return &models.PostPage{Posts: posts, Pagination: pagination}, nil
}

// resolveAuthor maps a user id or username to an existing user id, or
// uuid.Nil when no such user exists.
func (s *PostStore) resolveAuthor(ctx context.Context, author string) (uuid.UUID, error) {
	var (
		id  uuid.UUID
		err error
	)
	if parsed, perr := uuid.Parse(author); perr == nil {
		err = s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1`, parsed).Scan(&id)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE username = $1`, author).Scan(&id)
	}
	if err == sql.ErrNoRows {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve author filter: %w", err)
	}
	return id, nil
}

// ListByAuthor returns every post by the given author regardless of status,
// most recently created first.
func (s *PostStore) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.PostView, error) {
	return s.queryPostViews(ctx, "list posts by author",
		postViewSelect+` WHERE p.author_id = $1 ORDER BY p.created_at DESC`, authorID)
}

// Update applies a partial update to the post with the given slug. It
// returns false if no such post exists. Renaming to a slug owned by another
// post returns ErrSlugTaken. published_at is stamped only on the first
// transition into published.
func (s *PostStore) Update(ctx context.Context, slug string, patch models.PostPatch) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT id FROM posts WHERE slug = $1 FOR UPDATE`, slug).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find post for update: %w", err)
	}

	var (
		sets []string
		args []any
	)
	set := func(expr string, arg any) {
		args = append(args, arg)
		sets = append(sets, strings.ReplaceAll(expr, "?", "$"+strconv.Itoa(len(args))))
	}

	if patch.Slug != nil && *patch.Slug != slug {
		var taken bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, *patch.Slug, id,
		).Scan(&taken)
		if err != nil {
			return false, fmt.Errorf("check post slug: %w", err)
		}
		if taken {
			return false, ErrSlugTaken
		}
		set("slug = ?", *patch.Slug)
	}
	if patch.Title != nil {
		set("title = ?", *patch.Title)
	}
	if patch.Excerpt != nil {
		set("excerpt = ?", *patch.Excerpt)
	}
	if patch.Content != nil {
		set("content = ?", *patch.Content)
		set("reading_time = ?", models.ReadingTime(*patch.Content))
	}
	if patch.CoverImage != nil {
		set("cover_image = ?", *patch.CoverImage)
	}
	if patch.Category != nil {
		cat, err := findOrCreateCategory(ctx, tx, *patch.Category)
		if err != nil {
			return false, err
		}
		set("category_id = ?", cat.ID)
	}
	if patch.Tags != nil {
		set("tags = ?", pq.Array(normalizeTags(patch.Tags)))
	}
	if patch.Status != nil {
		set("status = ?", *patch.Status)
		set("published_at = CASE WHEN ?::text = 'published' AND published_at IS NULL THEN NOW() ELSE published_at END",
			string(*patch.Status))
	}
	if patch.Featured != nil {
		set("featured = ?", *patch.Featured)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	_, err = tx.ExecContext(ctx,
		`UPDATE posts SET `+strings.Join(sets, ", ")+` WHERE id = $`+strconv.Itoa(len(args)), args...)
	if isUniqueViolation(err) {
		return false, ErrSlugTaken
	}
	if err != nil {
		return false, fmt.Errorf("update post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit post update: %w", err)
	}
	return true, nil
}

// Delete removes the post with the given slug. Comments are left in place.
// Returns false if no post matched.
func (s *PostStore) Delete(ctx context.Context, slug string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE slug = $1`, slug)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post rows: %w", err)
	}
	return n > 0, nil
}

// IncrementViews atomically adds one to the post's view counter.
func (s *PostStore) IncrementViews(ctx context.Context, slug string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE slug = $1`, slug); err != nil {
		return fmt.Errorf("increment post views: %w", err)
	}
	return nil
}

// likeEscaper escapes LIKE metacharacters so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search finds published posts whose title, excerpt or any tag contains q,
// case-insensitively. Queries shorter than two characters return nothing.
func (s *PostStore) Search(ctx context.Context, q string, opts SearchOptions) ([]models.PostView, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minSearchLength {
		return []models.PostView{}, nil
	}
	pattern := "%" + likeEscaper.Replace(q) + "%"

	match := `p.title ILIKE $1 OR p.excerpt ILIKE $1
		OR EXISTS (SELECT 1 FROM unnest(p.tags) AS t(tag) WHERE t.tag ILIKE $1)`
	if opts.IncludeContent {
		match += ` OR p.content ILIKE $1`
	}

	return s.queryPostViews(ctx, "search posts",
		postViewSelect+` WHERE p.status = 'published' AND (`+match+`)
		ORDER BY p.published_at DESC
		LIMIT $2`, pattern, SearchLimit)
}

// DeleteByCategory removes every post in the category and returns how many
// were deleted. The category itself is kept.
func (s *PostStore) DeleteByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE category_id = $1`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("delete posts by category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete posts by category rows: %w", err)
	}
	return n, nil
}

// NormalizeCoverImages replaces every cover image that is neither an absolute
// http(s) URL nor a local upload path with the placeholder and returns the
// number of posts changed.
func (s *PostStore) NormalizeCoverImages(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET cover_image = $1, updated_at = NOW()
		WHERE cover_image <> $1
		  AND cover_image NOT LIKE 'http://%'
		  AND cover_image NOT LIKE 'https://%'
		  AND cover_image NOT LIKE $2
	`, models.PlaceholderCoverImage, models.UploadPathPrefix+"%")
	if err != nil {
		return 0, fmt.Errorf("normalize cover images: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("normalize cover images rows: %w", err)
	}
	return n, nil
}
