// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether s is a known post status.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// WordsPerMinute is the reading speed used to estimate reading time.
const WordsPerMinute = 200

// PlaceholderCoverImage replaces cover images that are not absolute URLs.
const PlaceholderCoverImage = "/placeholder.jpg"

// UploadPathPrefix is the path under which locally stored uploads are served.
const UploadPathPrefix = "/uploads/"

// Post is a blog post as stored in the posts table. Author and category are
// held as bare references; use PostView for the denormalized form.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	CoverImage  string     `json:"coverImage"`
	CategoryID  uuid.UUID  `json:"categoryId"`
	Tags        []string   `json:"tags"`
	AuthorID    uuid.UUID  `json:"authorId"`
	Status      PostStatus `json:"status"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Featured    bool       `json:"featured"`
	Views       int        `json:"views"`
	ReadingTime int        `json:"readingTime"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// PostView is a post with its author and category embedded inline.
type PostView struct {
	Post
	Author   AuthorSummary   `json:"author"`
	Category CategorySummary `json:"category"`
}

// NewPost carries the fields needed to create a post. Category is a
// category slug; the category is created if it does not exist yet.
type NewPost struct {
	Title      string
	Slug       string
	Excerpt    string
	Content    string
	CoverImage string
	Category   string
	Tags       []string
	AuthorID   uuid.UUID
	Status     PostStatus
	Featured   bool
}

// PostPatch is a partial update. Nil fields are left unchanged.
type PostPatch struct {
	Title      *string
	Slug       *string
	Excerpt    *string
	Content    *string
	CoverImage *string
	Category   *string
	Tags       []string
	Status     *PostStatus
	Featured   *bool
}

// PostFilter selects posts for listing. Zero values mean "no filter",
// except Status which defaults to published.
type PostFilter struct {
	Featured bool
	Limit    int
	Page     int
	Category string // category slug
	Author   string // user id or username
	Status   PostStatus
}

// Pagination describes one page of a listing.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// PostPage is a page of denormalized posts.
type PostPage struct {
	Posts      []PostView `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// WordCount counts whitespace-separated fields in content.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// ReadingTime estimates minutes to read content at WordsPerMinute.
func ReadingTime(content string) int {
	return int(math.Ceil(float64(WordCount(content)) / WordsPerMinute))
}

// NormalizeCoverImage returns url if it is an absolute http(s) URL or a
// local upload path, and the placeholder image otherwise.
func NormalizeCoverImage(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") ||
		strings.HasPrefix(url, UploadPathPrefix) {
		return url
	}
	return PlaceholderCoverImage
}

// ImageURL resolves an image reference for display. Absolute URLs pass
// through, /uploads/ paths are prefixed with appURL, other rooted paths are
// kept, and anything else falls back to the placeholder.
func ImageURL(url, appURL string) string {
	switch {
	case url == "":
		return PlaceholderCoverImage
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return url
	case strings.HasPrefix(url, UploadPathPrefix):
		return strings.TrimRight(appURL, "/") + url
	case strings.HasPrefix(url, "/"):
		return url
	}
	return PlaceholderCoverImage
}
