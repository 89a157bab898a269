// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notify"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

const testAppURL = "http://inkwell.test"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		host := envOr("POSTGRES_HOST", "localhost")
		port := envOr("POSTGRES_PORT", "5432")
		user := envOr("POSTGRES_USER", "inkwell")
		pass := envOr("POSTGRES_PASSWORD", "changeme")
		name := envOr("POSTGRES_DB", "inkwell")
		dsn = "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session, reset and cache keys.
		for _, pattern := range []string{"session:*", "reset:*", "resp:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// captureMailer records every message it is asked to send.
type captureMailer struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (m *captureMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.sent...)
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB          *sql.DB
	Valkey      *redis.Client
	Sessions    *session.Store
	Resets      *session.ResetTokens
	UserStore   *store.UserStore
	PostStore   *store.PostStore
	Categories  *store.CategoryStore
	Comments    *store.CommentStore
	Subscribers *store.SubscriberStore
	Cache       *cache.ResponseCache
	Mailer      *captureMailer
	Notifier    *notify.Notifier
	Posts       *Posts
	Auth        *Auth
	Public      *Public
	Admin       *Admin
	Users       *Users
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	resets := session.NewResetTokens(vk)
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	categories := store.NewCategoryStore(db)
	comments := store.NewCommentStore(db)
	subscribers := store.NewSubscriberStore(db)
	rc := cache.NewResponseCache(vk, time.Minute)
	mailer := &captureMailer{}
	notifier := notify.New(subscribers, mailer, testAppURL)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		notifier.Wait(ctx)
	})

	return &testEnv{
		DB:          db,
		Valkey:      vk,
		Sessions:    sessions,
		Resets:      resets,
		UserStore:   userStore,
		PostStore:   postStore,
		Categories:  categories,
		Comments:    comments,
		Subscribers: subscribers,
		Cache:       rc,
		Mailer:      mailer,
		Notifier:    notifier,
		Posts:       NewPosts(postStore, comments, rc, notifier, testAppURL),
		Auth:        NewAuth(sessions, resets, userStore, notifier),
		Public:      NewPublic(categories, userStore, postStore, subscribers, testAppURL),
		Admin:       NewAdmin(postStore, categories, rc),
		Users:       NewUsers(userStore, postStore, sessions, testAppURL),
	}
}

// uniq returns prefix plus a short random suffix.
func uniq(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// newTestUser registers a throwaway user with the given role and removes
// it on cleanup.
func (env *testEnv) newTestUser(t *testing.T, role models.Role) *models.User {
	t.Helper()
	name := uniq("h")
	u, err := env.UserStore.Create(context.Background(), models.NewUser{
		Name:     "Test " + name,
		Username: name,
		Email:    name + "@handler-test.local",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	if role == models.RoleAdmin {
		if _, err := env.DB.Exec("UPDATE users SET role = 'admin' WHERE id = $1", u.ID); err != nil {
			t.Fatalf("promote test user: %v", err)
		}
		u.Role = models.RoleAdmin
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// newTestPost creates a post by author in a fresh category and removes
// both on cleanup.
func (env *testEnv) newTestPost(t *testing.T, author *models.User, status models.PostStatus) *models.Post {
	t.Helper()
	catSlug := uniq("cat")
	p, err := env.PostStore.Create(context.Background(), models.NewPost{
		Title:    "Post " + uniq("t"),
		Slug:     uniq("post"),
		Excerpt:  "An excerpt",
		Content:  "Some content here",
		Category: catSlug,
		Tags:     []string{"go"},
		AuthorID: author.ID,
		Status:   status,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	cleanPosts(t, env.DB, p.Slug)
	cleanCategories(t, env.DB, catSlug)
	return p
}

// testSession builds session data for u.
func testSession(u *models.User) *session.Data {
	return &session.Data{
		UserID:   u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Username: u.Username,
		Image:    u.Image,
		Role:     string(u.Role),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return middleware.WithSession(ctx, data)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// newJSONRequest builds a request with body encoded as JSON, optionally
// carrying a session. A nil body sends no payload.
func newJSONRequest(t *testing.T, method, target string, body any, sess *session.Data) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	if sess != nil {
		req = req.WithContext(ctxWithSession(req.Context(), sess))
	}
	return req
}

// serve runs h against req and returns the recorder.
func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

// decodeJSON unmarshals the recorded body into dst.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// messageOf returns the "message" field of a JSON response.
func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	decodeJSON(t, rec, &body)
	return body.Message
}

// cleanPosts removes test posts by slug on cleanup.
func cleanPosts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, s := range slugs {
			db.Exec("DELETE FROM posts WHERE slug = $1", s)
		}
	})
}

// cleanCategories removes test categories by slug on cleanup.
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, s := range slugs {
			db.Exec("DELETE FROM categories WHERE slug = $1", s)
		}
	})
}
