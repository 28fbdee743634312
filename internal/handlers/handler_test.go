// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"itemcatalog/internal/database"
	"itemcatalog/internal/middleware"
	"itemcatalog/internal/models"
	"itemcatalog/internal/render"
	"itemcatalog/internal/session"
	"itemcatalog/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "itemcatalog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "itemcatalog")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

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
	goose.SetBaseFS(nil)

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
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Valkey     *redis.Client
	Renderer   *render.Renderer
	Sessions   *session.Store
	Categories *store.CategoryStore
	ItemStore  *store.ItemStore
	Catalog    *Catalog
	Items      *Items
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New("test-client.apps.example.com")
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(vk, false)
	categories := store.NewCategoryStore(db)
	items := store.NewItemStore(db)

	return &testEnv{
		DB:         db,
		Valkey:     vk,
		Renderer:   renderer,
		Sessions:   sessions,
		Categories: categories,
		ItemStore:  items,
		Catalog:    NewCatalog(renderer, sessions, categories, items),
		Items:      NewItems(renderer, sessions, categories, items),
	}
}

// testSession creates session data for an authenticated visitor.
func testSession(authID string) *session.Data {
	return &session.Data{
		AccessToken: "test-token",
		SubjectID:   authID,
		DisplayName: "Test User",
		AuthID:      authID,
	}
}

// createSession persists data in the session store and returns the cookie.
func createSession(t *testing.T, env *testEnv, data *session.Data) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	id, err := env.Sessions.Create(context.Background(), w, data)
	if err != nil {
		t.Fatalf("session create: %v", err)
	}
	return &http.Cookie{Name: session.CookieName, Value: id}
}

// sessionData reads the current session payload back from Valkey.
func sessionData(t *testing.T, env *testEnv, cookie *http.Cookie) *session.Data {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	data, err := env.Sessions.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("session get: %v", err)
	}
	return data
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// uniqueName returns a name unlikely to collide with other test runs.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// seedCategory inserts a category and registers cleanup.
func seedCategory(t *testing.T, env *testEnv, name string) *models.Category {
	t.Helper()

	cat, err := env.Categories.Create(name)
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM items WHERE category_id = $1", cat.ID)
		env.DB.Exec("DELETE FROM categories WHERE id = $1", cat.ID)
	})
	return cat
}

// seedItem inserts an item and registers cleanup.
func seedItem(t *testing.T, env *testEnv, title string, categoryID int64, userID string) *models.Item {
	t.Helper()

	item, err := env.ItemStore.Create(&models.Item{
		Title:       title,
		Description: "seeded for test",
		CategoryID:  categoryID,
		UserID:      userID,
	})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM items WHERE id = $1", item.ID)
	})
	return item
}
