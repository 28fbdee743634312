// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"itemcatalog/internal/database"
	"itemcatalog/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "itemcatalog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "itemcatalog")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// uniqueName returns a name unlikely to collide with other test runs.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// createTestCategory inserts a category and registers cleanup that removes
// it along with any items still filed under it.
func createTestCategory(t *testing.T, db *sql.DB, name string) *models.Category {
	t.Helper()

	cat, err := NewCategoryStore(db).Create(name)
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM items WHERE category_id = $1", cat.ID)
		db.Exec("DELETE FROM categories WHERE id = $1", cat.ID)
	})
	return cat
}

// createTestItem inserts an item and registers cleanup.
func createTestItem(t *testing.T, db *sql.DB, title string, categoryID int64, userID string) *models.Item {
	t.Helper()

	item, err := NewItemStore(db).Create(&models.Item{
		Title:       title,
		Description: "test item",
		CategoryID:  categoryID,
		UserID:      userID,
	})
	if err != nil {
		t.Fatalf("create test item: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM items WHERE id = $1", item.ID)
	})
	return item
}
