package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// defaultCategories is the fixed taxonomy the catalog ships with. There are
// no category management routes, so this is the only place categories are
// created.
var defaultCategories = []string{
	"Soccer",
	"Basketball",
	"BaseBall",
	"Frisbee",
	"Snowboarding",
	"Rock Climbing",
	"Foosball",
	"Skating",
	"Hockey",
}

// Seed populates the database with the default category list.
// It is a no-op when categories already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	for _, name := range defaultCategories {
		if _, err := db.Exec(`INSERT INTO categories (name) VALUES ($1)`, name); err != nil {
			return fmt.Errorf("seed insert category %q: %w", name, err)
		}
	}

	slog.Info("database seeded with default categories", "count", len(defaultCategories))
	return nil
}
