// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"itemcatalog/internal/models"
)

// ItemStore handles all item-related database operations.
type ItemStore struct {
	db *sql.DB
}

// NewItemStore creates a new ItemStore with the given database connection.
func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

const itemColumns = `id, title, description, category_id, user_id, created_at, updated_at`

// scanItem scans a row into an Item struct.
func scanItem(scanner interface{ Scan(...any) error }) (*models.Item, error) {
	var i models.Item
	err := scanner.Scan(
		&i.ID, &i.Title, &i.Description, &i.CategoryID,
		&i.UserID, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Latest returns all items joined with their category name, newest first.
// Ties on the modification timestamp keep insertion order.
func (s *ItemStore) Latest() ([]models.Item, error) {
	rows, err := s.db.Query(`
		SELECT i.id, i.title, i.description, i.category_id, i.user_id,
		       i.created_at, i.updated_at, c.name
		FROM items i
		JOIN categories c ON c.id = i.category_id
		ORDER BY i.updated_at DESC, i.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("latest items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var i models.Item
		if err := rows.Scan(
			&i.ID, &i.Title, &i.Description, &i.CategoryID, &i.UserID,
			&i.CreatedAt, &i.UpdatedAt, &i.CategoryName,
		); err != nil {
			return nil, fmt.Errorf("scan latest item: %w", err)
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// ListByCategory returns the items filed under one category, in storage order.
func (s *ItemStore) ListByCategory(categoryID int64) ([]models.Item, error) {
	rows, err := s.db.Query(`SELECT `+itemColumns+` FROM items WHERE category_id = $1 ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list items by category: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *i)
	}
	return items, rows.Err()
}

// FindByTitle retrieves an item by its unique title. Returns nil if not found.
func (s *ItemStore) FindByTitle(title string) (*models.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemColumns+` FROM items WHERE title = $1`, title)
	i, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item by title: %w", err)
	}
	return i, nil
}

// TitleExists reports whether any item carries the given title. Handlers use
// it for a friendly pre-check; the unique index remains the real guarantee.
func (s *ItemStore) TitleExists(title string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM items WHERE title = $1)`, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("title exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new item and returns it. A title collision yields
// ErrDuplicateTitle.
func (s *ItemStore) Create(i *models.Item) (*models.Item, error) {
	row := s.db.QueryRow(`
		INSERT INTO items (title, description, category_id, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+itemColumns,
		i.Title, i.Description, i.CategoryID, i.UserID,
	)
	result, err := scanItem(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateTitle
	}
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return result, nil
}

// Update modifies an existing item's title, description, and category. The
// modification timestamp is computed at write time. A title collision with
// another item yields ErrDuplicateTitle.
func (s *ItemStore) Update(i *models.Item) error {
	_, err := s.db.Exec(`
		UPDATE items SET
			title = $1, description = $2, category_id = $3, updated_at = NOW()
		WHERE id = $4
	`, i.Title, i.Description, i.CategoryID, i.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateTitle
	}
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// Delete permanently removes an item by ID.
func (s *ItemStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
