// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"
	"time"

	"itemcatalog/internal/models"
)

func TestItemCreateAndFindByTitle(t *testing.T) {
	db := testDB(t)
	cat := createTestCategory(t, db, uniqueName("Tennis"))
	title := uniqueName("Racket")
	created := createTestItem(t, db, title, cat.ID, "owner-1")

	s := NewItemStore(db)

	found, err := s.FindByTitle(title)
	if err != nil {
		t.Fatalf("FindByTitle: %v", err)
	}
	if found == nil {
		t.Fatal("expected item, got nil")
	}
	if found.ID != created.ID {
		t.Errorf("id: got %d, want %d", found.ID, created.ID)
	}
	if found.UserID != "owner-1" {
		t.Errorf("user_id: got %q, want %q", found.UserID, "owner-1")
	}

	missing, err := s.FindByTitle(uniqueName("Nonexistent"))
	if err != nil {
		t.Fatalf("FindByTitle missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown title, got %+v", missing)
	}
}

func TestItemCreateDuplicateTitle(t *testing.T) {
	db := testDB(t)
	cat := createTestCategory(t, db, uniqueName("Golf"))
	title := uniqueName("Driver")
	createTestItem(t, db, title, cat.ID, "owner-1")

	_, err := NewItemStore(db).Create(&models.Item{
		Title:       title,
		Description: "another one",
		CategoryID:  cat.ID,
		UserID:      "owner-2",
	})
	if !errors.Is(err, ErrDuplicateTitle) {
		t.Errorf("expected ErrDuplicateTitle, got %v", err)
	}
}

func TestItemUpdateDuplicateTitle(t *testing.T) {
	db := testDB(t)
	cat := createTestCategory(t, db, uniqueName("Rowing"))
	taken := uniqueName("Oar")
	createTestItem(t, db, taken, cat.ID, "owner-1")
	victim := createTestItem(t, db, uniqueName("Scull"), cat.ID, "owner-1")

	victim.Title = taken
	err := NewItemStore(db).Update(victim)
	if !errors.Is(err, ErrDuplicateTitle) {
		t.Errorf("expected ErrDuplicateTitle, got %v", err)
	}
}

func TestItemUpdateRefreshesTimestamp(t *testing.T) {
	db := testDB(t)
	cat := createTestCategory(t, db, uniqueName("Cycling"))
	item := createTestItem(t, db, uniqueName("Helmet"), cat.ID, "owner-1")

	s := NewItemStore(db)

	time.Sleep(10 * time.Millisecond)
	item.Description = "updated description"
	if err := s.Update(item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	after, err := s.FindByTitle(item.Title)
	if err != nil {
		t.Fatalf("FindByTitle: %v", err)
	}
	if after == nil {
		t.Fatal("item vanished after update")
	}
	if after.Description != "updated description" {
		t.Errorf("description: got %q", after.Description)
	}
	if !after.UpdatedAt.After(item.UpdatedAt) {
		t.Errorf("updated_at not refreshed: before %v, after %v", item.UpdatedAt, after.UpdatedAt)
	}
	if !after.CreatedAt.Equal(item.CreatedAt) {
		t.Errorf("created_at changed: before %v, after %v", item.CreatedAt, after.CreatedAt)
	}
}

func TestItemDelete(t *testing.T) {
	db := testDB(t)
	cat := createTestCategory(t, db, uniqueName("Darts"))
	item := createTestItem(t, db, uniqueName("Board"), cat.ID, "owner-1")

	s := NewItemStore(db)

	if err := s.Delete(item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	found, err := s.FindByTitle(item.Title)
	if err != nil {
		t.Fatalf("FindByTitle after delete: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil after delete, got %+v", found)
	}
}

func TestItemTitleExists(t *testing.T) {
	db := testDB(t)
	cat := createTestCategory(t, db, uniqueName("Boxing"))
	title := uniqueName("Gloves")
	createTestItem(t, db, title, cat.ID, "owner-1")

	s := NewItemStore(db)

	exists, err := s.TitleExists(title)
	if err != nil {
		t.Fatalf("TitleExists: %v", err)
	}
	if !exists {
		t.Error("expected title to exist")
	}

	exists, err = s.TitleExists(uniqueName("Nonexistent"))
	if err != nil {
		t.Fatalf("TitleExists missing: %v", err)
	}
	if exists {
		t.Error("expected title not to exist")
	}
}

// TestItemLatestOrdering creates three items in order and expects them back
// newest first. The sleeps keep the write timestamps distinct.
func TestItemLatestOrdering(t *testing.T) {
	db := testDB(t)
	cat := createTestCategory(t, db, uniqueName("Fencing"))

	first := createTestItem(t, db, uniqueName("Foil"), cat.ID, "owner-1")
	time.Sleep(10 * time.Millisecond)
	second := createTestItem(t, db, uniqueName("Epee"), cat.ID, "owner-1")
	time.Sleep(10 * time.Millisecond)
	third := createTestItem(t, db, uniqueName("Sabre"), cat.ID, "owner-1")

	items, err := NewItemStore(db).Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}

	positions := make(map[int64]int)
	for idx, i := range items {
		positions[i.ID] = idx
		if i.ID == first.ID && i.CategoryName != cat.Name {
			t.Errorf("category name: got %q, want %q", i.CategoryName, cat.Name)
		}
	}

	if positions[third.ID] > positions[second.ID] || positions[second.ID] > positions[first.ID] {
		t.Errorf("latest ordering wrong: third at %d, second at %d, first at %d",
			positions[third.ID], positions[second.ID], positions[first.ID])
	}
}

func TestItemListByCategory(t *testing.T) {
	db := testDB(t)
	cat := createTestCategory(t, db, uniqueName("Swimming"))
	other := createTestCategory(t, db, uniqueName("Diving"))

	a := createTestItem(t, db, uniqueName("Goggles"), cat.ID, "owner-1")
	b := createTestItem(t, db, uniqueName("Cap"), cat.ID, "owner-1")
	createTestItem(t, db, uniqueName("Fins"), other.ID, "owner-1")

	items, err := NewItemStore(db).ListByCategory(cat.ID)
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != a.ID || items[1].ID != b.ID {
		t.Errorf("unexpected order: got %d, %d", items[0].ID, items[1].ID)
	}
}
