// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Item is a user-submitted catalog entry belonging to one category.
// Titles are unique across the whole catalog, enforced by a unique index.
type Item struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CategoryID  int64     `json:"cat_id"`
	UserID      string    `json:"-"` // external identity of the creator; the ownership key
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	// CategoryName is a virtual field populated by joined queries.
	CategoryName string `json:"-"`
}

// OwnedBy reports whether the item was created by the given external
// identity. Edit and delete are only permitted when this holds.
func (i *Item) OwnedBy(authID string) bool {
	return authID != "" && i.UserID == authID
}
