// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the catalog's persisted entities: categories and
// the items filed under them.
package models

import "time"

// Category is a named grouping for catalog items. Categories are seeded at
// setup time and have no management routes of their own.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// ItemCount is a virtual field populated by the category summary query.
	ItemCount int `json:"-"`
}
