// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"crypto/rand"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"itemcatalog/internal/middleware"
	"itemcatalog/internal/models"
	"itemcatalog/internal/render"
	"itemcatalog/internal/session"
	"itemcatalog/internal/store"
)

// stateLength and stateCharset describe the one-time login nonce: 32
// characters drawn from uppercase letters and digits.
const (
	stateLength  = 32
	stateCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Catalog groups the read-only handlers: the home listing, category and
// item detail pages, and the JSON export.
type Catalog struct {
	renderer   *render.Renderer
	sessions   *session.Store
	categories *store.CategoryStore
	items      *store.ItemStore
}

// NewCatalog creates a new Catalog handler group.
func NewCatalog(renderer *render.Renderer, sessions *session.Store, categories *store.CategoryStore, items *store.ItemStore) *Catalog {
	return &Catalog{
		renderer:   renderer,
		sessions:   sessions,
		categories: categories,
		items:      items,
	}
}

// Home renders the main catalog page: all categories with item counts and
// the latest items. A fresh login nonce is stored in the session on every
// load so an anonymous visitor can start the sign-in flow.
func (c *Catalog) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := c.sessions.Ensure(ctx, w, r)
	if err != nil {
		slog.Error("session ensure failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	state, err := generateState()
	if err != nil {
		slog.Error("state generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	sess.State = state
	if err := c.sessions.Update(ctx, r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	categories, err := c.categories.Summary()
	if err != nil {
		slog.Error("category summary failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	items, err := c.items.Latest()
	if err != nil {
		slog.Error("latest items failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	c.renderer.Page(w, r, "home", &render.PageData{
		Title:   "Catalog",
		Session: sess,
		State:   state,
		Flashes: c.sessions.PopFlashes(ctx, r, sess),
		Data: map[string]any{
			"Categories": categories,
			"Items":      items,
		},
	})
}

// CategoryDetail renders one category's item listing, looked up by name.
func (c *Catalog) CategoryDetail(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	category, err := c.categories.FindByName(name)
	if err != nil {
		slog.Error("category lookup failed", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.NotFound(w, r)
		return
	}

	items, err := c.items.ListByCategory(category.ID)
	if err != nil {
		slog.Error("category items failed", "category", category.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	c.renderer.Page(w, r, "category", &render.PageData{
		Title: category.Name,
		Data: map[string]any{
			"Category":  category,
			"Items":     items,
			"ItemCount": len(items),
		},
	})
}

// ItemDetail renders a single item page, looked up by its unique title.
// Edit and delete controls appear only for the item's owner.
func (c *Catalog) ItemDetail(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	item, err := c.items.FindByTitle(title)
	if err != nil {
		slog.Error("item lookup failed", "title", title, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.NotFound(w, r)
		return
	}

	if category, err := c.categories.FindByID(item.CategoryID); err == nil && category != nil {
		item.CategoryName = category.Name
	}

	sess := middleware.SessionFromCtx(r.Context())
	isOwner := sess != nil && item.OwnedBy(sess.AuthID)

	c.renderer.Page(w, r, "item", &render.PageData{
		Title: item.Title,
		Data: map[string]any{
			"Item":    item,
			"IsOwner": isOwner,
		},
	})
}

// categoryExport is the JSON export shape for one category. The singular
// "Item" key and the flat item fields match the established API contract.
type categoryExport struct {
	models.Category
	Items []models.Item `json:"Item"`
}

// CatalogJSON serves the whole catalog as one JSON document.
func (c *Catalog) CatalogJSON(w http.ResponseWriter, r *http.Request) {
	categories, err := c.categories.List()
	if err != nil {
		slog.Error("catalog export categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	export := make([]categoryExport, 0, len(categories))
	for _, category := range categories {
		items, err := c.items.ListByCategory(category.ID)
		if err != nil {
			slog.Error("catalog export items failed", "category", category.ID, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []models.Item{}
		}
		export = append(export, categoryExport{Category: category, Items: items})
	}

	respondJSON(w, http.StatusOK, map[string]any{"Categories": export})
}

// respondJSON writes v as a JSON response body.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}

// generateState produces the one-time login nonce.
func generateState() (string, error) {
	buf := make([]byte, stateLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = stateCharset[int(b)%len(stateCharset)]
	}
	return string(buf), nil
}
