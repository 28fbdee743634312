// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"itemcatalog/internal/middleware"
	"itemcatalog/internal/models"
	"itemcatalog/internal/render"
	"itemcatalog/internal/session"
	"itemcatalog/internal/store"
)

// Items groups the mutating handlers: create, edit, and delete. All routes
// in this group sit behind RequireAuth, so a session with a verified
// identity is guaranteed.
type Items struct {
	renderer   *render.Renderer
	sessions   *session.Store
	categories *store.CategoryStore
	items      *store.ItemStore
}

// NewItems creates a new Items handler group.
func NewItems(renderer *render.Renderer, sessions *session.Store, categories *store.CategoryStore, items *store.ItemStore) *Items {
	return &Items{
		renderer:   renderer,
		sessions:   sessions,
		categories: categories,
		items:      items,
	}
}

// NewForm renders the item creation form.
func (h *Items) NewForm(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())

	h.renderer.Page(w, r, "item_new", &render.PageData{
		Title:   "Add Item",
		Flashes: h.sessions.PopFlashes(r.Context(), r, sess),
		Data: map[string]any{
			"Categories": categories,
		},
	})
}

// Create processes the item creation form. Blank fields and duplicate
// titles send the user back to the form with a notice; on success the
// "keep creating" checkbox decides whether to return to the form or home.
func (h *Items) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))

	if msg := validateItemTitle(title); msg != "" {
		h.flashAndRedirect(w, r, msg, "/catalog/items/new")
		return
	}
	if msg := validateItemDescription(description); msg != "" {
		h.flashAndRedirect(w, r, msg, "/catalog/items/new")
		return
	}

	category, ok := h.lookupCategory(w, r, r.FormValue("category"), "/catalog/items/new")
	if !ok {
		return
	}

	exists, err := h.items.TitleExists(title)
	if err != nil {
		slog.Error("title pre-check failed", "title", title, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if exists {
		h.flashAndRedirect(w, r, "An item with this title already exists.", "/catalog/items/new")
		return
	}

	item := &models.Item{
		Title:       title,
		Description: description,
		CategoryID:  category.ID,
		UserID:      sess.AuthID,
	}

	if _, err := h.items.Create(item); err != nil {
		if errors.Is(err, store.ErrDuplicateTitle) {
			h.flashAndRedirect(w, r, "An item with this title already exists.", "/catalog/items/new")
			return
		}
		slog.Error("item create failed", "title", title, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.sessions.AddFlash(ctx, w, r, fmt.Sprintf("New item %q created.", title))

	if r.FormValue("chksavenew") != "" {
		http.Redirect(w, r, "/catalog/items/new", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/catalog", http.StatusSeeOther)
}

// EditForm renders the edit form for an item the visitor owns.
func (h *Items) EditForm(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookupOwnedItem(w, r)
	if !ok {
		return
	}

	categories, err := h.categories.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())

	h.renderer.Page(w, r, "item_edit", &render.PageData{
		Title:   "Edit " + item.Title,
		Flashes: h.sessions.PopFlashes(r.Context(), r, sess),
		Data: map[string]any{
			"Item":       item,
			"Categories": categories,
		},
	})
}

// Update processes the edit form. A field submitted blank keeps its stored
// value; a changed title that collides with another item sends the user
// back to the form.
func (h *Items) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookupOwnedItem(w, r)
	if !ok {
		return
	}

	editURL := "/catalog/items/" + url.PathEscape(item.Title) + "/edit"

	// Blank fields leave the stored value untouched.
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		if msg := validateItemTitle(title); msg != "" {
			h.flashAndRedirect(w, r, msg, editURL)
			return
		}
		if title != item.Title {
			exists, err := h.items.TitleExists(title)
			if err != nil {
				slog.Error("title pre-check failed", "title", title, "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if exists {
				h.flashAndRedirect(w, r, "An item with this title already exists.", editURL)
				return
			}
		}
		item.Title = title
	}

	if description := strings.TrimSpace(r.FormValue("description")); description != "" {
		if msg := validateItemDescription(description); msg != "" {
			h.flashAndRedirect(w, r, msg, editURL)
			return
		}
		item.Description = description
	}

	if raw := r.FormValue("category"); raw != "" {
		category, ok := h.lookupCategory(w, r, raw, editURL)
		if !ok {
			return
		}
		item.CategoryID = category.ID
	}

	if err := h.items.Update(item); err != nil {
		if errors.Is(err, store.ErrDuplicateTitle) {
			h.flashAndRedirect(w, r, "An item with this title already exists.", editURL)
			return
		}
		slog.Error("item update failed", "id", item.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.sessions.AddFlash(r.Context(), w, r, fmt.Sprintf("Item %q updated.", item.Title))
	http.Redirect(w, r, "/catalog/items/"+url.PathEscape(item.Title), http.StatusSeeOther)
}

// Delete permanently removes an item the visitor owns.
func (h *Items) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookupOwnedItem(w, r)
	if !ok {
		return
	}

	if err := h.items.Delete(item.ID); err != nil {
		slog.Error("item delete failed", "id", item.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.sessions.AddFlash(r.Context(), w, r, fmt.Sprintf("Item %q deleted.", item.Title))
	http.Redirect(w, r, "/catalog", http.StatusSeeOther)
}

// lookupOwnedItem resolves the {title} route parameter and enforces
// ownership. It writes the response itself on failure: 404 for an unknown
// title, a notice plus redirect home for someone else's item.
func (h *Items) lookupOwnedItem(w http.ResponseWriter, r *http.Request) (*models.Item, bool) {
	title := chi.URLParam(r, "title")

	item, err := h.items.FindByTitle(title)
	if err != nil {
		slog.Error("item lookup failed", "title", title, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if item == nil {
		http.NotFound(w, r)
		return nil, false
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || !item.OwnedBy(sess.AuthID) {
		h.flashAndRedirect(w, r, "You can only change items you created.", "/catalog")
		return nil, false
	}

	return item, true
}

// lookupCategory parses and resolves a category form value. On failure it
// notifies the user and redirects back to the given form URL.
func (h *Items) lookupCategory(w http.ResponseWriter, r *http.Request, raw, formURL string) (*models.Category, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.flashAndRedirect(w, r, "Please choose a valid category.", formURL)
		return nil, false
	}

	category, err := h.categories.FindByID(id)
	if err != nil {
		slog.Error("category lookup failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if category == nil {
		h.flashAndRedirect(w, r, "Please choose a valid category.", formURL)
		return nil, false
	}

	return category, true
}

// flashAndRedirect records a notice and sends the user to target.
func (h *Items) flashAndRedirect(w http.ResponseWriter, r *http.Request, message, target string) {
	if err := h.sessions.AddFlash(r.Context(), w, r, message); err != nil {
		slog.Warn("flash failed", "error", err)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
