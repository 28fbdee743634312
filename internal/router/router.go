// Package router sets up all HTTP routes and middleware chains for the
// item catalog. Read routes stay open to anonymous visitors; the item
// mutation routes sit behind authentication and CSRF protection.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"itemcatalog/internal/handlers"
	"itemcatalog/internal/middleware"
	"itemcatalog/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. When secure is true, CSRF cookies are marked
// HTTPS-only.
func New(sessionStore *session.Store, secure bool, catalog *handlers.Catalog, items *handlers.Items, auth *handlers.Auth) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/catalog", http.StatusSeeOther)
	})

	// Public catalog routes.
	r.Get("/catalog", catalog.Home)
	r.Post("/catalog", auth.LoginSubmit) // protected by the login nonce, not the CSRF cookie
	r.Get("/catalog.json", catalog.CatalogJSON)
	r.Get("/catalog/categories/{name}", catalog.CategoryDetail)
	r.Get("/catalog/items/{title}", catalog.ItemDetail)
	r.Get("/gdisconnect", auth.Disconnect)

	// Item management — requires a verified identity and CSRF protection.
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRF(secure))
		r.Use(middleware.RequireAuth(sessionStore))

		r.Get("/catalog/items/new", items.NewForm)
		r.Post("/catalog/items/new", items.Create)
		r.Get("/catalog/items/{title}/edit", items.EditForm)
		r.Post("/catalog/items/{title}/edit", items.Update)
		r.Post("/catalog/items/{title}/delete", items.Delete)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
