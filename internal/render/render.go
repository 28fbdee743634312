// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the catalog pages.
// Templates are embedded into the binary; each page template is paired
// with the shared base layout.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path/filepath"

	"itemcatalog/internal/middleware"
	"itemcatalog/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds all data passed to page templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Session   *session.Data  // Current visitor session (nil if none)
	CSRFToken string         // CSRF token for mutating forms
	State     string         // Login nonce, only set on the home page
	Flashes   []string       // One-time notices popped from the session
	Data      map[string]any // Page-specific data
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	clientID  string
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Each page template is paired with the base layout.
// The OAuth client id is exposed to templates so the home page can
// configure the provider's sign-in widget.
func New(clientID string) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		clientID:  clientID,
	}

	funcMap := template.FuncMap{
		// clientID returns the OAuth client id for the sign-in widget.
		"clientID": func() string {
			return clientID
		},
		// itemsLabel formats an item count the way the listing pages show it.
		"itemsLabel": func(n int) string {
			if n == 1 {
				return "1 item"
			}
			return fmt.Sprintf("%d items", n)
		},
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || e.Name() == "base.html" {
			continue
		}

		name := e.Name()
		tmplName := name[:len(name)-len(filepath.Ext(name))]

		tmpl, err := template.New("base.html").Funcs(funcMap).ParseFS(
			templateFS, "templates/base.html", "templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a full catalog page inside the base layout. The session and
// CSRF token are filled in from the request when the caller left them empty.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.CSRFToken == "" {
		data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	}
	if data.Data == nil {
		data.Data = map[string]any{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := executeTemplate(w, tmpl, "base.html", data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// executeTemplate wraps template execution with error handling.
func executeTemplate(w io.Writer, tmpl *template.Template, name string, data any) error {
	return tmpl.ExecuteTemplate(w, name, data)
}
