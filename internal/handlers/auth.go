// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"itemcatalog/internal/identity"
	"itemcatalog/internal/middleware"
	"itemcatalog/internal/session"
)

// loginBodyLimit caps the authorization code POST body.
const loginBodyLimit = 4096

// Auth handles the sign-in flow against the external identity provider
// and the disconnect route. Failures during the flow answer with a JSON
// message and never leave identity fields in the session.
type Auth struct {
	sessions *session.Store
	verifier *identity.Verifier
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, verifier *identity.Verifier) *Auth {
	return &Auth{
		sessions: sessions,
		verifier: verifier,
	}
}

// LoginSubmit completes the sign-in: the browser POSTs the provider's
// one-time authorization code with the login nonce echoed in the state
// query parameter. The code is exchanged for credentials, the access token
// is introspected, and only a fully verified identity is written to the
// session.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := a.sessions.Ensure(ctx, w, r)
	if err != nil {
		slog.Error("session ensure failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// The nonce must match what the home page stored. On mismatch nothing
	// identity-related may remain in the session.
	state := r.URL.Query().Get("state")
	if state == "" || state != sess.State {
		a.failLogin(ctx, w, r, sess, "Invalid state parameter.")
		return
	}

	code, err := io.ReadAll(io.LimitReader(r.Body, loginBodyLimit))
	if err != nil || len(code) == 0 {
		a.failLogin(ctx, w, r, sess, "Failed to upgrade the authorization code.")
		return
	}

	creds, err := a.verifier.Exchange(ctx, string(code))
	if err != nil {
		slog.Warn("code exchange failed", "error", err)
		a.failLogin(ctx, w, r, sess, "Failed to upgrade the authorization code.")
		return
	}

	info, err := a.verifier.Introspect(ctx, creds.AccessToken)
	if err != nil {
		slog.Warn("token introspection failed", "error", err)
		a.failLogin(ctx, w, r, sess, "Failed to verify the access token.")
		return
	}
	if info.UserID != creds.SubjectID {
		a.failLogin(ctx, w, r, sess, "Token's user ID doesn't match given user ID.")
		return
	}
	if info.IssuedTo != a.verifier.ClientID() {
		slog.Warn("token issued to a different client", "issued_to", info.IssuedTo)
		a.failLogin(ctx, w, r, sess, "Token's client ID does not match app's.")
		return
	}

	// Logging in again with the same account is a no-op.
	if sess.AccessToken != "" && sess.SubjectID == creds.SubjectID {
		respondJSON(w, http.StatusOK, "Current user is already connected.")
		return
	}

	profile, err := a.verifier.UserInfo(ctx, creds.AccessToken)
	if err != nil {
		slog.Warn("user info fetch failed", "error", err)
		a.failLogin(ctx, w, r, sess, "Failed to fetch the user profile.")
		return
	}

	sess.AccessToken = creds.AccessToken
	sess.SubjectID = creds.SubjectID
	sess.DisplayName = profile.Name
	sess.AuthID = profile.ID
	sess.State = "" // the nonce is one-time
	if err := a.sessions.Update(ctx, r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("user connected", "subject", creds.SubjectID, "name", profile.Name)
	http.Redirect(w, r, "/catalog", http.StatusSeeOther)
}

// Disconnect revokes the provider token and destroys the session.
// Revocation is best effort: the session is torn down even when the
// provider call fails.
func (a *Auth) Disconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess := middleware.SessionFromCtx(ctx)
	if sess == nil || sess.AccessToken == "" {
		respondJSON(w, http.StatusUnauthorized, "Current user not connected.")
		return
	}

	if err := a.verifier.Revoke(ctx, sess.AccessToken); err != nil {
		slog.Warn("token revoke failed", "error", err)
	}

	if err := a.sessions.Destroy(ctx, w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// A fresh anonymous session carries the logout notice to the next page.
	if _, err := a.sessions.Create(ctx, w, &session.Data{Flash: []string{"You have been logged out."}}); err != nil {
		slog.Warn("session create after logout failed", "error", err)
	}

	http.Redirect(w, r, "/catalog", http.StatusSeeOther)
}

// failLogin clears any identity fields, persists the session, and answers
// with a 401 JSON message.
func (a *Auth) failLogin(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *session.Data, message string) {
	sess.ClearIdentity()
	if err := a.sessions.Update(ctx, r, sess); err != nil {
		slog.Error("session update failed", "error", err)
	}
	respondJSON(w, http.StatusUnauthorized, message)
}
