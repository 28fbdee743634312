// Package session provides Valkey-backed HTTP session management.
// Sessions are identified by a secure cookie and stored as JSON in Valkey
// with automatic TTL expiry. A session exists for anonymous visitors too:
// it carries the login nonce and flash notices before any identity is set.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "catalog_session"

	// DefaultTTL is how long a session lives in Valkey before automatic expiry.
	DefaultTTL = 24 * time.Hour

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// Data holds the session payload stored in Valkey: the login nonce, the
// authenticated user's identity as verified by the OAuth provider, and any
// pending flash notices.
type Data struct {
	State       string    `json:"state"`        // one-time login nonce
	AccessToken string    `json:"access_token"` // provider access token, empty when anonymous
	SubjectID   string    `json:"subject_id"`   // verified token subject
	DisplayName string    `json:"display_name"`
	AuthID      string    `json:"auth_id"` // provider user id; the ownership key
	Flash       []string  `json:"flash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Authenticated reports whether the session holds a verified identity.
func (d *Data) Authenticated() bool {
	return d != nil && d.DisplayName != ""
}

// ClearIdentity removes all identity fields but keeps the session itself
// (and with it the nonce and flash notices).
func (d *Data) ClearIdentity() {
	d.AccessToken = ""
	d.SubjectID = ""
	d.DisplayName = ""
	d.AuthID = ""
}

// Store manages session lifecycle in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a session store backed by the given Valkey client.
// When secure is true, session cookies are marked HTTPS-only.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
		secure: secure,
	}
}

// Create generates a new session, stores it in Valkey, and sets the
// session cookie on the response. Returns the session ID.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.CreatedAt = time.Now()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})

	return id, nil
}

// Get retrieves session data from Valkey using the session ID from the
// request cookie. Returns nil if no valid session exists.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil // No cookie = no session (not an error)
	}

	payload, err := s.client.Get(ctx, keyPrefix+cookie.Value).Bytes()
	if err == redis.Nil {
		return nil, nil // Session expired or doesn't exist
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}

	return &data, nil
}

// Ensure returns the current session, creating an empty one (and setting
// the cookie) if the request has none. Used by pages that need somewhere
// to keep the login nonce or a flash notice for anonymous visitors.
func (s *Store) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Data, error) {
	data, err := s.Get(ctx, r)
	if err != nil {
		return nil, err
	}
	if data != nil {
		return data, nil
	}

	data = &Data{}
	id, err := s.Create(ctx, w, data)
	if err != nil {
		return nil, err
	}

	// Make the fresh session visible to Update calls later in this request.
	r.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	return data, nil
}

// Update replaces the session data in Valkey without changing the session
// ID or cookie. Resets the TTL.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return fmt.Errorf("session update: no cookie")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+cookie.Value, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session update: %w", err)
	}

	return nil
}

// AddFlash appends a one-time notice to the session, creating the session
// first if the visitor has none. Notices are popped on the next page render.
func (s *Store) AddFlash(ctx context.Context, w http.ResponseWriter, r *http.Request, message string) error {
	data, err := s.Ensure(ctx, w, r)
	if err != nil {
		return err
	}
	data.Flash = append(data.Flash, message)
	return s.Update(ctx, r, data)
}

// PopFlashes returns the pending notices and clears them from the session.
func (s *Store) PopFlashes(ctx context.Context, r *http.Request, data *Data) []string {
	if data == nil || len(data.Flash) == 0 {
		return nil
	}
	flashes := data.Flash
	data.Flash = nil
	if err := s.Update(ctx, r, data); err != nil {
		// The notice will show again next time; not worth failing the page.
		return flashes
	}
	return flashes
}

// Destroy removes the session from Valkey and clears the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil // No cookie, nothing to destroy
	}

	s.client.Del(ctx, keyPrefix+cookie.Value)

	// Expire the cookie immediately.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	return nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
