// Package identity implements the OAuth verification sequence against the
// identity provider: authorization-code exchange, token introspection,
// profile lookup, and token revocation. Endpoints are configurable so tests
// can point the verifier at a local fake provider.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default endpoints of the hosted provider.
const (
	defaultTokenURL     = "https://oauth2.googleapis.com/token"
	defaultTokenInfoURL = "https://www.googleapis.com/oauth2/v1/tokeninfo"
	defaultUserInfoURL  = "https://www.googleapis.com/oauth2/v1/userinfo"
	defaultRevokeURL    = "https://accounts.google.com/o/oauth2/revoke"
)

// Credentials is the result of a successful code exchange: the access token
// and the subject claimed by the accompanying ID token. The claimed subject
// is NOT trusted until it matches the introspection result.
type Credentials struct {
	AccessToken string
	SubjectID   string
}

// TokenInfo is the provider's introspection response for an access token.
type TokenInfo struct {
	UserID   string `json:"user_id"`   // subject the token was issued for
	IssuedTo string `json:"issued_to"` // client id the token was issued to
	Error    string `json:"error"`
}

// Profile holds the provider-side user record used for display and ownership.
type Profile struct {
	ID   string `json:"id"` // opaque provider user id ("authid")
	Name string `json:"name"`
}

// Config holds the verifier's credentials and endpoint overrides. Zero-value
// endpoint fields fall back to the hosted provider.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	TokenInfoURL string
	UserInfoURL  string
	RevokeURL    string
}

// Verifier talks to the identity provider over HTTP.
type Verifier struct {
	cfg    Config
	client *http.Client
}

// New creates a Verifier, filling in default provider endpoints.
func New(cfg Config) *Verifier {
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.TokenInfoURL == "" {
		cfg.TokenInfoURL = defaultTokenInfoURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultUserInfoURL
	}
	if cfg.RevokeURL == "" {
		cfg.RevokeURL = defaultRevokeURL
	}
	return &Verifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// ClientID returns the application's registered client identifier. The login
// flow compares it against the introspected token's audience.
func (v *Verifier) ClientID() string { return v.cfg.ClientID }

// Exchange trades a one-time authorization code for credentials. The subject
// is read from the ID token without signature verification; the caller must
// cross-check it against Introspect before trusting it.
func (v *Verifier) Exchange(ctx context.Context, code string) (*Credentials, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {v.cfg.ClientID},
		"client_secret": {v.cfg.ClientSecret},
		"redirect_uri":  {"postmessage"},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := v.do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange: %w", err)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		IDToken     string `json:"id_token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("exchange unmarshal: %w", err)
	}
	if result.AccessToken == "" || result.IDToken == "" {
		return nil, fmt.Errorf("exchange: provider returned no credentials")
	}

	subject, err := idTokenSubject(result.IDToken)
	if err != nil {
		return nil, fmt.Errorf("exchange: %w", err)
	}

	return &Credentials{
		AccessToken: result.AccessToken,
		SubjectID:   subject,
	}, nil
}

// Introspect asks the provider who an access token belongs to and which
// client it was issued for. A provider-side error payload is returned as an
// error; callers treat any failure as a verification failure.
func (v *Verifier) Introspect(ctx context.Context, accessToken string) (*TokenInfo, error) {
	u := v.cfg.TokenInfoURL + "?access_token=" + url.QueryEscape(accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("introspect request: %w", err)
	}

	body, err := v.do(req)
	if err != nil {
		return nil, fmt.Errorf("introspect: %w", err)
	}

	var info TokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("introspect unmarshal: %w", err)
	}
	if info.Error != "" {
		return nil, fmt.Errorf("introspect: provider error: %s", info.Error)
	}

	return &info, nil
}

// UserInfo fetches the display profile for the bearer of an access token.
func (v *Verifier) UserInfo(ctx context.Context, accessToken string) (*Profile, error) {
	u := v.cfg.UserInfoURL + "?alt=json&access_token=" + url.QueryEscape(accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}

	body, err := v.do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("userinfo unmarshal: %w", err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("userinfo: provider returned no user id")
	}

	return &profile, nil
}

// Revoke invalidates an access token with the provider. A non-200 response
// is an error; the caller clears the session either way.
func (v *Verifier) Revoke(ctx context.Context, accessToken string) error {
	u := v.cfg.RevokeURL + "?token=" + url.QueryEscape(accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("revoke request: %w", err)
	}

	if _, err := v.do(req); err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	return nil
}

// do executes a request and returns the body, treating any non-200 status
// as an error. There are no retries: the login request fails immediately
// when the provider is unreachable.
func (v *Verifier) do(req *http.Request) ([]byte, error) {
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// idTokenSubject extracts the "sub" claim from an ID token. The signature is
// deliberately not verified here: the subject is only used as a claim to be
// confirmed by the introspection endpoint.
func idTokenSubject(idToken string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return "", fmt.Errorf("parse id token: %w", err)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("id token has no subject")
	}
	return subject, nil
}
