// Package spotify wraps the real Spotify Web API client (zmb3/spotify) and
// its OAuth2 authorization flow behind the small interface the rest of the
// bridge needs: current playback, transport controls, and resource lookups.
package spotify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// refreshTokenFile is the name of the file persisting the long-lived
// refresh token across restarts, written under the configured cache root.
const refreshTokenFile = ".refresh_token"

// scopes mirrors the permission set the upstream bridge requests: enough to
// read and control playback, and to read library/context metadata.
var scopes = []string{
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopeUserReadCurrentlyPlaying,
	spotifyauth.ScopeUserReadPlaybackPosition,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
}

// AuthNeededError is returned when a call requires authorization the bridge
// does not currently have. URL is where the user should be sent to grant it.
type AuthNeededError struct {
	URL string
}

func (e *AuthNeededError) Error() string {
	return fmt.Sprintf("spotify authorization required: %s", e.URL)
}

// Authenticator manages the OAuth2 Authorization Code flow and the
// resulting refresh token's persistence to disk.
type Authenticator struct {
	auth         *spotifyauth.Authenticator
	cachePath    string
	clientID     string
	clientSecret string

	mu    sync.Mutex
	state string
}

// NewAuthenticator builds an authenticator that redirects through
// redirectURL and persists its refresh token under cachePath.
func NewAuthenticator(clientID, clientSecret, redirectURL, cachePath string) *Authenticator {
	return &Authenticator{
		auth: spotifyauth.New(
			spotifyauth.WithClientID(clientID),
			spotifyauth.WithClientSecret(clientSecret),
			spotifyauth.WithRedirectURL(redirectURL),
			spotifyauth.WithScopes(scopes...),
		),
		cachePath:    cachePath,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

func (a *Authenticator) tokenPath() string {
	return filepath.Join(a.cachePath, refreshTokenFile)
}

// HasToken reports whether a refresh token is already persisted.
func (a *Authenticator) HasToken() bool {
	_, err := os.Stat(a.tokenPath())
	return err == nil
}

// AuthURL builds the authorization URL the user must visit, remembering the
// CSRF state value so Callback can validate it.
func (a *Authenticator) AuthURL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	state := newState()
	a.state = state
	return a.auth.AuthURL(state)
}

func newState() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// Callback completes the OAuth2 flow for an incoming redirect request,
// exchanging the authorization code for tokens and persisting the refresh
// token to disk.
func (a *Authenticator) Callback(ctx context.Context, state, code string) error {
	a.mu.Lock()
	expected := a.state
	a.mu.Unlock()
	if state != expected {
		return fmt.Errorf("oauth state mismatch")
	}

	token, err := a.auth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("token response carried no refresh token")
	}
	if err := os.MkdirAll(a.cachePath, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(a.tokenPath(), []byte(token.RefreshToken), 0o600); err != nil {
		return fmt.Errorf("persisting refresh token: %w", err)
	}
	return nil
}

// Client builds an authenticated zmb3/spotify client using the persisted
// refresh token, or returns AuthNeededError if none exists yet.
func (a *Authenticator) Client(ctx context.Context, authURL string) (*spotify.Client, error) {
	refreshToken, err := os.ReadFile(a.tokenPath())
	if err != nil {
		return nil, &AuthNeededError{URL: authURL}
	}

	token := &oauth2.Token{RefreshToken: string(refreshToken)}
	httpClient := a.auth.Client(ctx, token)
	return spotify.New(httpClient), nil
}
