// Package auth obtains Spotify API access with the OAuth2 client-credentials
// flow and caches the token on disk.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/yuyongju/music-emotion-classification/internal/logger"
)

// ErrMissingCredentials is returned when the client id or secret is empty.
var ErrMissingCredentials = errors.New("missing Spotify client id or secret")

// Authenticator handles Spotify client-credentials authentication.
type Authenticator struct {
	cfg   clientcredentials.Config
	cache *TokenCache
	log   logger.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithTokenCache sets where tokens are cached. A nil cache disables caching.
func WithTokenCache(c *TokenCache) Option {
	return func(a *Authenticator) {
		a.cache = c
	}
}

// WithTokenURL overrides the Spotify token endpoint.
func WithTokenURL(url string) Option {
	return func(a *Authenticator) {
		if url != "" {
			a.cfg.TokenURL = url
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.log = l
		}
	}
}

// New creates an Authenticator for the given application credentials.
// Returns ErrMissingCredentials if either is empty.
func New(clientID, clientSecret string, opts ...Option) (*Authenticator, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	a := &Authenticator{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyauth.TokenURL,
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Token returns a valid access token, from the cache when possible.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	if a.cache != nil {
		token, err := a.cache.Load()
		if err != nil {
			a.log.Warn(ctx, "ignoring unreadable token cache", logger.Error(err))
		} else if token.Valid() {
			return token, nil
		}
	}

	token, err := a.cfg.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("requesting client-credentials token: %w", err)
	}

	if a.cache != nil {
		if err := a.cache.Save(token); err != nil {
			a.log.Warn(ctx, "failed to cache token", logger.Error(err))
		}
	}
	return token, nil
}

// Authenticate returns a Spotify client that renews its token when it expires.
func (a *Authenticator) Authenticate(ctx context.Context) (*spotify.Client, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	src := oauth2.ReuseTokenSource(token, a.cfg.TokenSource(ctx))
	return spotify.New(oauth2.NewClient(ctx, src), spotify.WithRetry(true)), nil
}

// Logout removes the cached token.
func (a *Authenticator) Logout() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Delete()
}
