// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"github.com/zmb3/spotify/v2"

	"github.com/yuyongju/music-emotion-classification/internal/logger"
)

// DefaultPlaylistID is fetched when no playlist is configured.
const DefaultPlaylistID = "65LdqYCLcsV0lJoxpeQ6fW"

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client
	log logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for fetch progress.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client, opts ...Option) *Client {
	c := &Client{api: api, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
