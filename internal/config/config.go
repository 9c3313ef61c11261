// Package config defines the pipeline configuration and how it is loaded.
package config

import (
	"fmt"
	"time"
)

// Feature sources.
const (
	FeatureSourceRandom  = "random"
	FeatureSourceSpotify = "spotify"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the HTTP listen address used by -serve.
	Addr string `koanf:"addr"`

	// DatabaseURL enables PostgreSQL persistence when set.
	DatabaseURL string `koanf:"database_url"`

	// DatabaseMaxConns caps the connection pool; zero keeps the driver default.
	DatabaseMaxConns int32 `koanf:"database_max_conns"`

	Spotify   SpotifyConfig   `koanf:"spotify"`
	Google    GoogleConfig    `koanf:"google"`
	Features  FeaturesConfig  `koanf:"features"`
	Model     ModelConfig     `koanf:"model"`
	Recommend RecommendConfig `koanf:"recommend"`
	Files     FilesConfig     `koanf:"files"`
	Clusters  ClustersConfig  `koanf:"clusters"`
}

// SpotifyConfig holds catalogue API settings.
type SpotifyConfig struct {
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	PlaylistIDs  []string `koanf:"playlist_ids"`
	// TokenCache is the token file path; empty uses the user config dir.
	TokenCache string `koanf:"token_cache"`
}

// GoogleConfig holds video analysis settings.
type GoogleConfig struct {
	CredentialsFile string        `koanf:"credentials_file"`
	Bucket          string        `koanf:"bucket"`
	VideoTimeout    time.Duration `koanf:"video_timeout"`
}

// FeaturesConfig selects where track features come from.
type FeaturesConfig struct {
	Source string `koanf:"source"`
	Seed   int64  `koanf:"seed"`
}

// ModelConfig controls classifier training and persistence.
type ModelConfig struct {
	Dir             string  `koanf:"dir"`
	Epochs          int     `koanf:"epochs"`
	BatchSize       int     `koanf:"batch_size"`
	LearningRate    float64 `koanf:"learning_rate"`
	ValidationSplit float64 `koanf:"validation_split"`
	Seed            int64   `koanf:"seed"`
}

// RecommendConfig controls summarisation and ranking.
type RecommendConfig struct {
	TopLabels    int  `koanf:"top_labels"`
	TopK         int  `koanf:"top_k"`
	PerVideo     bool `koanf:"per_video"`
	MatchingOnly bool `koanf:"matching_only"` // drop tracks whose mood misses every target
}

// FilesConfig names the spreadsheet artifacts.
type FilesConfig struct {
	SpotifyData     string `koanf:"spotify_data"`
	VideoData       string `koanf:"video_data"`
	Recommendations string `koanf:"recommendations"`
}

// ClustersConfig controls optional mood grouping of recommendations.
type ClustersConfig struct {
	Enabled bool `koanf:"enabled"`
	Count   int  `koanf:"count"`
	MinSize int  `koanf:"min_size"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel: "info",
		Addr:     ":8080",
		Spotify: SpotifyConfig{
			PlaylistIDs: []string{"65LdqYCLcsV0lJoxpeQ6fW"},
		},
		Google: GoogleConfig{
			Bucket:       "anime_food_landscape_object_bucket",
			VideoTimeout: 10 * time.Minute,
		},
		Features: FeaturesConfig{
			Source: FeatureSourceRandom,
			Seed:   42,
		},
		Model: ModelConfig{
			Dir:             "models",
			Epochs:          30,
			BatchSize:       32,
			LearningRate:    0.001,
			ValidationSplit: 0.2,
			Seed:            42,
		},
		Recommend: RecommendConfig{
			TopLabels: 5,
			TopK:      10,
		},
		Files: FilesConfig{
			SpotifyData:     "data/spotify_metadata.xlsx",
			VideoData:       "data/video_analysis.xlsx",
			Recommendations: "data/recommendations.xlsx",
		},
		Clusters: ClustersConfig{
			Count:   4,
			MinSize: 2,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Features.Source != FeatureSourceRandom && c.Features.Source != FeatureSourceSpotify:
		return fmt.Errorf("%w: unknown feature source %q", ErrInvalidConfig, c.Features.Source)
	case c.Model.Epochs <= 0:
		return fmt.Errorf("%w: model.epochs must be positive", ErrInvalidConfig)
	case c.Model.BatchSize <= 0:
		return fmt.Errorf("%w: model.batch_size must be positive", ErrInvalidConfig)
	case c.Model.LearningRate <= 0:
		return fmt.Errorf("%w: model.learning_rate must be positive", ErrInvalidConfig)
	case c.Model.ValidationSplit < 0 || c.Model.ValidationSplit >= 1:
		return fmt.Errorf("%w: model.validation_split must be in [0,1)", ErrInvalidConfig)
	case c.Model.Dir == "":
		return fmt.Errorf("%w: model.dir must not be empty", ErrInvalidConfig)
	case c.Recommend.TopLabels <= 0:
		return fmt.Errorf("%w: recommend.top_labels must be positive", ErrInvalidConfig)
	case c.Recommend.TopK <= 0:
		return fmt.Errorf("%w: recommend.top_k must be positive", ErrInvalidConfig)
	case c.Clusters.Enabled && c.Clusters.Count <= 0:
		return fmt.Errorf("%w: clusters.count must be positive", ErrInvalidConfig)
	}
	return nil
}
