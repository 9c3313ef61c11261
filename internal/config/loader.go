package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment names.
const (
	EnvConfigFile = "MEC_CONFIG"
	envPrefix     = "MEC_"
)

// legacyEnv maps the variable names used by earlier scripts to config keys.
var legacyEnv = map[string]string{
	"SPOTIFY_CLIENT_ID":              "spotify.client_id",
	"SPOTIFY_CLIENT_SECRET":          "spotify.client_secret",
	"PLAYLIST_IDS":                   "spotify.playlist_ids",
	"GOOGLE_APPLICATION_CREDENTIALS": "google.credentials_file",
	"BUCKET_NAME":                    "google.bucket",
	"DATABASE_URL":                   "database_url",
}

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New)
//  2. YAML file named by MEC_CONFIG, if set
//  3. legacy variables (SPOTIFY_CLIENT_ID, BUCKET_NAME, ...)
//  4. MEC_ variables, with "__" between nested keys (MEC_MODEL__EPOCHS)
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrLoadConfig, path, err)
		}
	}

	legacy := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		path, ok := legacyEnv[key]
		if !ok {
			return "", nil
		}
		if path == "spotify.playlist_ids" {
			return path, splitList(value)
		}
		return path, value
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	prefixed := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if key == "config" {
			return "", nil
		}
		key = strings.ReplaceAll(key, "__", ".")
		if key == "spotify.playlist_ids" {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
