package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yuyongju/music-emotion-classification/internal/classifier"
	"github.com/yuyongju/music-emotion-classification/internal/clustering"
	"github.com/yuyongju/music-emotion-classification/internal/config"
	"github.com/yuyongju/music-emotion-classification/internal/music"
	"github.com/yuyongju/music-emotion-classification/internal/pipeline"
	"github.com/yuyongju/music-emotion-classification/internal/recommend"
	"github.com/yuyongju/music-emotion-classification/internal/video"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantSteps pipeline.Steps
		wantServe bool
		wantErr   bool
	}{
		{"none", nil, pipeline.Steps{}, false, false},
		{"fetch with playlist", []string{"-fetch-spotify", "-playlist-id", "abc"}, pipeline.Steps{FetchCatalog: true}, false, false},
		{"train and recommend", []string{"-train-model", "-recommend"}, pipeline.Steps{Train: true, Recommend: true}, false, false},
		{"full pipeline", []string{"-full-pipeline"}, pipeline.AllSteps(), false, false},
		{"double dash", []string{"--analyze-video", "--bucket-name", "clips"}, pipeline.Steps{AnalyzeVideos: true}, false, false},
		{"serve", []string{"-serve"}, pipeline.Steps{}, true, false},
		{"unknown", []string{"-nope"}, pipeline.Steps{}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, err := parseFlags(tt.args, io.Discard)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if f.steps != tt.wantSteps || f.serve != tt.wantServe {
				t.Errorf("parseFlags() = %+v", f)
			}
		})
	}

	f, _, _ := parseFlags([]string{"-fetch-spotify", "-playlist-id", "abc", "-bucket-name", "clips"}, io.Discard)
	if f.playlistID != "abc" || f.bucket != "clips" {
		t.Errorf("playlistID = %q, bucket = %q", f.playlistID, f.bucket)
	}
}

func TestRunWithoutFlagsPrintsUsage(t *testing.T) {
	if err := run(nil); err != nil {
		t.Errorf("run(nil) error = %v", err)
	}
}

func TestPrintResult(t *testing.T) {
	cfg := config.New()
	track := music.Track{ID: "t1", Name: "Song", Artist: "Band"}
	res := &pipeline.Result{
		TracksFetched: 3,
		Analysis:      &video.Analysis{Labels: make([]video.Annotation, 4)},
		Report:        &classifier.Report{ValidationAccuracy: 0.75},
		Recommendations: []pipeline.VideoResult{{
			VideoID:         pipeline.AllVideos,
			Summary:         video.Summary{TopLabels: []string{"anime", "song"}, TopCategories: []string{"art"}},
			Targets:         music.NewMoodSet(music.Happy, music.Energetic),
			Recommendations: []recommend.Recommendation{{Track: track, Mood: music.Happy, Score: 142.5}},
			Groups:          []clustering.Group{{Name: "Upbeat Party", Tracks: []music.Track{track}}},
		}},
	}

	var buf bytes.Buffer
	printResult(&buf, cfg, res)
	out := buf.String()

	for _, want := range []string{
		"(3 tracks)",
		"(4 annotations)",
		"validation accuracy 0.75",
		"Top video labels: anime, song",
		"1. Song by Band - happy (Score: 142.5)",
		"Group 1: Upbeat Party (1 track)",
		cfg.Files.Recommendations,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTokenCache(t *testing.T) {
	cfg := config.New()
	cfg.Spotify.TokenCache = filepath.Join(t.TempDir(), "token.json")
	cache, err := tokenCache(cfg)
	if err != nil {
		t.Fatalf("tokenCache() error = %v", err)
	}
	if cache.Path() != cfg.Spotify.TokenCache {
		t.Errorf("Path() = %q, want %q", cache.Path(), cfg.Spotify.TokenCache)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg.Spotify.TokenCache = ""
	cache, err = tokenCache(cfg)
	if err != nil {
		t.Fatalf("tokenCache() default error = %v", err)
	}
	if filepath.Base(cache.Path()) != "spotify_token.json" {
		t.Errorf("default Path() = %q", cache.Path())
	}
}
