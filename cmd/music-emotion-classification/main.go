// Command music-emotion-classification recommends music for videos by
// matching classifier-predicted track moods against video content.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/yuyongju/music-emotion-classification/internal/auth"
	"github.com/yuyongju/music-emotion-classification/internal/clustering"
	"github.com/yuyongju/music-emotion-classification/internal/config"
	"github.com/yuyongju/music-emotion-classification/internal/db"
	"github.com/yuyongju/music-emotion-classification/internal/logger"
	"github.com/yuyongju/music-emotion-classification/internal/metrics"
	"github.com/yuyongju/music-emotion-classification/internal/pipeline"
	"github.com/yuyongju/music-emotion-classification/internal/spotify"
	"github.com/yuyongju/music-emotion-classification/internal/synth"
	"github.com/yuyongju/music-emotion-classification/internal/videointel"
	"github.com/yuyongju/music-emotion-classification/internal/web"
)

type flags struct {
	steps      pipeline.Steps
	full       bool
	serve      bool
	playlistID string
	bucket     string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, out io.Writer) (*flags, *flag.FlagSet, error) {
	f := &flags{}
	fs := flag.NewFlagSet("music-emotion-classification", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.BoolVar(&f.steps.FetchCatalog, "fetch-spotify", false, "fetch track metadata from the configured playlists")
	fs.StringVar(&f.playlistID, "playlist-id", "", "fetch this playlist instead of the configured ones")
	fs.BoolVar(&f.steps.AnalyzeVideos, "analyze-video", false, "analyze the videos in the bucket")
	fs.StringVar(&f.bucket, "bucket-name", "", "cloud storage bucket holding the videos")
	fs.BoolVar(&f.steps.Train, "train-model", false, "train the mood classifier")
	fs.BoolVar(&f.steps.Recommend, "recommend", false, "recommend music for the analyzed videos")
	fs.BoolVar(&f.full, "full-pipeline", false, "run every step")
	fs.BoolVar(&f.serve, "serve", false, "serve the HTTP API")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if f.full {
		f.steps = pipeline.AllSteps()
	}
	return f, fs, nil
}

func run(args []string) error {
	f, fs, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	if !f.steps.Any() && !f.serve {
		fs.Usage()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	if f.bucket != "" {
		cfg.Google.Bucket = f.bucket
	}
	log := logger.Named("main")

	m := metrics.NewManager()
	opts := []pipeline.Option{
		pipeline.WithLogger(logger.Named("pipeline")),
		pipeline.WithMetrics(m),
	}

	var remote synth.Synthesizer
	if f.steps.FetchCatalog || cfg.Features.Source == config.FeatureSourceSpotify {
		client, err := newSpotifyClient(ctx, cfg)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithTrackSource(client))
		remote = client
	}

	features, err := synth.New(cfg.Features.Source, cfg.Features.Seed, remote)
	if err != nil {
		return err
	}
	opts = append(opts, pipeline.WithSynthesizer(features))

	if f.steps.AnalyzeVideos {
		clients, err := videointel.NewClients(ctx, cfg.Google.CredentialsFile)
		if err != nil {
			log.Warn(ctx, "video intelligence unavailable, sample data will be used", logger.Error(err))
		} else {
			defer clients.Close()
			opts = append(opts, pipeline.WithAnalyzer(clients.Analyzer(
				videointel.WithVideoTimeout(cfg.Google.VideoTimeout),
				videointel.WithLogger(logger.Named("videointel")),
			)))
		}
	}

	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL,
			db.WithMigrate(),
			db.WithMaxConns(cfg.DatabaseMaxConns),
			db.WithLogger(logger.Named("db")),
		)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		opts = append(opts, pipeline.WithStore(database))
	}

	svc := pipeline.New(cfg, opts...)

	if f.steps.Any() {
		res, err := svc.Run(ctx, f.steps, pipeline.RunOptions{PlaylistID: f.playlistID, Bucket: f.bucket})
		if err != nil {
			return err
		}
		printResult(os.Stdout, cfg, res)
	}

	if !f.serve {
		return nil
	}

	model, err := svc.LoadOrTrain(ctx)
	if err != nil {
		log.Warn(ctx, "serving without a classifier", logger.Error(err))
	}
	server := web.NewServer(
		web.ServerConfig{Addr: cfg.Addr, TopLabels: cfg.Recommend.TopLabels},
		svc,
		model,
		web.WithMetrics(m),
		web.WithLogger(logger.Named("web")),
	)
	return server.Run(ctx)
}

func newSpotifyClient(ctx context.Context, cfg *config.Config) (*spotify.Client, error) {
	cache, err := tokenCache(cfg)
	if err != nil {
		return nil, err
	}
	opts := []auth.Option{
		auth.WithTokenCache(cache),
		auth.WithLogger(logger.Named("auth")),
	}

	authenticator, err := auth.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, opts...)
	if err != nil {
		return nil, err
	}
	api, err := authenticator.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating with Spotify: %w", err)
	}
	return spotify.New(api, spotify.WithLogger(logger.Named("spotify"))), nil
}

func printResult(w io.Writer, cfg *config.Config, res *pipeline.Result) {
	if res.TracksFetched > 0 {
		fmt.Fprintf(w, "Spotify data exported to %s (%d tracks)\n", cfg.Files.SpotifyData, res.TracksFetched)
	}
	if res.Analysis != nil {
		fmt.Fprintf(w, "Video analysis saved to %s (%d annotations)\n", cfg.Files.VideoData, res.Analysis.Len())
	}
	if res.Report != nil {
		fmt.Fprintf(w, "Emotion classifier trained: validation accuracy %.2f, saved to %s\n",
			res.Report.ValidationAccuracy, cfg.Model.Dir)
	}

	for _, vr := range res.Recommendations {
		fmt.Fprintf(w, "\nVideo: %s\n", vr.VideoID)
		fmt.Fprintf(w, "Top video labels: %s\n", strings.Join(vr.Summary.TopLabels, ", "))
		fmt.Fprintf(w, "Top video categories: %s\n", strings.Join(vr.Summary.TopCategories, ", "))
		fmt.Fprintf(w, "Target emotions based on video content: %s\n", vr.Targets)
		fmt.Fprintln(w, "Top recommended tracks for your video:")
		for i, r := range vr.Recommendations {
			fmt.Fprintf(w, "%d. %s by %s - %s (Score: %.1f)\n", i+1, r.Track.Name, r.Track.Artist, r.Mood, r.Score)
		}
		if vr.Groups != nil || vr.Outliers > 0 {
			fmt.Fprint(w, "\n"+clustering.FormatGroupSummary(vr.Groups, vr.Outliers))
		}
	}
	if len(res.Recommendations) > 0 {
		fmt.Fprintf(w, "\nRecommendations saved to %s\n", cfg.Files.Recommendations)
	}
}

// tokenCache uses the configured path, or the user config dir when unset.
func tokenCache(cfg *config.Config) (*auth.TokenCache, error) {
	if cfg.Spotify.TokenCache != "" {
		return auth.NewTokenCache(cfg.Spotify.TokenCache), nil
	}
	cache, err := auth.DefaultTokenCache()
	if err != nil {
		return nil, fmt.Errorf("locating token cache: %w", err)
	}
	return cache, nil
}
