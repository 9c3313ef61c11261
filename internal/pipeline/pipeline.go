// Package pipeline wires the catalogue, video analysis, classifier and
// scorer into the end-to-end recommendation flow.
package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yuyongju/music-emotion-classification/internal/config"
	"github.com/yuyongju/music-emotion-classification/internal/logger"
	"github.com/yuyongju/music-emotion-classification/internal/metrics"
	"github.com/yuyongju/music-emotion-classification/internal/music"
	"github.com/yuyongju/music-emotion-classification/internal/recommend"
	"github.com/yuyongju/music-emotion-classification/internal/synth"
	"github.com/yuyongju/music-emotion-classification/internal/video"
	"github.com/yuyongju/music-emotion-classification/internal/videointel"
)

// Common errors.
var (
	// ErrNoSource is returned when fetching without a catalogue client.
	ErrNoSource = errors.New("no track source configured")

	// ErrNoCatalog is returned when a step needs tracks and none are available.
	ErrNoCatalog = errors.New("no catalogue tracks available")
)

// TrackSource fetches the tracks of one playlist.
type TrackSource interface {
	FetchPlaylistTracks(ctx context.Context, playlistID string) ([]music.Track, error)
}

// Store persists the catalogue and analyses. The load methods are used when
// the workbooks are missing.
type Store interface {
	SavePlaylist(ctx context.Context, playlistID string, tracks []music.Track) error
	LoadTracks(ctx context.Context) ([]music.Track, error)
	SaveAnalysis(ctx context.Context, bucket string, analysis video.Analysis) (uuid.UUID, error)
	LatestAnalysis(ctx context.Context, bucket string) (uuid.UUID, video.Analysis, error)
}

// Service runs pipeline steps.
type Service struct {
	cfg      *config.Config
	source   TrackSource
	analyzer videointel.Analyzer
	fallback videointel.Analyzer
	synth    synth.Synthesizer
	store    Store
	scorer   *recommend.Scorer
	metrics  *metrics.Manager
	log      logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTrackSource sets the catalogue client used by FetchCatalog.
func WithTrackSource(src TrackSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithAnalyzer sets the video analyzer used by AnalyzeVideos.
func WithAnalyzer(a videointel.Analyzer) Option {
	return func(s *Service) {
		s.analyzer = a
	}
}

// WithSynthesizer sets the feature source. Defaults to seeded random features.
func WithSynthesizer(syn synth.Synthesizer) Option {
	return func(s *Service) {
		if syn != nil {
			s.synth = syn
		}
	}
}

// WithStore enables persistence.
func WithStore(st Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithScorer overrides the recommendation scorer.
func WithScorer(sc *recommend.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a pipeline service.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		fallback: videointel.SampleAnalyzer{},
		synth:    synth.NewRandom(cfg.Features.Seed),
		scorer:   recommend.NewScorer(),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
