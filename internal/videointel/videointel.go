// Package videointel annotates videos stored in Cloud Storage with the
// Google Video Intelligence API.
package videointel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yuyongju/music-emotion-classification/internal/logger"
	"github.com/yuyongju/music-emotion-classification/internal/video"
)

// Sentinel errors.
var (
	// ErrNoVideos is returned when a bucket holds no video objects.
	ErrNoVideos = errors.New("no videos found")

	// ErrAllFailed is returned when every video in a bucket failed to annotate.
	ErrAllFailed = errors.New("every video failed to annotate")
)

// Analyzer produces annotations for the videos in a bucket.
type Analyzer interface {
	Analyze(ctx context.Context, bucket string) (video.Analysis, error)
}

// ObjectLister lists object names in a bucket.
type ObjectLister interface {
	ListObjects(ctx context.Context, bucket string) ([]string, error)
}

// Annotator runs label, shot-change and explicit-content detection on one
// video and returns the converted annotations.
type Annotator interface {
	Annotate(ctx context.Context, bucket, object string) (video.Analysis, error)
}

const defaultVideoTimeout = 10 * time.Minute

// BucketAnalyzer annotates every .mp4 object in a bucket. A failing video is
// logged and skipped.
type BucketAnalyzer struct {
	lister    ObjectLister
	annotator Annotator
	timeout   time.Duration
	log       logger.Logger
}

// Option configures a BucketAnalyzer.
type Option func(*BucketAnalyzer)

// WithVideoTimeout bounds the time spent on a single video.
func WithVideoTimeout(d time.Duration) Option {
	return func(a *BucketAnalyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *BucketAnalyzer) {
		if l != nil {
			a.log = l
		}
	}
}

// NewBucketAnalyzer creates an analyzer from its two collaborators.
func NewBucketAnalyzer(lister ObjectLister, annotator Annotator, opts ...Option) *BucketAnalyzer {
	a := &BucketAnalyzer{
		lister:    lister,
		annotator: annotator,
		timeout:   defaultVideoTimeout,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze implements Analyzer.
func (a *BucketAnalyzer) Analyze(ctx context.Context, bucket string) (video.Analysis, error) {
	names, err := a.lister.ListObjects(ctx, bucket)
	if err != nil {
		return video.Analysis{}, fmt.Errorf("listing bucket %s: %w", bucket, err)
	}

	videos := filterVideos(names)
	if len(videos) == 0 {
		return video.Analysis{}, fmt.Errorf("%w in bucket %s", ErrNoVideos, bucket)
	}

	var result video.Analysis
	failed := 0
	for _, name := range videos {
		a.log.Info(ctx, "annotating video", logger.String("video", name))

		vctx, cancel := context.WithTimeout(ctx, a.timeout)
		analysis, err := a.annotator.Annotate(vctx, bucket, name)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return video.Analysis{}, ctx.Err()
			}
			failed++
			a.log.Error(ctx, "video annotation failed", logger.String("video", name), logger.Error(err))
			continue
		}

		a.log.Info(ctx, "video annotated",
			logger.String("video", name),
			logger.Int("labels", len(analysis.Labels)),
			logger.Int("explicit_frames", len(analysis.Explicit)),
			logger.Int("shots", len(analysis.Shots)),
		)
		result.Append(analysis)
	}

	if failed == len(videos) {
		return video.Analysis{}, fmt.Errorf("%w: %d videos in %s", ErrAllFailed, failed, bucket)
	}
	return result, nil
}

func filterVideos(names []string) []string {
	var out []string
	for _, n := range names {
		if strings.HasSuffix(strings.ToLower(n), ".mp4") {
			out = append(out, n)
		}
	}
	return out
}

// SampleAnalyzer returns fixed demonstration annotations for any bucket.
type SampleAnalyzer struct{}

// Analyze implements Analyzer.
func (SampleAnalyzer) Analyze(ctx context.Context, _ string) (video.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return video.Analysis{}, err
	}
	return video.Analysis{Labels: video.SampleAnnotations()}, nil
}
