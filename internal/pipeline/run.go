package pipeline

import (
	"context"

	"github.com/yuyongju/music-emotion-classification/internal/classifier"
	"github.com/yuyongju/music-emotion-classification/internal/video"
)

// Steps selects which pipeline stages Run executes.
type Steps struct {
	FetchCatalog  bool
	AnalyzeVideos bool
	Train         bool
	Recommend     bool
}

// AllSteps selects every stage.
func AllSteps() Steps {
	return Steps{FetchCatalog: true, AnalyzeVideos: true, Train: true, Recommend: true}
}

// Any reports whether at least one stage is selected.
func (s Steps) Any() bool {
	return s.FetchCatalog || s.AnalyzeVideos || s.Train || s.Recommend
}

// RunOptions carries per-run overrides.
type RunOptions struct {
	PlaylistID string // overrides the configured playlists when set
	Bucket     string // overrides the configured bucket when set
}

// Result collects what each executed stage produced.
type Result struct {
	TracksFetched   int
	Analysis        *video.Analysis
	Report          *classifier.Report
	Recommendations []VideoResult
}

// Run executes the selected stages in order: fetch, analyze, train, recommend.
// The first failing stage stops the run.
func (s *Service) Run(ctx context.Context, steps Steps, opts RunOptions) (*Result, error) {
	res := &Result{}

	if steps.FetchCatalog {
		var ids []string
		if opts.PlaylistID != "" {
			ids = []string{opts.PlaylistID}
		}
		tracks, err := s.FetchCatalog(ctx, ids...)
		if err != nil {
			return res, err
		}
		res.TracksFetched = len(tracks)
	}

	if steps.AnalyzeVideos {
		analysis, err := s.AnalyzeVideos(ctx, opts.Bucket)
		if err != nil {
			return res, err
		}
		res.Analysis = &analysis
	}

	if steps.Train {
		_, report, err := s.Train(ctx)
		if err != nil {
			return res, err
		}
		res.Report = report
	}

	if steps.Recommend {
		recs, err := s.Recommend(ctx)
		if err != nil {
			return res, err
		}
		res.Recommendations = recs
	}

	return res, nil
}
