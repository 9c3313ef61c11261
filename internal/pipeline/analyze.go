package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/yuyongju/music-emotion-classification/internal/export"
	"github.com/yuyongju/music-emotion-classification/internal/logger"
	"github.com/yuyongju/music-emotion-classification/internal/metrics"
	"github.com/yuyongju/music-emotion-classification/internal/video"
)

// AnalyzeVideos annotates every video in bucket. When the analyzer is missing
// or fails, the sample annotation set is used instead. The result is written
// to the video workbook and persisted when a store is set.
func (s *Service) AnalyzeVideos(ctx context.Context, bucket string) (analysis video.Analysis, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveStage(metrics.StageAnalyze, started, err) }()

	if bucket == "" {
		bucket = s.cfg.Google.Bucket
	}

	analysis, err = s.analyze(ctx, bucket)
	if err != nil {
		return video.Analysis{}, err
	}

	ids, _ := video.GroupByVideo(analysis.All())
	s.metrics.AddVideos(len(ids), 0)

	if err := export.WriteAnalysis(s.cfg.Files.VideoData, analysis); err != nil {
		return video.Analysis{}, err
	}

	if s.store != nil {
		id, err := s.store.SaveAnalysis(ctx, bucket, analysis)
		if err != nil {
			return video.Analysis{}, fmt.Errorf("saving analysis: %w", err)
		}
		s.log.Debug(ctx, "analysis stored", logger.String("id", id.String()))
	}

	s.log.Info(ctx, "videos analyzed",
		logger.String("bucket", bucket),
		logger.Int("videos", len(ids)),
		logger.Int("annotations", analysis.Len()),
		logger.String("file", s.cfg.Files.VideoData),
	)
	return analysis, nil
}

func (s *Service) analyze(ctx context.Context, bucket string) (video.Analysis, error) {
	if s.analyzer != nil {
		analysis, err := s.analyzer.Analyze(ctx, bucket)
		if err == nil {
			return analysis, nil
		}
		if ctx.Err() != nil {
			return video.Analysis{}, ctx.Err()
		}
		s.log.Warn(ctx, "video analysis failed, using sample data",
			logger.String("bucket", bucket),
			logger.Error(err),
		)
	} else {
		s.log.Warn(ctx, "no video analyzer configured, using sample data")
	}
	return s.fallback.Analyze(ctx, bucket)
}
