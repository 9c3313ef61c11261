package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuyongju/music-emotion-classification/internal/classifier"
	"github.com/yuyongju/music-emotion-classification/internal/clustering"
	"github.com/yuyongju/music-emotion-classification/internal/db"
	"github.com/yuyongju/music-emotion-classification/internal/export"
	"github.com/yuyongju/music-emotion-classification/internal/logger"
	"github.com/yuyongju/music-emotion-classification/internal/metrics"
	"github.com/yuyongju/music-emotion-classification/internal/music"
	"github.com/yuyongju/music-emotion-classification/internal/recommend"
	"github.com/yuyongju/music-emotion-classification/internal/synth"
	"github.com/yuyongju/music-emotion-classification/internal/video"
)

// AllVideos is the video id reported when annotations are ranked together.
const AllVideos = "all"

// VideoResult is the ranked outcome for one video.
type VideoResult struct {
	VideoID         string
	Summary         video.Summary
	Targets         music.MoodSet
	Recommendations []recommend.Recommendation
	Groups          []clustering.Group // nil unless grouping is enabled
	Outliers        int
}

// Recommend ranks the catalogue against the video workbook. Without a
// workbook the fixed fallback annotations are used. With recommend.per_video
// set each video is ranked separately, otherwise all annotations together.
func (s *Service) Recommend(ctx context.Context) (results []VideoResult, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveStage(metrics.StageRecommend, started, err) }()

	annotations, err := s.loadAnnotations(ctx)
	if err != nil {
		return nil, err
	}

	tracks, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	model, err := s.LoadOrTrain(ctx)
	if err != nil {
		return nil, err
	}

	// Features are drawn once so every video ranks the same predictions.
	if err := s.label(ctx, model, tracks); err != nil {
		return nil, err
	}

	groups := map[string][]video.Annotation{AllVideos: annotations}
	ids := []string{AllVideos}
	if s.cfg.Recommend.PerVideo {
		ids, groups = video.GroupByVideo(annotations)
	}

	sets := make([]export.VideoRecommendations, 0, len(ids))
	for _, id := range ids {
		res, err := s.rank(id, groups[id], tracks, s.cfg.Recommend.TopK)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
		sets = append(sets, export.VideoRecommendations{VideoID: res.VideoID, Recommendations: res.Recommendations})

		s.log.Info(ctx, "recommendations ready",
			logger.String("video", res.VideoID),
			logger.Any("top_labels", res.Summary.TopLabels),
			logger.String("targets", res.Targets.String()),
			logger.Int("count", len(res.Recommendations)),
		)
	}

	if err := export.WriteRecommendations(s.cfg.Files.Recommendations, sets); err != nil {
		return nil, err
	}
	return results, nil
}

// RecommendTracks ranks tracks for one set of annotations with an already
// loaded model. Tracks without features get synthesized ones and tracks
// without predictions are labelled first. topK <= 0 uses the configured value.
func (s *Service) RecommendTracks(ctx context.Context, model *classifier.Model, annotations []video.Annotation, tracks []music.Track, topK int) (VideoResult, error) {
	if len(tracks) == 0 {
		return VideoResult{}, ErrNoCatalog
	}
	if topK <= 0 {
		topK = s.cfg.Recommend.TopK
	}
	if err := s.label(ctx, model, tracks); err != nil {
		return VideoResult{}, err
	}

	id := AllVideos
	if vids, _ := video.GroupByVideo(annotations); len(vids) == 1 && vids[0] != "" {
		id = vids[0]
	}
	return s.rank(id, annotations, tracks, topK)
}

func (s *Service) rank(videoID string, annotations []video.Annotation, tracks []music.Track, topK int) (VideoResult, error) {
	if videoID == "" {
		videoID = AllVideos
	}
	summary, targets := video.TargetMoods(annotations, s.cfg.Recommend.TopLabels)
	ranked := s.scorer.Rank(tracks, targets, summary.MeanConfidence)
	if s.cfg.Recommend.MatchingOnly {
		ranked = recommend.Matching(ranked)
	}
	top := recommend.Top(ranked, topK)
	s.metrics.AddRecommendations(len(top))

	res := VideoResult{
		VideoID:         videoID,
		Summary:         summary,
		Targets:         targets,
		Recommendations: top,
	}

	if s.cfg.Clusters.Enabled && len(top) > 0 {
		picked := make([]music.Track, len(top))
		for i, r := range top {
			picked[i] = r.Track
		}
		groups, outliers, err := clustering.GroupByMood(picked, clustering.Config{
			NumClusters:    min(s.cfg.Clusters.Count, len(picked)),
			MinClusterSize: s.cfg.Clusters.MinSize,
		})
		if err != nil {
			return VideoResult{}, fmt.Errorf("grouping recommendations: %w", err)
		}
		res.Groups = groups
		res.Outliers = len(outliers)
	}
	return res, nil
}

// label attaches features to tracks lacking them and predicts a mood for
// every track without a prediction.
func (s *Service) label(ctx context.Context, model *classifier.Model, tracks []music.Track) error {
	var missing []int
	for i, t := range tracks {
		if t.Features == nil {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		sub := make([]music.Track, len(missing))
		for j, i := range missing {
			sub[j] = tracks[i]
		}
		if err := synth.Attach(ctx, s.synth, sub); err != nil {
			return err
		}
		for j, i := range missing {
			tracks[i].Features = sub[j].Features
		}
	}

	var pending []int
	for i, t := range tracks {
		if t.Prediction == nil {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sub := make([]music.Track, len(pending))
	for j, i := range pending {
		sub[j] = tracks[i]
	}
	if err := model.Label(sub); err != nil {
		return fmt.Errorf("predicting moods: %w", err)
	}
	for j, i := range pending {
		tracks[i].Prediction = sub[j].Prediction
		s.metrics.RecordPrediction(sub[j].Prediction.Mood.String())
	}
	return nil
}

func (s *Service) loadAnnotations(ctx context.Context) ([]video.Annotation, error) {
	path := s.cfg.Files.VideoData
	ok, err := export.Exists(path)
	if err != nil {
		return nil, err
	}
	if ok {
		return export.ReadLabelAnnotations(path)
	}

	if s.store != nil {
		bucket := s.cfg.Google.Bucket
		id, analysis, err := s.store.LatestAnalysis(ctx, bucket)
		switch {
		case err == nil && len(analysis.Labels) > 0:
			s.log.Info(ctx, "using stored analysis",
				logger.String("bucket", bucket),
				logger.String("analysis", id.String()),
			)
			return analysis.Labels, nil
		case err != nil && !errors.Is(err, db.ErrNotFound):
			return nil, fmt.Errorf("loading stored analysis: %w", err)
		}
	}

	s.log.Warn(ctx, "video workbook not found, using fallback annotations", logger.String("file", path))
	return video.FallbackAnnotations(), nil
}
