package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuyongju/music-emotion-classification/internal/classifier"
	"github.com/yuyongju/music-emotion-classification/internal/labeler"
	"github.com/yuyongju/music-emotion-classification/internal/logger"
	"github.com/yuyongju/music-emotion-classification/internal/metrics"
	"github.com/yuyongju/music-emotion-classification/internal/music"
	"github.com/yuyongju/music-emotion-classification/internal/synth"
)

// Train fits a classifier on the catalogue: features are synthesized,
// labelled by the rule table, and the model is saved to the model directory.
func (s *Service) Train(ctx context.Context) (model *classifier.Model, report *classifier.Report, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveStage(metrics.StageTrain, started, err) }()

	tracks, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := synth.Attach(ctx, s.synth, tracks); err != nil {
		return nil, nil, err
	}

	features := make([]music.Features, len(tracks))
	for i, t := range tracks {
		features[i] = *t.Features
	}
	labels := labeler.LabelAll(features)

	mc := s.cfg.Model
	model, report, err = classifier.Train(ctx, features, labels,
		classifier.WithEpochs(mc.Epochs),
		classifier.WithBatchSize(mc.BatchSize),
		classifier.WithLearningRate(mc.LearningRate),
		classifier.WithValidationSplit(mc.ValidationSplit),
		classifier.WithSeed(mc.Seed),
		classifier.WithLogger(s.log.Named("classifier")),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("training classifier: %w", err)
	}

	if err := model.Save(mc.Dir); err != nil {
		return nil, nil, err
	}
	s.metrics.RecordTraining(report.Loss, report.ValidationAccuracy)

	s.log.Info(ctx, "classifier trained",
		logger.Int("train_samples", report.TrainSamples),
		logger.Int("validation_samples", report.ValidationSamples),
		logger.Float64("loss", report.Loss),
		logger.Float64("validation_accuracy", report.ValidationAccuracy),
		logger.String("dir", mc.Dir),
	)
	return model, report, nil
}

// LoadOrTrain loads the persisted model, training a new one when none exists
// or the stored one cannot be used.
func (s *Service) LoadOrTrain(ctx context.Context) (*classifier.Model, error) {
	dir := s.cfg.Model.Dir

	model, err := classifier.Load(dir)
	if err == nil {
		s.log.Info(ctx, "classifier loaded", logger.String("dir", dir))
		return model, nil
	}

	if errors.Is(err, classifier.ErrInvalidState) {
		s.log.Info(ctx, "no stored classifier, training a new one", logger.String("dir", dir))
	} else {
		s.log.Warn(ctx, "stored classifier unusable, training a new one",
			logger.String("dir", dir),
			logger.Error(err),
		)
	}

	model, _, err = s.Train(ctx)
	return model, err
}
