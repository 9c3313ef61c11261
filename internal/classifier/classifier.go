// Package classifier trains and runs the mood classifier: a small
// feed-forward network over standardized feature vectors.
//
// Training data comes from the rule-based labeler; the resulting Model labels
// new tracks without re-deriving the rules. A Model is owned by one pipeline
// run and is not safe for concurrent training.
package classifier

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/yuyongju/music-emotion-classification/internal/logger"
	"github.com/yuyongju/music-emotion-classification/internal/music"
)

// Default training parameters.
const (
	DefaultEpochs          = 30
	DefaultBatchSize       = 32
	DefaultLearningRate    = 0.001
	DefaultValidationSplit = 0.2
	DefaultDropout         = 0.3
	DefaultSeed            = 42
)

// DefaultHidden is the width of each hidden layer.
var DefaultHidden = []int{64, 32}

type trainConfig struct {
	epochs          int
	batchSize       int
	learningRate    float64
	validationSplit float64
	dropout         float64
	seed            int64
	hidden          []int
	log             logger.Logger
}

// Option configures Train.
type Option func(*trainConfig)

// WithEpochs sets the number of passes over the training set.
func WithEpochs(n int) Option {
	return func(c *trainConfig) {
		if n > 0 {
			c.epochs = n
		}
	}
}

// WithBatchSize sets the mini-batch size.
func WithBatchSize(n int) Option {
	return func(c *trainConfig) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithLearningRate sets the Adam step size.
func WithLearningRate(lr float64) Option {
	return func(c *trainConfig) {
		if lr > 0 {
			c.learningRate = lr
		}
	}
}

// WithValidationSplit sets the share of samples held out for evaluation.
// Values outside [0,1) are ignored.
func WithValidationSplit(split float64) Option {
	return func(c *trainConfig) {
		if split >= 0 && split < 1 {
			c.validationSplit = split
		}
	}
}

// WithDropout sets the dropout rate applied after each hidden layer.
func WithDropout(rate float64) Option {
	return func(c *trainConfig) {
		if rate >= 0 && rate < 1 {
			c.dropout = rate
		}
	}
}

// WithSeed fixes the split, initialisation and dropout randomness.
func WithSeed(seed int64) Option {
	return func(c *trainConfig) {
		c.seed = seed
	}
}

// WithHidden overrides the hidden layer widths.
func WithHidden(widths ...int) Option {
	return func(c *trainConfig) {
		for _, w := range widths {
			if w <= 0 {
				return
			}
		}
		if len(widths) > 0 {
			c.hidden = widths
		}
	}
}

// WithLogger sets the logger used for per-epoch progress.
func WithLogger(l logger.Logger) Option {
	return func(c *trainConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// Report summarises a training run.
type Report struct {
	Epochs             int
	TrainSamples       int
	ValidationSamples  int
	Loss               float64 // mean loss of the final epoch
	TrainAccuracy      float64
	ValidationAccuracy float64 // 0 when no samples were held out
	ClassCounts        map[music.Mood]int
}

// Model is a trained network together with the scaler fitted on its
// training data. The zero value is not usable; predicting with it returns
// ErrInvalidState.
type Model struct {
	net    *network
	scaler *Scaler
}

// Train fits a model on features labeled with moods.
func Train(ctx context.Context, features []music.Features, labels []music.Mood, opts ...Option) (*Model, *Report, error) {
	cfg := trainConfig{
		epochs:          DefaultEpochs,
		batchSize:       DefaultBatchSize,
		learningRate:    DefaultLearningRate,
		validationSplit: DefaultValidationSplit,
		dropout:         DefaultDropout,
		seed:            DefaultSeed,
		hidden:          DefaultHidden,
		log:             logger.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	counts, err := checkTrainingData(features, labels)
	if err != nil {
		return nil, nil, err
	}

	n := len(features)
	x := featureMatrix(features)
	y := oneHot(labels)

	rng := rand.New(rand.NewSource(cfg.seed)) //nolint:gosec // reproducible training, not security sensitive
	perm := rng.Perm(n)
	nVal := int(math.Ceil(cfg.validationSplit*float64(n) - 1e-9))
	if nVal >= n {
		nVal = n - 1
	}
	valIdx, trainIdx := perm[:nVal], perm[nVal:]

	xTrainRaw := selectRows(x, trainIdx)
	scaler := fitScaler(xTrainRaw)
	xTrain, err := scaler.Transform(xTrainRaw)
	if err != nil {
		return nil, nil, err
	}
	yTrain := selectRows(y, trainIdx)

	sizes := append(append([]int{music.NumFeatures}, cfg.hidden...), music.NumMoods)
	net := newNetwork(sizes, cfg.dropout, rng)
	optim := newAdam(cfg.learningRate, net)

	report := &Report{
		Epochs:            cfg.epochs,
		TrainSamples:      len(trainIdx),
		ValidationSamples: nVal,
		ClassCounts:       counts,
	}

	order := make([]int, len(trainIdx))
	for i := range order {
		order[i] = i
	}

	for epoch := 1; epoch <= cfg.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("training interrupted at epoch %d: %w", epoch, err)
		}

		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var epochLoss float64
		for start := 0; start < len(order); start += cfg.batchSize {
			end := min(start+cfg.batchSize, len(order))
			batch := order[start:end]
			xb := selectRows(xTrain, batch)
			yb := selectRows(yTrain, batch)

			tr := net.forward(xb, rng)
			epochLoss += crossEntropy(tr.probs, yb) * float64(len(batch))
			optim.step(net, net.backward(tr, yb))
		}
		report.Loss = epochLoss / float64(len(order))

		cfg.log.Debug(ctx, "epoch complete",
			logger.Int("epoch", epoch),
			logger.Float64("loss", report.Loss),
		)
	}

	model := &Model{net: net, scaler: scaler}

	report.TrainAccuracy = accuracy(net.forward(xTrain, nil).probs, yTrain)
	if nVal > 0 {
		xVal, err := scaler.Transform(selectRows(x, valIdx))
		if err != nil {
			return nil, nil, err
		}
		report.ValidationAccuracy = accuracy(net.forward(xVal, nil).probs, selectRows(y, valIdx))
	}

	cfg.log.Info(ctx, "training complete",
		logger.Int("train_samples", report.TrainSamples),
		logger.Int("validation_samples", report.ValidationSamples),
		logger.Float64("loss", report.Loss),
		logger.Float64("validation_accuracy", report.ValidationAccuracy),
	)

	return model, report, nil
}

// checkTrainingData rejects data that would produce a degenerate model and
// returns the per-class sample counts.
func checkTrainingData(features []music.Features, labels []music.Mood) (map[music.Mood]int, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrData)
	}
	if len(features) != len(labels) {
		return nil, fmt.Errorf("%w: %d feature vectors but %d labels", ErrData, len(features), len(labels))
	}
	if len(features) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples", ErrData)
	}

	counts := make(map[music.Mood]int)
	for i, f := range features {
		if !labels[i].Valid() {
			return nil, fmt.Errorf("%w: sample %d has label %q", ErrData, i, labels[i])
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("%w: sample %d: %v", ErrData, i, err)
		}
		counts[labels[i]]++
	}
	if len(counts) < 2 {
		return nil, fmt.Errorf("%w: only one class present", ErrData)
	}
	return counts, nil
}

// InputWidth returns the feature width the model expects.
func (m *Model) InputWidth() int {
	if m == nil || m.net == nil {
		return 0
	}
	return m.net.inputWidth()
}

// Predict labels each feature vector with its most likely mood.
func (m *Model) Predict(features []music.Features) ([]music.Prediction, error) {
	rows := make([][]float64, len(features))
	for i, f := range features {
		rows[i] = f.Values()
	}
	return m.PredictValues(rows)
}

// PredictValues is Predict for raw vectors in music.FeatureNames order.
// Vectors of the wrong width fail with ErrSchemaMismatch.
func (m *Model) PredictValues(rows [][]float64) ([]music.Prediction, error) {
	if m == nil || m.net == nil || m.scaler == nil {
		return nil, ErrInvalidState
	}
	if len(rows) == 0 {
		return []music.Prediction{}, nil
	}

	width := m.InputWidth()
	x := mat.NewDense(len(rows), width, nil)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d values, model expects %d", ErrSchemaMismatch, i, len(row), width)
		}
		x.SetRow(i, row)
	}

	scaled, err := m.scaler.Transform(x)
	if err != nil {
		return nil, err
	}
	probs := m.net.forward(scaled, nil).probs

	out := make([]music.Prediction, len(rows))
	for i := range rows {
		scores := mat.Row(nil, i, probs)
		out[i] = music.Prediction{
			Mood:   music.Moods[floats.MaxIdx(scores)],
			Scores: scores,
		}
	}
	return out, nil
}

// Label predicts moods and stores them on the tracks in place. Every track
// must carry features.
func (m *Model) Label(tracks []music.Track) error {
	features := make([]music.Features, len(tracks))
	for i, t := range tracks {
		if t.Features == nil {
			return fmt.Errorf("%w: track %q has no features", ErrSchemaMismatch, t.ID)
		}
		features[i] = *t.Features
	}
	preds, err := m.Predict(features)
	if err != nil {
		return err
	}
	for i := range tracks {
		p := preds[i]
		tracks[i].Prediction = &p
	}
	return nil
}

func featureMatrix(features []music.Features) *mat.Dense {
	x := mat.NewDense(len(features), music.NumFeatures, nil)
	for i, f := range features {
		x.SetRow(i, f.Values())
	}
	return x
}

// oneHot encodes labels over every mood, so absent classes still get a column.
func oneHot(labels []music.Mood) *mat.Dense {
	y := mat.NewDense(len(labels), music.NumMoods, nil)
	for i, l := range labels {
		y.Set(i, l.Index(), 1)
	}
	return y
}

func selectRows(x *mat.Dense, idx []int) *mat.Dense {
	_, cols := x.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for r, i := range idx {
		out.SetRow(r, x.RawRowView(i))
	}
	return out
}
