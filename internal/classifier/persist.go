package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/yuyongju/music-emotion-classification/internal/music"
)

// Artifact file names. Both live in the same directory and are saved and
// loaded together.
const (
	ModelFile  = "model.json"
	ScalerFile = "scaler.json"
)

type modelArtifact struct {
	Features []string     `json:"features"`
	Moods    []music.Mood `json:"moods"`
	Dropout  float64      `json:"dropout"`
	Layers   []layerJSON  `json:"layers"`
}

type layerJSON struct {
	In      int       `json:"in"`
	Out     int       `json:"out"`
	Weights []float64 `json:"weights"` // row-major, in x out
	Bias    []float64 `json:"bias"`
}

type scalerArtifact struct {
	Features []string `json:"features"`
	Scaler
}

// Save writes the model and its scaler to dir, creating it if needed.
func (m *Model) Save(dir string) error {
	if m == nil || m.net == nil || m.scaler == nil {
		return ErrInvalidState
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating model dir: %w", err)
	}

	art := modelArtifact{
		Features: music.FeatureNames,
		Moods:    music.Moods[:],
		Dropout:  m.net.dropout,
	}
	for _, l := range m.net.layers {
		in, out := l.dims()
		art.Layers = append(art.Layers, layerJSON{
			In:      in,
			Out:     out,
			Weights: slices.Clone(l.w.RawMatrix().Data),
			Bias:    slices.Clone(l.b),
		})
	}

	if err := writeJSON(filepath.Join(dir, ModelFile), art); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, ScalerFile), scalerArtifact{
		Features: music.FeatureNames,
		Scaler:   *m.scaler,
	})
}

// Exists reports whether a complete model is stored in dir. Having only one
// of the two files is an error.
func Exists(dir string) (bool, error) {
	hasModel, err := fileExists(filepath.Join(dir, ModelFile))
	if err != nil {
		return false, err
	}
	hasScaler, err := fileExists(filepath.Join(dir, ScalerFile))
	if err != nil {
		return false, err
	}
	switch {
	case hasModel && hasScaler:
		return true, nil
	case hasModel:
		return false, fmt.Errorf("%w: %s has no %s", ErrMissingArtifact, dir, ScalerFile)
	case hasScaler:
		return false, fmt.Errorf("%w: %s has no %s", ErrMissingArtifact, dir, ModelFile)
	default:
		return false, nil
	}
}

// Load reads a model saved with Save. The stored feature schema must match
// music.FeatureNames and every layer shape must chain.
func Load(dir string) (*Model, error) {
	ok, err := Exists(dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no model in %s", ErrInvalidState, dir)
	}

	var art modelArtifact
	if err := readJSON(filepath.Join(dir, ModelFile), &art); err != nil {
		return nil, err
	}
	var sa scalerArtifact
	if err := readJSON(filepath.Join(dir, ScalerFile), &sa); err != nil {
		return nil, err
	}

	if !slices.Equal(art.Features, music.FeatureNames) || !slices.Equal(sa.Features, music.FeatureNames) {
		return nil, fmt.Errorf("%w: stored feature names differ from %v", ErrSchemaMismatch, music.FeatureNames)
	}
	if !slices.Equal(art.Moods, music.Moods[:]) {
		return nil, fmt.Errorf("%w: stored moods %v", ErrSchemaMismatch, art.Moods)
	}
	if sa.Width() != music.NumFeatures || len(sa.Scale) != music.NumFeatures {
		return nil, fmt.Errorf("%w: scaler width %d", ErrSchemaMismatch, sa.Width())
	}

	net, err := buildNetwork(art)
	if err != nil {
		return nil, err
	}
	scaler := sa.Scaler
	return &Model{net: net, scaler: &scaler}, nil
}

func buildNetwork(art modelArtifact) (*network, error) {
	if len(art.Layers) == 0 {
		return nil, fmt.Errorf("%w: model has no layers", ErrSchemaMismatch)
	}
	net := &network{dropout: art.Dropout}
	want := music.NumFeatures
	for i, l := range art.Layers {
		if l.In != want || l.Out <= 0 || len(l.Weights) != l.In*l.Out || len(l.Bias) != l.Out {
			return nil, fmt.Errorf("%w: layer %d has shape %dx%d", ErrSchemaMismatch, i, l.In, l.Out)
		}
		net.layers = append(net.layers, &dense{
			w: mat.NewDense(l.In, l.Out, l.Weights),
			b: l.Bias,
		})
		want = l.Out
	}
	if want != music.NumMoods {
		return nil, fmt.Errorf("%w: output width %d, want %d", ErrSchemaMismatch, want, music.NumMoods)
	}
	return net, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrSchemaMismatch, filepath.Base(path), err)
	}
	return nil
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	return !info.IsDir(), nil
}
