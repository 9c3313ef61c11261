package classifier

import "errors"

// Sentinel errors. Callers match them with errors.Is.
var (
	// ErrInvalidState is returned when predicting without a trained or loaded model.
	ErrInvalidState = errors.New("classifier has no trained model")

	// ErrSchemaMismatch is returned when feature width or order differs from the model's.
	ErrSchemaMismatch = errors.New("feature schema mismatch")

	// ErrData is returned for unusable training data: empty, misaligned, single-class or invalid rows.
	ErrData = errors.New("invalid training data")

	// ErrMissingArtifact is returned when only one of the model/scaler pair is on disk.
	ErrMissingArtifact = errors.New("model artifact incomplete")
)
