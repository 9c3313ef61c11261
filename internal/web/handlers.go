package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/yuyongju/music-emotion-classification/internal/classifier"
	"github.com/yuyongju/music-emotion-classification/internal/labeler"
	"github.com/yuyongju/music-emotion-classification/internal/music"
	"github.com/yuyongju/music-emotion-classification/internal/pipeline"
	"github.com/yuyongju/music-emotion-classification/internal/video"
)

const (
	defaultTopLabels = 5
	maxBodyBytes     = 4 << 20
)

// Recommender ranks tracks against video annotations.
type Recommender interface {
	RecommendTracks(ctx context.Context, model *classifier.Model, annotations []video.Annotation, tracks []music.Track, topK int) (pipeline.VideoResult, error)
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	rec       Recommender
	model     *classifier.Model
	topLabels int
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(rec Recommender, model *classifier.Model, topLabels int) *Handlers {
	if topLabels <= 0 {
		topLabels = defaultTopLabels
	}
	return &Handlers{rec: rec, model: model, topLabels: topLabels}
}

// Health reports liveness (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"model_loaded": h.model != nil,
	})
}

// Moods lists the mood categories (GET /api/moods).
func (h *Handlers) Moods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, moodsResponse{
		Moods:          music.Moods[:],
		DefaultTargets: music.NewMoodSet(video.DefaultMoods...).Sorted(),
	})
}

// Label applies the rule table to one feature vector (POST /api/label).
func (h *Handlers) Label(w http.ResponseWriter, r *http.Request) {
	var req featuresDTO
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	f := req.toFeatures()
	if err := f.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_features", err)
		return
	}
	writeJSON(w, http.StatusOK, labelResponse{Mood: labeler.Label(f)})
}

// Summarize aggregates annotations into target moods (POST /api/summarize).
func (h *Handlers) Summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	annotations, err := toAnnotations(req.Annotations)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	topN := req.TopN
	if topN <= 0 {
		topN = h.topLabels
	}
	summary, targets := video.TargetMoods(annotations, topN)
	writeJSON(w, http.StatusOK, summarizeResponse{Summary: summary, TargetMoods: targets.Sorted()})
}

// Recommend ranks the posted tracks for the posted annotations
// (POST /api/recommendations).
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	if h.model == nil || h.rec == nil {
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", classifier.ErrInvalidState)
		return
	}

	var req recommendRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	annotations, err := toAnnotations(req.Annotations)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	tracks, err := toTracks(req.Tracks)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if len(tracks) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: no tracks", ErrBadRequest))
		return
	}

	res, err := h.rec.RecommendTracks(r.Context(), h.model, annotations, tracks, req.TopK)
	switch {
	case errors.Is(err, classifier.ErrSchemaMismatch):
		writeError(w, http.StatusUnprocessableEntity, "schema_mismatch", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, fromResult(uuid.NewString(), res))
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
