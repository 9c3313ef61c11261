package web

import (
	"errors"
	"fmt"

	"github.com/yuyongju/music-emotion-classification/internal/clustering"
	"github.com/yuyongju/music-emotion-classification/internal/music"
	"github.com/yuyongju/music-emotion-classification/internal/pipeline"
	"github.com/yuyongju/music-emotion-classification/internal/video"
)

// ErrBadRequest marks request validation failures.
var ErrBadRequest = errors.New("bad request")

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type featuresDTO struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              int     `json:"key"`
	Loudness         float64 `json:"loudness"`
	Mode             int     `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	DurationMs       int     `json:"duration_ms"`
	Popularity       int     `json:"popularity"`
}

func (f featuresDTO) toFeatures() music.Features {
	return music.Features{
		Danceability:     f.Danceability,
		Energy:           f.Energy,
		Key:              f.Key,
		Loudness:         f.Loudness,
		Mode:             f.Mode,
		Speechiness:      f.Speechiness,
		Acousticness:     f.Acousticness,
		Instrumentalness: f.Instrumentalness,
		Liveness:         f.Liveness,
		Valence:          f.Valence,
		Tempo:            f.Tempo,
		DurationMs:       f.DurationMs,
		Popularity:       f.Popularity,
	}
}

type annotationDTO struct {
	VideoID    string   `json:"video_id"`
	Label      string   `json:"label"`
	Category   string   `json:"category"`
	Start      *float64 `json:"start,omitempty"`
	End        *float64 `json:"end,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

func toAnnotations(in []annotationDTO) ([]video.Annotation, error) {
	out := make([]video.Annotation, len(in))
	for i, a := range in {
		if c := a.Confidence; c != nil && (*c < 0 || *c > 1) {
			return nil, fmt.Errorf("%w: annotation %d confidence %v outside [0,1]", ErrBadRequest, i, *c)
		}
		out[i] = video.Annotation{
			VideoID:    a.VideoID,
			Label:      a.Label,
			Category:   a.Category,
			Start:      a.Start,
			End:        a.End,
			Confidence: a.Confidence,
			Kind:       video.KindLabel,
		}
	}
	return out, nil
}

type trackDTO struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Artist     string       `json:"artist"`
	Album      string       `json:"album,omitempty"`
	DurationMs int          `json:"duration_ms"`
	Popularity int          `json:"popularity"`
	Features   *featuresDTO `json:"features,omitempty"`
}

func toTracks(in []trackDTO) ([]music.Track, error) {
	out := make([]music.Track, len(in))
	for i, t := range in {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: track %d has no id", ErrBadRequest, i)
		}
		out[i] = music.Track{
			ID:         t.ID,
			Name:       t.Name,
			Artist:     t.Artist,
			Album:      t.Album,
			DurationMs: t.DurationMs,
			Popularity: t.Popularity,
		}
		if t.Features != nil {
			f := t.Features.toFeatures()
			if err := f.Validate(); err != nil {
				return nil, fmt.Errorf("%w: track %s: %v", ErrBadRequest, t.ID, err)
			}
			out[i].Features = &f
		}
	}
	return out, nil
}

type moodsResponse struct {
	Moods          []music.Mood `json:"moods"`
	DefaultTargets []music.Mood `json:"default_targets"`
}

type labelResponse struct {
	Mood music.Mood `json:"mood"`
}

type summarizeRequest struct {
	Annotations []annotationDTO `json:"annotations"`
	TopN        int             `json:"top_n"`
}

type summarizeResponse struct {
	Summary     video.Summary `json:"summary"`
	TargetMoods []music.Mood  `json:"target_moods"`
}

type recommendRequest struct {
	Annotations []annotationDTO `json:"annotations"`
	Tracks      []trackDTO      `json:"tracks"`
	TopK        int             `json:"top_k"`
}

type recommendationDTO struct {
	Rank      int        `json:"rank"`
	TrackID   string     `json:"track_id"`
	TrackName string     `json:"track_name"`
	Artist    string     `json:"artist"`
	Mood      music.Mood `json:"predicted_mood"`
	Score     float64    `json:"match_score"`
}

type groupDTO struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	TrackIDs    []string           `json:"track_ids"`
	Centroid    map[string]float64 `json:"centroid"`
}

type recommendResponse struct {
	RequestID       string              `json:"request_id"`
	VideoID         string              `json:"video_id"`
	Summary         video.Summary       `json:"summary"`
	TargetMoods     []music.Mood        `json:"target_moods"`
	Recommendations []recommendationDTO `json:"recommendations"`
	Groups          []groupDTO          `json:"groups,omitempty"`
}

func fromResult(requestID string, res pipeline.VideoResult) recommendResponse {
	out := recommendResponse{
		RequestID:       requestID,
		VideoID:         res.VideoID,
		Summary:         res.Summary,
		TargetMoods:     res.Targets.Sorted(),
		Recommendations: make([]recommendationDTO, len(res.Recommendations)),
	}
	for i, r := range res.Recommendations {
		out.Recommendations[i] = recommendationDTO{
			Rank:      i + 1,
			TrackID:   r.Track.ID,
			TrackName: r.Track.Name,
			Artist:    r.Track.Artist,
			Mood:      r.Mood,
			Score:     r.Score,
		}
	}
	for _, g := range res.Groups {
		out.Groups = append(out.Groups, fromGroup(g))
	}
	return out
}

func fromGroup(g clustering.Group) groupDTO {
	ids := make([]string, len(g.Tracks))
	for i, t := range g.Tracks {
		ids[i] = t.ID
	}
	return groupDTO{Name: g.Name, Description: g.Description, TrackIDs: ids, Centroid: g.Centroid}
}
