package export

import (
	"github.com/yuyongju/music-emotion-classification/internal/recommend"
)

// RecommendationSheet holds the ranked tracks.
const RecommendationSheet = "Recommendations"

var recommendationHeader = []string{"video", "rank", "track_name", "artist", "predicted_mood", "match_score"}

// VideoRecommendations is the ranked list for one video.
type VideoRecommendations struct {
	VideoID         string
	Recommendations []recommend.Recommendation
}

// WriteRecommendations writes every video's ranked tracks to one sheet.
func WriteRecommendations(path string, sets []VideoRecommendations) error {
	var rows [][]any
	for _, set := range sets {
		for i, r := range set.Recommendations {
			rows = append(rows, []any{set.VideoID, i + 1, r.Track.Name, r.Track.Artist, string(r.Mood), r.Score})
		}
	}
	return writeWorkbook(path, []sheet{{name: RecommendationSheet, header: recommendationHeader, rows: rows}})
}
