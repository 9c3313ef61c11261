// Package clustering groups tracks into listening moods with k-means over
// their audio features.
package clustering

import "github.com/yuyongju/music-emotion-classification/internal/music"

// Config holds clustering parameters.
type Config struct {
	NumClusters    int // Number of clusters to create (default: 4)
	MinClusterSize int // Smaller clusters become outliers (default: 2)
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumClusters:    4,
		MinClusterSize: 2,
	}
}

// Group is a cluster of tracks with a similar sound.
type Group struct {
	Name        string             // Quadrant name, e.g. "Upbeat Party"
	Description string             // One-line summary of the mood
	Tracks      []music.Track      // Members, in input order
	Centroid    map[string]float64 // Average feature values for this cluster
}
