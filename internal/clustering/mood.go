package clustering

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/yuyongju/music-emotion-classification/internal/music"
)

// trackObservation wraps a track index to implement clusters.Observation.
type trackObservation struct {
	index  int
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// featureNames defines the audio features used for clustering.
var featureNames = []string{"energy", "valence", "danceability", "acousticness"}

// GroupByMood clusters tracks by audio feature similarity.
// Tracks without features, and members of clusters smaller than
// MinClusterSize, are returned as outliers. Groups are ordered largest first.
func GroupByMood(tracks []music.Track, cfg Config) ([]Group, []music.Track, error) {
	if len(tracks) == 0 {
		return nil, nil, nil
	}

	defaults := DefaultConfig()
	if cfg.NumClusters <= 0 {
		cfg.NumClusters = defaults.NumClusters
	}
	if cfg.MinClusterSize <= 0 {
		cfg.MinClusterSize = defaults.MinClusterSize
	}

	var obs clusters.Observations
	var outliers []music.Track
	for i, t := range tracks {
		if t.Features == nil {
			outliers = append(outliers, t)
			continue
		}
		obs = append(obs, trackObservation{index: i, coords: extractFeatures(t.Features)})
	}

	// Fewer tracks than clusters cannot be partitioned
	if len(obs) < cfg.NumClusters {
		for _, o := range obs {
			outliers = append(outliers, tracks[o.(trackObservation).index])
		}
		return nil, outliers, nil
	}

	result, err := kmeans.New().Partition(obs, cfg.NumClusters)
	if err != nil {
		return nil, nil, fmt.Errorf("k-means clustering: %w", err)
	}

	var groups []Group
	for _, cluster := range result {
		indices := make([]int, 0, len(cluster.Observations))
		for _, o := range cluster.Observations {
			if to, ok := o.(trackObservation); ok {
				indices = append(indices, to.index)
			}
		}
		slices.Sort(indices)

		members := make([]music.Track, len(indices))
		for i, idx := range indices {
			members[i] = tracks[idx]
		}

		if len(members) < cfg.MinClusterSize {
			outliers = append(outliers, members...)
			continue
		}

		centroid := make(map[string]float64, len(featureNames))
		for i, name := range featureNames {
			centroid[name] = cluster.Center[i]
		}

		groups = append(groups, Group{
			Name:        generateMoodName(centroid),
			Description: describeMood(centroid),
			Tracks:      members,
			Centroid:    centroid,
		})
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		if c := cmp.Compare(len(b.Tracks), len(a.Tracks)); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return groups, outliers, nil
}

// extractFeatures extracts the audio features used for clustering as a coordinate vector.
func extractFeatures(f *music.Features) clusters.Coordinates {
	return clusters.Coordinates{
		f.Energy,
		f.Valence,
		f.Danceability,
		f.Acousticness,
	}
}
