package clustering

import (
	"fmt"
	"strings"
)

const sampleTrackCount = 3

// FormatGroupSummary returns a human-readable summary of mood groups.
// Shows track count and the first 3 sample tracks for each group.
// Outliers are summarized by count only.
func FormatGroupSummary(groups []Group, outliers int) string {
	var sb strings.Builder

	totalTracks := outliers
	for _, g := range groups {
		totalTracks += len(g.Tracks)
	}

	if len(groups) == 0 {
		sb.WriteString(fmt.Sprintf("No mood groups found from %d tracks", totalTracks))
		if outliers > 0 {
			sb.WriteString(fmt.Sprintf(" (%d outliers skipped)", outliers))
		}
		sb.WriteString("\n")
		return sb.String()
	}

	groupWord := "group"
	if len(groups) > 1 {
		groupWord = "groups"
	}

	sb.WriteString(fmt.Sprintf("Found %d mood %s from %d tracks", len(groups), groupWord, totalTracks))
	if outliers > 0 {
		sb.WriteString(fmt.Sprintf(" (%d outliers skipped)", outliers))
	}
	sb.WriteString("\n")

	for i, g := range groups {
		sb.WriteString("\n")
		sb.WriteString(formatGroup(i+1, g))
	}

	return sb.String()
}

// formatGroup formats a single group with its sample tracks.
func formatGroup(num int, g Group) string {
	var sb strings.Builder

	trackWord := "track"
	if len(g.Tracks) > 1 {
		trackWord = "tracks"
	}

	sb.WriteString(fmt.Sprintf("Group %d: %s (%d %s)\n", num, g.Name, len(g.Tracks), trackWord))

	sampleCount := min(sampleTrackCount, len(g.Tracks))
	for i := 0; i < sampleCount; i++ {
		track := g.Tracks[i]
		sb.WriteString(fmt.Sprintf("  • \"%s\" - %s\n", track.Name, track.Artist))
	}

	remaining := len(g.Tracks) - sampleTrackCount
	if remaining > 0 {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", remaining))
	}

	return sb.String()
}
