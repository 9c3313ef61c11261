// Package video holds video annotations and turns them into the moods a
// video calls for.
package video

// Kind tells which detector produced an annotation.
type Kind string

// Annotation kinds.
const (
	KindLabel    Kind = "label"
	KindExplicit Kind = "explicit"
	KindShot     Kind = "shot"
)

// Fixed texts used for non-label rows.
const (
	ExplicitLabel  = "Explicit Content"
	MeanConfidence = "Mean Confidence"
	ShotLabel      = "Shot Change"
	NoCategory     = "N/A"
)

// Annotation is one detection on a video.
// Start and End are seconds and are nil for point or summary rows.
// Confidence is in [0,1] and nil when the detector reports none.
type Annotation struct {
	VideoID    string
	Label      string
	Category   string
	Start      *float64
	End        *float64
	Confidence *float64
	Kind       Kind
}

// Analysis groups the annotations of one or more videos by detector.
type Analysis struct {
	Labels   []Annotation
	Explicit []Annotation
	Shots    []Annotation
}

// Len returns the total number of annotations.
func (a Analysis) Len() int {
	return len(a.Labels) + len(a.Explicit) + len(a.Shots)
}

// All returns every annotation, labels first.
func (a Analysis) All() []Annotation {
	out := make([]Annotation, 0, a.Len())
	out = append(out, a.Labels...)
	out = append(out, a.Explicit...)
	return append(out, a.Shots...)
}

// Append merges other into a.
func (a *Analysis) Append(other Analysis) {
	a.Labels = append(a.Labels, other.Labels...)
	a.Explicit = append(a.Explicit, other.Explicit...)
	a.Shots = append(a.Shots, other.Shots...)
}

// GroupByVideo splits annotations per video, keeping first-seen video order.
func GroupByVideo(annotations []Annotation) (ids []string, groups map[string][]Annotation) {
	groups = make(map[string][]Annotation)
	for _, a := range annotations {
		if _, ok := groups[a.VideoID]; !ok {
			ids = append(ids, a.VideoID)
		}
		groups[a.VideoID] = append(groups[a.VideoID], a)
	}
	return ids, groups
}

// Float returns a pointer to v, for optional fields.
func Float(v float64) *float64 {
	return &v
}
