package videointel

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/yuyongju/music-emotion-classification/internal/video"
)

func segment(start, end time.Duration) *videointelligencepb.VideoSegment {
	return &videointelligencepb.VideoSegment{
		StartTimeOffset: durationpb.New(start),
		EndTimeOffset:   durationpb.New(end),
	}
}

func TestConvertResults(t *testing.T) {
	res := &videointelligencepb.VideoAnnotationResults{
		SegmentLabelAnnotations: []*videointelligencepb.LabelAnnotation{
			{
				Entity: &videointelligencepb.Entity{Description: "dance"},
				CategoryEntities: []*videointelligencepb.Entity{
					{Description: "Entertainment"},
					{Description: "Art"},
				},
				Segments: []*videointelligencepb.LabelSegment{
					{Segment: segment(0, 12*time.Second+500*time.Millisecond), Confidence: 0.5},
				},
			},
			{
				Entity: &videointelligencepb.Entity{Description: "sky"},
				Segments: []*videointelligencepb.LabelSegment{
					{Segment: segment(time.Second, 2*time.Second), Confidence: 0.25},
					{Segment: segment(3*time.Second, 4*time.Second), Confidence: 0.75},
				},
			},
		},
		ExplicitAnnotation: &videointelligencepb.ExplicitContentAnnotation{
			Frames: []*videointelligencepb.ExplicitContentFrame{
				{TimeOffset: durationpb.New(time.Second), PornographyLikelihood: videointelligencepb.Likelihood_VERY_UNLIKELY},
				{TimeOffset: durationpb.New(2 * time.Second), PornographyLikelihood: videointelligencepb.Likelihood_POSSIBLE},
				{TimeOffset: durationpb.New(3 * time.Second), PornographyLikelihood: videointelligencepb.Likelihood_LIKELIHOOD_UNSPECIFIED},
			},
		},
		ShotAnnotations: []*videointelligencepb.VideoSegment{
			segment(0, 5*time.Second),
			segment(5*time.Second, 9*time.Second),
		},
	}

	got := ConvertResults("clip.mp4", res)

	t.Run("labels", func(t *testing.T) {
		if len(got.Labels) != 4 {
			t.Fatalf("got %d label rows, want 4", len(got.Labels))
		}
		first := got.Labels[0]
		if first.Label != "dance" || first.Category != "Entertainment" || first.VideoID != "clip.mp4" {
			t.Errorf("first row = %+v", first)
		}
		if *first.End != 12.5 || *first.Confidence != 0.5 {
			t.Errorf("first row times/confidence = %v %v", *first.End, *first.Confidence)
		}
		if got.Labels[1].Category != "Art" {
			t.Errorf("second row category = %q, want Art", got.Labels[1].Category)
		}
		if got.Labels[2].Category != "" || got.Labels[3].Label != "sky" {
			t.Errorf("uncategorised rows = %+v %+v", got.Labels[2], got.Labels[3])
		}
	})

	t.Run("explicit", func(t *testing.T) {
		if len(got.Explicit) != 4 {
			t.Fatalf("got %d explicit rows, want 3 frames + mean", len(got.Explicit))
		}
		if got.Explicit[2].Confidence != nil {
			t.Errorf("unspecified likelihood should have nil confidence")
		}
		mean := got.Explicit[3]
		if mean.Label != video.MeanConfidence || mean.Start != nil || *mean.Confidence != 0.25 {
			t.Errorf("mean row = %+v", mean)
		}
		if *got.Explicit[1].Start != 2 || *got.Explicit[1].End != 2 {
			t.Errorf("frame row should be a point at 2s: %+v", got.Explicit[1])
		}
	})

	t.Run("shots", func(t *testing.T) {
		if len(got.Shots) != 2 {
			t.Fatalf("got %d shots, want 2", len(got.Shots))
		}
		if got.Shots[1].Confidence != nil || *got.Shots[1].Start != 5 || got.Shots[1].Label != video.ShotLabel {
			t.Errorf("shot row = %+v", got.Shots[1])
		}
	})
}

func TestConvertResultsEmpty(t *testing.T) {
	got := ConvertResults("x.mp4", &videointelligencepb.VideoAnnotationResults{})
	if got.Len() != 0 {
		t.Errorf("got %d rows from empty results", got.Len())
	}
}

func TestLikelihoodConfidence(t *testing.T) {
	tests := []struct {
		in    videointelligencepb.Likelihood
		want  float64
		isNil bool
	}{
		{videointelligencepb.Likelihood_LIKELIHOOD_UNSPECIFIED, 0, true},
		{videointelligencepb.Likelihood_VERY_UNLIKELY, 0, false},
		{videointelligencepb.Likelihood_UNLIKELY, 0.25, false},
		{videointelligencepb.Likelihood_POSSIBLE, 0.5, false},
		{videointelligencepb.Likelihood_LIKELY, 0.75, false},
		{videointelligencepb.Likelihood_VERY_LIKELY, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got := LikelihoodConfidence(tt.in)
			if (got == nil) != tt.isNil {
				t.Fatalf("LikelihoodConfidence(%v) = %v, want nil=%v", tt.in, got, tt.isNil)
			}
			if got != nil && *got != tt.want {
				t.Errorf("LikelihoodConfidence(%v) = %v, want %v", tt.in, *got, tt.want)
			}
		})
	}
}

type fakeLister struct {
	names []string
	err   error
}

func (f fakeLister) ListObjects(context.Context, string) ([]string, error) {
	return f.names, f.err
}

type fakeAnnotator struct {
	fail map[string]bool
	seen []string
}

func (f *fakeAnnotator) Annotate(_ context.Context, _, object string) (video.Analysis, error) {
	f.seen = append(f.seen, object)
	if f.fail[object] {
		return video.Analysis{}, errors.New("quota exceeded")
	}
	return video.Analysis{Labels: []video.Annotation{{VideoID: object, Label: "dance"}}}, nil
}

func TestBucketAnalyzer(t *testing.T) {
	t.Run("skips non-video objects and failed videos", func(t *testing.T) {
		ann := &fakeAnnotator{fail: map[string]bool{"b.mp4": true}}
		a := NewBucketAnalyzer(fakeLister{names: []string{"a.MP4", "notes.txt", "b.mp4", "c.mp4"}}, ann, WithVideoTimeout(time.Second))

		got, err := a.Analyze(context.Background(), "bucket")
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if len(ann.seen) != 3 {
			t.Errorf("annotated %v, want 3 videos", ann.seen)
		}
		if len(got.Labels) != 2 || got.Labels[1].VideoID != "c.mp4" {
			t.Errorf("labels = %+v", got.Labels)
		}
	})

	t.Run("empty bucket", func(t *testing.T) {
		a := NewBucketAnalyzer(fakeLister{names: []string{"readme.md"}}, &fakeAnnotator{})
		if _, err := a.Analyze(context.Background(), "bucket"); !errors.Is(err, ErrNoVideos) {
			t.Errorf("Analyze() error = %v, want ErrNoVideos", err)
		}
	})

	t.Run("all fail", func(t *testing.T) {
		a := NewBucketAnalyzer(fakeLister{names: []string{"a.mp4"}}, &fakeAnnotator{fail: map[string]bool{"a.mp4": true}})
		if _, err := a.Analyze(context.Background(), "bucket"); !errors.Is(err, ErrAllFailed) {
			t.Errorf("Analyze() error = %v, want ErrAllFailed", err)
		}
	})

	t.Run("listing error", func(t *testing.T) {
		boom := errors.New("forbidden")
		a := NewBucketAnalyzer(fakeLister{err: boom}, &fakeAnnotator{})
		if _, err := a.Analyze(context.Background(), "bucket"); !errors.Is(err, boom) {
			t.Errorf("Analyze() error = %v, want wrapped listing error", err)
		}
	})
}

func TestSampleAnalyzer(t *testing.T) {
	got, err := SampleAnalyzer{}.Analyze(context.Background(), "any")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(got.Labels) != 25 || got.Labels[0].VideoID != video.SampleVideoID {
		t.Errorf("unexpected sample analysis: %d rows", len(got.Labels))
	}
}
