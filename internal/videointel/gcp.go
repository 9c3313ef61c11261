package videointel

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	"cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/yuyongju/music-emotion-classification/internal/video"
)

// GCSLister lists objects with the Cloud Storage client.
type GCSLister struct {
	client *storage.Client
}

// ListObjects implements ObjectLister.
func (l *GCSLister) ListObjects(ctx context.Context, bucket string) ([]string, error) {
	it := l.client.Bucket(bucket).Objects(ctx, nil)
	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

// GCPAnnotator annotates gs:// objects with the Video Intelligence API.
type GCPAnnotator struct {
	client *videointelligence.Client
}

var features = []videointelligencepb.Feature{
	videointelligencepb.Feature_LABEL_DETECTION,
	videointelligencepb.Feature_SHOT_CHANGE_DETECTION,
	videointelligencepb.Feature_EXPLICIT_CONTENT_DETECTION,
}

// Annotate implements Annotator. It blocks until the long-running operation
// finishes or ctx ends.
func (a *GCPAnnotator) Annotate(ctx context.Context, bucket, object string) (video.Analysis, error) {
	op, err := a.client.AnnotateVideo(ctx, &videointelligencepb.AnnotateVideoRequest{
		InputUri: fmt.Sprintf("gs://%s/%s", bucket, object),
		Features: features,
	})
	if err != nil {
		return video.Analysis{}, fmt.Errorf("starting annotation: %w", err)
	}

	resp, err := op.Wait(ctx)
	if err != nil {
		return video.Analysis{}, fmt.Errorf("waiting for annotation: %w", err)
	}

	var out video.Analysis
	for _, res := range resp.GetAnnotationResults() {
		out.Append(ConvertResults(object, res))
	}
	return out, nil
}

// Clients bundles the two Google clients behind a BucketAnalyzer.
type Clients struct {
	Storage *storage.Client
	Video   *videointelligence.Client
}

// NewClients creates both clients. credentialsFile may be empty to use
// application default credentials.
func NewClients(ctx context.Context, credentialsFile string) (*Clients, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	sc, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	vc, err := videointelligence.NewClient(ctx, opts...)
	if err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("creating video intelligence client: %w", err)
	}
	return &Clients{Storage: sc, Video: vc}, nil
}

// Analyzer returns a BucketAnalyzer backed by the clients.
func (c *Clients) Analyzer(opts ...Option) *BucketAnalyzer {
	return NewBucketAnalyzer(&GCSLister{client: c.Storage}, &GCPAnnotator{client: c.Video}, opts...)
}

// Close releases both clients.
func (c *Clients) Close() error {
	return errors.Join(c.Video.Close(), c.Storage.Close())
}

// ConvertResults flattens one video's results into annotation rows.
//
// Label rows are produced per (category, segment); a label without
// categories gets one empty category. Explicit frames become point rows
// followed by a per-video mean-confidence row. Shots carry no confidence.
func ConvertResults(videoID string, res *videointelligencepb.VideoAnnotationResults) video.Analysis {
	var out video.Analysis

	for _, label := range res.GetSegmentLabelAnnotations() {
		categories := []string{""}
		if ce := label.GetCategoryEntities(); len(ce) > 0 {
			categories = categories[:0]
			for _, c := range ce {
				categories = append(categories, c.GetDescription())
			}
		}
		for _, category := range categories {
			for _, seg := range label.GetSegments() {
				out.Labels = append(out.Labels, video.Annotation{
					VideoID:    videoID,
					Label:      label.GetEntity().GetDescription(),
					Category:   category,
					Start:      seconds(seg.GetSegment().GetStartTimeOffset()),
					End:        seconds(seg.GetSegment().GetEndTimeOffset()),
					Confidence: video.Float(float64(seg.GetConfidence())),
					Kind:       video.KindLabel,
				})
			}
		}
	}

	var sum float64
	var scored int
	for _, frame := range res.GetExplicitAnnotation().GetFrames() {
		at := seconds(frame.GetTimeOffset())
		conf := LikelihoodConfidence(frame.GetPornographyLikelihood())
		if conf != nil {
			sum += *conf
			scored++
		}
		out.Explicit = append(out.Explicit, video.Annotation{
			VideoID:    videoID,
			Label:      video.ExplicitLabel,
			Category:   video.NoCategory,
			Start:      at,
			End:        at,
			Confidence: conf,
			Kind:       video.KindExplicit,
		})
	}
	if scored > 0 {
		out.Explicit = append(out.Explicit, video.Annotation{
			VideoID:    videoID,
			Label:      video.MeanConfidence,
			Category:   video.NoCategory,
			Confidence: video.Float(sum / float64(scored)),
			Kind:       video.KindExplicit,
		})
	}

	for _, shot := range res.GetShotAnnotations() {
		out.Shots = append(out.Shots, video.Annotation{
			VideoID:  videoID,
			Label:    video.ShotLabel,
			Category: video.NoCategory,
			Start:    seconds(shot.GetStartTimeOffset()),
			End:      seconds(shot.GetEndTimeOffset()),
			Kind:     video.KindShot,
		})
	}

	return out
}

// LikelihoodConfidence maps VERY_UNLIKELY..VERY_LIKELY onto 0..1.
// An unspecified likelihood has no confidence.
func LikelihoodConfidence(l videointelligencepb.Likelihood) *float64 {
	if l <= videointelligencepb.Likelihood_LIKELIHOOD_UNSPECIFIED || l > videointelligencepb.Likelihood_VERY_LIKELY {
		return nil
	}
	return video.Float(float64(l-videointelligencepb.Likelihood_VERY_UNLIKELY) / 4)
}

func seconds(d *durationpb.Duration) *float64 {
	if d == nil {
		return nil
	}
	return video.Float(d.AsDuration().Seconds())
}
