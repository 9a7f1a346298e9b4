// Package vision suggests descriptive tags for a product photo using the
// Cloud Vision label detector. Suggestions are advisory; any failure here
// yields an empty list rather than blocking the photo upload.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	vision "google.golang.org/api/vision/v1"

	"kalakarigar/internal/infra"
)

const thumbEdge = 1024

// Annotator is the slice of the Vision API the suggester uses.
type Annotator interface {
	Annotate(ctx context.Context, req *vision.BatchAnnotateImagesRequest) (*vision.BatchAnnotateImagesResponse, error)
}

// APIAnnotator calls the real Cloud Vision service.
type APIAnnotator struct {
	Service *vision.Service
}

func (a *APIAnnotator) Annotate(ctx context.Context, req *vision.BatchAnnotateImagesRequest) (*vision.BatchAnnotateImagesResponse, error) {
	return a.Service.Images.Annotate(req).Context(ctx).Do()
}

// Tag is one suggested label with the detector's confidence.
type Tag struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SuggesterOptions configures a Suggester.
type SuggesterOptions struct {
	Annotator  Annotator
	MaxResults int
	MinScore   float64
	Logger     infra.Logger
}

// Suggester produces tag suggestions from product photos.
type Suggester struct {
	annotator  Annotator
	maxResults int
	minScore   float64
	log        infra.Logger
}

func NewSuggester(opts SuggesterOptions) *Suggester {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = 0.6
	}
	return &Suggester{
		annotator:  opts.Annotator,
		maxResults: maxResults,
		minScore:   minScore,
		log:        opts.Logger,
	}
}

// Suggest returns up to maxResults labels scoring at or above minScore,
// highest score first. It never returns an error; failures log and yield nil.
func (s *Suggester) Suggest(ctx context.Context, imageBytes []byte) []Tag {
	if s.annotator == nil || len(imageBytes) == 0 {
		return nil
	}

	payload := downscaleForLabeling(imageBytes)

	resp, err := s.annotator.Annotate(ctx, &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(payload)},
			Features: []*vision.Feature{{
				Type:       "LABEL_DETECTION",
				MaxResults: int64(s.maxResults * 2),
			}},
		}},
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("vision label detection failed")
		return nil
	}
	if len(resp.Responses) == 0 {
		return nil
	}
	first := resp.Responses[0]
	if first.Error != nil {
		s.log.Warn().Str("status", first.Error.Message).Msg("vision annotation rejected")
		return nil
	}

	var tags []Tag
	for _, ann := range first.LabelAnnotations {
		label := strings.TrimSpace(ann.Description)
		if label == "" || ann.Score < s.minScore {
			continue
		}
		tags = append(tags, Tag{Label: label, Score: ann.Score})
	}
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Score > tags[j].Score })
	if len(tags) > s.maxResults {
		tags = tags[:s.maxResults]
	}
	return tags
}

// downscaleForLabeling shrinks oversized photos before transmission; label
// detection does not need full resolution. Undecodable input is sent as-is
// and left for the API to reject.
func downscaleForLabeling(imageBytes []byte) []byte {
	src, err := imaging.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return imageBytes
	}
	bounds := src.Bounds()
	if bounds.Dx() <= thumbEdge && bounds.Dy() <= thumbEdge {
		return imageBytes
	}
	thumb := imaging.Fit(src, thumbEdge, thumbEdge, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return imageBytes
	}
	return buf.Bytes()
}
