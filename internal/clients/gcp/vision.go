package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/microlearn-backend/internal/platform/ctxutil"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
)

const (
	maxCaptionLabels  = 4
	minLabelScore     = 0.5
	maxEmbeddedText   = 200
	visionCallTimeout = 60 * time.Second
)

type Vision interface {
	CaptionImageBytes(ctx context.Context, img []byte) (string, error)
	Close() error
}

type visionService struct {
	log        *logger.Logger
	client     *vision.ImageAnnotatorClient
	maxRetries int
}

func NewVision(log *logger.Logger) (Vision, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Vision")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()

	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	return &visionService{
		log:        slog,
		client:     c,
		maxRetries: 4,
	}, nil
}

func (s *visionService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// CaptionImageBytes describes an image in one sentence by fusing detected
// labels with any embedded text. Returns "" when the API sees nothing.
func (s *visionService) CaptionImageBytes(ctx context.Context, img []byte) (string, error) {
	if len(img) == 0 {
		return "", nil
	}

	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, visionCallTimeout)
	defer cancel()

	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: img},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: 10},
			{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
		},
	}
	br := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{req}}

	resp, err := s.annotateWithRetry(ctx, br)
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	labels := captionLabels(r0.LabelAnnotations)
	text := ""
	if fta := r0.FullTextAnnotation; fta != nil {
		text = collapseWhitespace(fta.Text)
	}
	return buildCaption(labels, text), nil
}

func (s *visionService) annotateWithRetry(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
	backoff := 750 * time.Millisecond
	var last error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := s.client.BatchAnnotateImages(ctx, req)
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == s.maxRetries {
			break
		}
		s.log.Warn("vision annotate transient failure, retrying", "attempt", attempt+1, "code", code.String(), "error", err)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, last
}

func captionLabels(anns []*visionpb.EntityAnnotation) []string {
	labels := []string{}
	for _, a := range anns {
		if a == nil || a.Score < minLabelScore {
			continue
		}
		desc := strings.ToLower(strings.TrimSpace(a.Description))
		if desc == "" {
			continue
		}
		labels = append(labels, desc)
		if len(labels) == maxCaptionLabels {
			break
		}
	}
	return labels
}

// buildCaption turns label and text annotations into a single sentence, e.g.
// "An image featuring diagram, text and font. The image contains the text: ...".
func buildCaption(labels []string, text string) string {
	var b strings.Builder

	switch len(labels) {
	case 0:
	case 1:
		b.WriteString("An image of " + labels[0] + ".")
	default:
		b.WriteString("An image featuring ")
		b.WriteString(strings.Join(labels[:len(labels)-1], ", "))
		b.WriteString(" and " + labels[len(labels)-1] + ".")
	}

	if text != "" {
		if len(text) > maxEmbeddedText {
			text = strings.TrimSpace(text[:maxEmbeddedText]) + "..."
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(`The image contains the text: "` + text + `".`)
	}

	return strings.TrimSpace(b.String())
}
