package gcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/microlearn-backend/internal/platform/ctxutil"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
)

// inlineRecognizeLimit is the largest payload sent through synchronous
// Recognize; anything bigger goes through LongRunningRecognize.
const inlineRecognizeLimit = 1 << 20

type Speech interface {
	TranscribeAudioBytes(ctx context.Context, audio []byte, filename string) (string, error)
	Close() error
}

type speechService struct {
	log        *logger.Logger
	client     *speech.Client
	maxRetries int
}

func NewSpeech(log *logger.Logger) (Speech, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Speech")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()

	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}

	return &speechService{
		log:        slog,
		client:     c,
		maxRetries: 4,
	}, nil
}

func (s *speechService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// TranscribeAudioBytes converts recorded speech to text. The encoding is
// inferred from the filename extension; unknown extensions are sent
// unspecified and the API sniffs the container itself.
func (s *speechService) TranscribeAudioBytes(ctx context.Context, audio []byte, filename string) (string, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	if len(audio) == 0 {
		return "", nil
	}

	cfg := &speechpb.RecognitionConfig{
		LanguageCode:               "en-US",
		EnableAutomaticPunctuation: true,
		Encoding:                   inferSpeechEncoding(filename),
	}
	content := &speechpb.RecognitionAudio{
		AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
	}

	var results []*speechpb.SpeechRecognitionResult
	var err error
	if len(audio) <= inlineRecognizeLimit {
		results, err = s.recognizeWithRetry(ctx, func() ([]*speechpb.SpeechRecognitionResult, error) {
			resp, rerr := s.client.Recognize(ctx, &speechpb.RecognizeRequest{Config: cfg, Audio: content})
			if rerr != nil {
				return nil, rerr
			}
			return resp.GetResults(), nil
		})
	} else {
		results, err = s.recognizeWithRetry(ctx, func() ([]*speechpb.SpeechRecognitionResult, error) {
			op, rerr := s.client.LongRunningRecognize(ctx, &speechpb.LongRunningRecognizeRequest{Config: cfg, Audio: content})
			if rerr != nil {
				return nil, rerr
			}
			resp, rerr := op.Wait(ctx)
			if rerr != nil {
				return nil, rerr
			}
			return resp.GetResults(), nil
		})
	}
	if err != nil {
		return "", fmt.Errorf("speech recognize: %w", err)
	}

	return joinTranscripts(results), nil
}

func inferSpeechEncoding(filename string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".mp3":
		return speechpb.RecognitionConfig_MP3
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func joinTranscripts(results []*speechpb.SpeechRecognitionResult) string {
	var full strings.Builder
	for _, r := range results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		txt := strings.TrimSpace(r.Alternatives[0].Transcript)
		if txt == "" {
			continue
		}
		if full.Len() > 0 {
			full.WriteString(" ")
		}
		full.WriteString(txt)
	}
	return strings.TrimSpace(full.String())
}

func (s *speechService) recognizeWithRetry(ctx context.Context, fn func() ([]*speechpb.SpeechRecognitionResult, error)) ([]*speechpb.SpeechRecognitionResult, error) {
	backoff := 750 * time.Millisecond
	var last error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		results, err := fn()
		if err == nil {
			return results, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == s.maxRetries {
			break
		}
		s.log.Warn("speech recognize transient failure, retrying", "attempt", attempt+1, "code", code.String(), "error", err)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, last
}
