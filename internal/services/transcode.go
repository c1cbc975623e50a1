package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"

	"github.com/yungbote/microlearn-backend/internal/clients/gcp"
	pkgerrors "github.com/yungbote/microlearn-backend/internal/pkg/errors"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
)

// captionMaxEdge bounds the long edge of images sent to the vision API.
const captionMaxEdge = 1024

// TranscodeService turns uploaded media files into plain text.
type TranscodeService interface {
	TranscribeAudio(ctx context.Context, path string) (string, error)
	CaptionImage(ctx context.Context, path string) (string, error)
}

type transcodeService struct {
	log    *logger.Logger
	speech gcp.Speech
	vision gcp.Vision
}

// NewTranscodeService accepts nil clients; the corresponding operation then
// fails at call time instead of disabling startup.
func NewTranscodeService(log *logger.Logger, speech gcp.Speech, vision gcp.Vision) (TranscodeService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &transcodeService{
		log:    log.With("service", "TranscodeService"),
		speech: speech,
		vision: vision,
	}, nil
}

func (t *transcodeService) TranscribeAudio(ctx context.Context, path string) (string, error) {
	if t.speech == nil {
		return "", fmt.Errorf("speech client not configured")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}

	t.log.Info("transcribing audio", "file", filepath.Base(path), "bytes", len(raw))
	text, err := t.speech.TranscribeAudioBytes(ctx, raw, path)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("transcribe %s: %w", filepath.Base(path), pkgerrors.ErrEmptyResult)
	}
	return text, nil
}

func (t *transcodeService) CaptionImage(ctx context.Context, path string) (string, error) {
	if t.vision == nil {
		return "", fmt.Errorf("vision client not configured")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	prepped, err := prepareImageForAnnotation(raw)
	if err != nil {
		return "", err
	}

	t.log.Info("captioning image", "file", filepath.Base(path), "bytes", len(prepped))
	caption, err := t.vision.CaptionImageBytes(ctx, prepped)
	if err != nil {
		return "", err
	}
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return "", fmt.Errorf("caption %s: %w", filepath.Base(path), pkgerrors.ErrEmptyResult)
	}
	return caption, nil
}

// prepareImageForAnnotation flattens any decodable image to RGBA, bounds the
// long edge at captionMaxEdge, and re-encodes as PNG.
func prepareImageForAnnotation(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if w > captionMaxEdge || h > captionMaxEdge {
		if w >= h {
			dw = captionMaxEdge
			dh = h * captionMaxEdge / w
		} else {
			dh = captionMaxEdge
			dw = w * captionMaxEdge / h
		}
		if dw < 1 {
			dw = 1
		}
		if dh < 1 {
			dh = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	if dw == w && dh == h {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}
