package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/microlearn-backend/internal/clients/gcp"
	pkgerrors "github.com/yungbote/microlearn-backend/internal/pkg/errors"
)

type fakeSpeech struct {
	reply    string
	err      error
	gotAudio []byte
	gotName  string
	calls    int
}

func (f *fakeSpeech) TranscribeAudioBytes(_ context.Context, audio []byte, filename string) (string, error) {
	f.calls++
	f.gotAudio = append([]byte(nil), audio...)
	f.gotName = filename
	return f.reply, f.err
}

func (f *fakeSpeech) Close() error { return nil }

type fakeVision struct {
	reply  string
	err    error
	gotImg []byte
	calls  int
}

func (f *fakeVision) CaptionImageBytes(_ context.Context, img []byte) (string, error) {
	f.calls++
	f.gotImg = append([]byte(nil), img...)
	return f.reply, f.err
}

func (f *fakeVision) Close() error { return nil }

func newTranscode(t *testing.T, sp gcp.Speech, vi gcp.Vision) TranscodeService {
	t.Helper()
	svc, err := NewTranscodeService(testLogger(t), sp, vi)
	if err != nil {
		t.Fatalf("NewTranscodeService: %v", err)
	}
	return svc
}

func writeTempImage(t *testing.T, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 251), G: uint8(y % 251), B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	var err error
	switch filepath.Ext(name) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(&buf, img, nil)
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		t.Fatalf("encode image: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func TestTranscribeAudioPassesBytesAndFilename(t *testing.T) {
	t.Parallel()

	audio := []byte("RIFF-not-really-audio-but-bytes-nonetheless")
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	sp := &fakeSpeech{reply: "  hello from the lecture  "}
	svc := newTranscode(t, sp, nil)

	got, err := svc.TranscribeAudio(context.Background(), path)
	if err != nil {
		t.Fatalf("TranscribeAudio: %v", err)
	}
	if got != "hello from the lecture" {
		t.Fatalf("transcript: got=%q", got)
	}
	if sp.calls != 1 {
		t.Fatalf("speech calls: got=%d want=1", sp.calls)
	}
	if !bytes.Equal(sp.gotAudio, audio) {
		t.Fatalf("speech received %d bytes, want %d", len(sp.gotAudio), len(audio))
	}
	if !strings.HasSuffix(sp.gotName, "clip.wav") {
		t.Fatalf("speech filename: got=%q", sp.gotName)
	}
}

func TestTranscribeAudioEmptyTranscript(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "silence.mp3")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	svc := newTranscode(t, &fakeSpeech{reply: "   "}, nil)
	if _, err := svc.TranscribeAudio(context.Background(), path); !errors.Is(err, pkgerrors.ErrEmptyResult) {
		t.Fatalf("empty transcript error: got=%v", err)
	}
}

func TestTranscribeAudioClientError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clip.ogg")
	if err := os.WriteFile(path, []byte{1}, 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	boom := errors.New("rpc unavailable")
	svc := newTranscode(t, &fakeSpeech{err: boom}, nil)
	if _, err := svc.TranscribeAudio(context.Background(), path); !errors.Is(err, boom) {
		t.Fatalf("client error not surfaced: got=%v", err)
	}
}

func TestTranscribeAudioWithoutClient(t *testing.T) {
	t.Parallel()

	svc := newTranscode(t, nil, nil)
	_, err := svc.TranscribeAudio(context.Background(), "whatever.wav")
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("nil client error: got=%v", err)
	}
}

func TestTranscribeAudioMissingFile(t *testing.T) {
	t.Parallel()

	svc := newTranscode(t, &fakeSpeech{reply: "x"}, nil)
	_, err := svc.TranscribeAudio(context.Background(), filepath.Join(t.TempDir(), "gone.wav"))
	if err == nil || !strings.Contains(err.Error(), "read audio") {
		t.Fatalf("missing file error: got=%v", err)
	}
}

func TestCaptionImageDownscalesLargeImages(t *testing.T) {
	t.Parallel()

	path := writeTempImage(t, "slide.png", 2048, 512)
	vi := &fakeVision{reply: "An image of a diagram."}
	svc := newTranscode(t, nil, vi)

	got, err := svc.CaptionImage(context.Background(), path)
	if err != nil {
		t.Fatalf("CaptionImage: %v", err)
	}
	if got != "An image of a diagram." {
		t.Fatalf("caption: got=%q", got)
	}

	sent, format, err := image.Decode(bytes.NewReader(vi.gotImg))
	if err != nil {
		t.Fatalf("decode uploaded image: %v", err)
	}
	if format != "png" {
		t.Fatalf("upload format: got=%q want=%q", format, "png")
	}
	b := sent.Bounds()
	if b.Dx() != 1024 || b.Dy() != 256 {
		t.Fatalf("upload size: got=%dx%d want=1024x256", b.Dx(), b.Dy())
	}
}

func TestCaptionImageKeepsSmallImages(t *testing.T) {
	t.Parallel()

	path := writeTempImage(t, "icon.png", 32, 16)
	vi := &fakeVision{reply: "An image of an icon."}
	svc := newTranscode(t, nil, vi)

	if _, err := svc.CaptionImage(context.Background(), path); err != nil {
		t.Fatalf("CaptionImage: %v", err)
	}
	sent, _, err := image.Decode(bytes.NewReader(vi.gotImg))
	if err != nil {
		t.Fatalf("decode uploaded image: %v", err)
	}
	b := sent.Bounds()
	if b.Dx() != 32 || b.Dy() != 16 {
		t.Fatalf("upload size: got=%dx%d want=32x16", b.Dx(), b.Dy())
	}
}

func TestCaptionImageConvertsJPEGToPNG(t *testing.T) {
	t.Parallel()

	path := writeTempImage(t, "photo.jpg", 64, 48)
	vi := &fakeVision{reply: "An image of a photo."}
	svc := newTranscode(t, nil, vi)

	if _, err := svc.CaptionImage(context.Background(), path); err != nil {
		t.Fatalf("CaptionImage: %v", err)
	}
	_, format, err := image.Decode(bytes.NewReader(vi.gotImg))
	if err != nil {
		t.Fatalf("decode uploaded image: %v", err)
	}
	if format != "png" {
		t.Fatalf("upload format: got=%q want=%q", format, "png")
	}
}

func TestCaptionImageEmptyCaption(t *testing.T) {
	t.Parallel()

	path := writeTempImage(t, "blank.png", 8, 8)
	svc := newTranscode(t, nil, &fakeVision{reply: ""})
	if _, err := svc.CaptionImage(context.Background(), path); !errors.Is(err, pkgerrors.ErrEmptyResult) {
		t.Fatalf("empty caption error: got=%v", err)
	}
}

func TestCaptionImageWithoutClient(t *testing.T) {
	t.Parallel()

	svc := newTranscode(t, nil, nil)
	_, err := svc.CaptionImage(context.Background(), "whatever.png")
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("nil client error: got=%v", err)
	}
}

func TestCaptionImageRejectsUndecodableFiles(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("this is not an image"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	svc := newTranscode(t, nil, &fakeVision{reply: "x"})
	_, err := svc.CaptionImage(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "decode image") {
		t.Fatalf("decode error: got=%v", err)
	}
}
