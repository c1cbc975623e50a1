package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/microlearn-backend/internal/http/response"
	pkgerrors "github.com/yungbote/microlearn-backend/internal/pkg/errors"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
	"github.com/yungbote/microlearn-backend/internal/services"
)

type ProcessHandler struct {
	log       *logger.Logger
	transcode services.TranscodeService
	synthesis services.SynthesisService
	reshape   services.ReshapeService
}

func NewProcessHandler(
	log *logger.Logger,
	transcode services.TranscodeService,
	synthesis services.SynthesisService,
	reshape services.ReshapeService,
) *ProcessHandler {
	return &ProcessHandler{
		log:       log.With("handler", "ProcessHandler"),
		transcode: transcode,
		synthesis: synthesis,
		reshape:   reshape,
	}
}

// POST /process
func (h *ProcessHandler) Process(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}

	prompt := strings.TrimSpace(c.PostForm("prompt"))

	textInput, err := h.readTextField(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_text_file", err)
		return
	}

	audioPath, audioCleanup, err := h.spoolUpload(c, "audio")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_audio_file", err)
		return
	}
	defer audioCleanup()

	imagePath, imageCleanup, err := h.spoolUpload(c, "image")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_image_file", err)
		return
	}
	defer imageCleanup()

	if audioPath == "" && imagePath == "" && textInput == "" && prompt == "" {
		response.RespondAppError(c, fmt.Errorf("supply at least one of audio, image, text or prompt: %w", pkgerrors.ErrNoUsableInput))
		return
	}

	ctx := c.Request.Context()
	var transcript, caption string
	g, gctx := errgroup.WithContext(ctx)
	if audioPath != "" {
		g.Go(func() error {
			out, err := h.transcode.TranscribeAudio(gctx, audioPath)
			if err != nil {
				return err
			}
			transcript = out
			return nil
		})
	}
	if imagePath != "" {
		g.Go(func() error {
			out, err := h.transcode.CaptionImage(gctx, imagePath)
			if err != nil {
				return err
			}
			caption = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.log.Error("modality transcode failed", "error", err)
		response.RespondAppError(c, err)
		return
	}

	combined := combineInputs(transcript, caption, textInput, prompt)
	if combined == "" {
		response.RespondAppError(c, fmt.Errorf("all supplied inputs were empty: %w", pkgerrors.ErrNoUsableInput))
		return
	}

	content := h.synthesis.Synthesize(ctx, combined)
	out := h.reshape.BuildProcessResponse(content, services.ProcessInputs{
		AudioTranscript: transcript,
		Caption:         caption,
		Text:            textInput,
		Prompt:          prompt,
	})
	response.RespondOK(c, out)
}

// readTextField reads the optional text upload into a string.
func (h *ProcessHandler) readTextField(c *gin.Context) (string, error) {
	fh, err := c.FormFile("text")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// spoolUpload writes the named upload to a temp file so the transcoders can
// work from a path. The returned cleanup is always safe to call.
func (h *ProcessHandler) spoolUpload(c *gin.Context, field string) (string, func(), error) {
	noop := func() {}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", noop, nil
		}
		return "", noop, err
	}
	tmp, err := os.CreateTemp("", "microlearn-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return "", noop, err
	}
	path := tmp.Name()
	if err := copyUpload(fh, tmp); err != nil {
		_ = os.Remove(path)
		return "", noop, err
	}
	h.log.Debug("spooled upload", "field", field, "filename", fh.Filename, "bytes", fh.Size)
	return path, func() { _ = os.Remove(path) }, nil
}

func copyUpload(fh *multipart.FileHeader, dst *os.File) error {
	defer dst.Close()
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}

// combineInputs joins the text yielded by every modality into the single blob
// handed to the synthesizer. Empty modalities are skipped.
func combineInputs(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "\n")
}
