package app

import (
	"fmt"

	"github.com/yungbote/microlearn-backend/internal/platform/logger"
	"github.com/yungbote/microlearn-backend/internal/services"
	"github.com/yungbote/microlearn-backend/internal/store"
)

type Services struct {
	Transcode services.TranscodeService
	Synthesis services.SynthesisService
	Progress  services.ProgressService
	Reshape   services.ReshapeService
	Responder services.ResponderService
}

func wireServices(log *logger.Logger, clients Clients, sessions *store.SessionStore) (Services, error) {
	log.Info("Wiring services...")

	transcode, err := services.NewTranscodeService(log, clients.GcpSpeech, clients.GcpVision)
	if err != nil {
		return Services{}, fmt.Errorf("init transcode service: %w", err)
	}

	synthesis, err := services.NewSynthesisService(log, clients.Openai)
	if err != nil {
		return Services{}, fmt.Errorf("init synthesis service: %w", err)
	}

	progress, err := services.NewProgressService(log, sessions)
	if err != nil {
		return Services{}, fmt.Errorf("init progress service: %w", err)
	}

	reshape, err := services.NewReshapeService(log, progress, nil)
	if err != nil {
		return Services{}, fmt.Errorf("init reshape service: %w", err)
	}

	responder, err := services.NewResponderService(log, nil)
	if err != nil {
		return Services{}, fmt.Errorf("init responder service: %w", err)
	}

	return Services{
		Transcode: transcode,
		Synthesis: synthesis,
		Progress:  progress,
		Reshape:   reshape,
		Responder: responder,
	}, nil
}
