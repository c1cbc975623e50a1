package app

import (
	"github.com/yungbote/microlearn-backend/internal/clients/gcp"
	"github.com/yungbote/microlearn-backend/internal/clients/openai"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
)

type Clients struct {
	Openai    openai.Client
	GcpSpeech gcp.Speech
	GcpVision gcp.Vision
}

// wireClients builds every external client the pipeline can use. A missing
// credential disables that client rather than failing startup: the synthesizer
// falls back to canned content without OpenAI, and requests needing a disabled
// transcoder fail per request.
func wireClients(log *logger.Logger) Clients {
	log.Info("Wiring clients...")

	var clients Clients

	ai, err := openai.NewClient(log)
	if err != nil {
		log.Warn("OpenAI client unavailable, running in fallback mode", "error", err)
	} else {
		clients.Openai = ai
	}

	if !gcp.CredentialsConfigured() {
		log.Warn("GCP credentials not configured, audio and image transcoding disabled")
		return clients
	}

	speech, err := gcp.NewSpeech(log)
	if err != nil {
		log.Warn("Speech client unavailable, audio transcoding disabled", "error", err)
	} else {
		clients.GcpSpeech = speech
	}

	vision, err := gcp.NewVision(log)
	if err != nil {
		log.Warn("Vision client unavailable, image captioning disabled", "error", err)
	} else {
		clients.GcpVision = vision
	}

	return clients
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.GcpSpeech != nil {
		_ = c.GcpSpeech.Close()
	}
	if c.GcpVision != nil {
		_ = c.GcpVision.Close()
	}
}
