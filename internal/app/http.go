package app

import (
	httpserver "github.com/yungbote/microlearn-backend/internal/http"
	httpH "github.com/yungbote/microlearn-backend/internal/http/handlers"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Process     *httpH.ProcessHandler
	Progress    *httpH.ProgressHandler
	Study       *httpH.StudyHandler
	Chat        *httpH.ChatHandler
	Preferences *httpH.PreferencesHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(),
		Process:     httpH.NewProcessHandler(log, services.Transcode, services.Synthesis, services.Reshape),
		Progress:    httpH.NewProgressHandler(log, services.Progress),
		Study:       httpH.NewStudyHandler(log, services.Progress),
		Chat:        httpH.NewChatHandler(log, services.Responder),
		Preferences: httpH.NewPreferencesHandler(log, services.Progress),
	}
}

func wireServer(log *logger.Logger, handlers Handlers) *httpserver.Server {
	log.Info("Setting up router...")
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:                log,
		HealthHandler:      handlers.Health,
		ProcessHandler:     handlers.Process,
		ProgressHandler:    handlers.Progress,
		StudyHandler:       handlers.Study,
		ChatHandler:        handlers.Chat,
		PreferencesHandler: handlers.Preferences,
	})
}
