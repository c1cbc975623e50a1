package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	httpserver "github.com/yungbote/microlearn-backend/internal/http"
	"github.com/yungbote/microlearn-backend/internal/observability"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
	"github.com/yungbote/microlearn-backend/internal/store"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Sessions *store.SessionStore
	Services Services
	Router   *gin.Engine

	server      *httpserver.Server
	stopTracing func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	stopTracing := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "microlearn-backend",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	clients := wireClients(log)

	log.Info("Setting up session store...")
	sessions := store.NewSessionStore(log)

	serviceset, err := wireServices(log, clients, sessions)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset)
	server := wireServer(log, handlerset)

	return &App{
		Log:         log,
		Cfg:         cfg,
		Clients:     clients,
		Sessions:    sessions,
		Services:    serviceset,
		Router:      server.Engine,
		server:      server,
		stopTracing: stopTracing,
	}, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "addr", addr)
	return a.server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.stopTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.stopTracing(ctx)
		cancel()
		a.stopTracing = nil
	}
	a.Clients.Close()
	if a.Log != nil {
		a.Log.Sync()
	}
}
