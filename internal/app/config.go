package app

import (
	"github.com/joho/godotenv"

	"github.com/yungbote/microlearn-backend/internal/platform/envutil"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
)

// Version is reported by /health and attached to traces.
const Version = "2.0.0"

type Config struct {
	Port        string
	Environment string
	Version     string
}

// LoadConfig reads .env when present and resolves the process configuration.
// Every knob has a default so the service boots on a bare environment.
func LoadConfig(log *logger.Logger) Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", "error", err)
	}
	return Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     Version,
	}
}
