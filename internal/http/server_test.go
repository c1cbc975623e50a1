package http

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/microlearn-backend/internal/http/handlers"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewServer(RouterConfig{
		Log:           log,
		HealthHandler: httpH.NewHealthHandler(),
	})
}

func TestServerRunStopsOnContextCancel(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, "127.0.0.1:0")
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run after cancel: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop after context cancel")
	}
}

func TestServerRunReportsListenErrors(t *testing.T) {
	srv := newTestServer(t)

	if err := srv.Run(context.Background(), "256.256.256.256:0"); err == nil {
		t.Fatalf("expected listen error for bad address")
	}
}
