package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/microlearn-backend/internal/platform/ctxutil"
	"github.com/yungbote/microlearn-backend/internal/platform/envutil"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
)

// Client is the OpenAI API surface used by the rest of the backend.
type Client interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type client struct {
	log         *logger.Logger
	api         *goopenai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewClient reads OPENAI_API_KEY (required), OPENAI_MODEL (default gpt-4o),
// OPENAI_BASE_URL (optional, for OpenAI-compatible endpoints and tests),
// OPENAI_MAX_TOKENS and OPENAI_TEMPERATURE.
func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{
		Timeout: time.Duration(envutil.Int("OPENAI_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	return &client{
		log:         log.With("service", "openai.Client"),
		api:         goopenai.NewClientWithConfig(cfg),
		model:       envutil.String("OPENAI_MODEL", goopenai.GPT4o),
		maxTokens:   envutil.Int("OPENAI_MAX_TOKENS", 2000),
		temperature: float32(envutil.Float("OPENAI_TEMPERATURE", 0.7)),
	}, nil
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	ctx = ctxutil.Default(ctx)

	req := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
