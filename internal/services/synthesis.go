package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/microlearn-backend/internal/clients/openai"
	"github.com/yungbote/microlearn-backend/internal/domain"
	"github.com/yungbote/microlearn-backend/internal/platform/envutil"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
)

const synthesisSystemPrompt = `You are an expert educational content creator specializing in microlearning and Bloom's Taxonomy.

Create comprehensive learning content from the provided text. Respond with a JSON object containing:

{
  "summary": "concise summary of the content",
  "learning_objectives": ["list of 3-4 clear learning objectives"],
  "questions": [
    {
      "question": "question text",
      "answer": "correct answer",
      "bloom_level": "Remember|Understand|Apply",
      "explanation": "brief explanation of why this answer is correct"
    }
  ],
  "flashcards": [
    {
      "front": "question or concept",
      "back": "answer or explanation",
      "category": "key concept|definition|example|application"
    }
  ],
  "key_concepts": ["list of 5-7 key concepts from the content"],
  "difficulty_level": "beginner|intermediate|advanced"
}

Ensure questions follow Bloom's Taxonomy:
- Remember: Recall facts, terms, basic concepts
- Understand: Explain ideas, compare, describe
- Apply: Use information in new situations, solve problems

Make flashcards diverse and useful for learning.`

// SynthesisService asks the language model for structured learning content.
// Synthesize never fails: every degraded path lands on FallbackContent.
type SynthesisService interface {
	Synthesize(ctx context.Context, text string) domain.LearningContent
}

type synthesisService struct {
	log     *logger.Logger
	ai      openai.Client
	timeout time.Duration
}

// NewSynthesisService accepts a nil client; the service then runs in
// fallback mode for the lifetime of the process.
func NewSynthesisService(log *logger.Logger, ai openai.Client) (SynthesisService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &synthesisService{
		log:     log.With("service", "SynthesisService"),
		ai:      ai,
		timeout: time.Duration(envutil.Int("OPENAI_TIMEOUT_SECONDS", 60)) * time.Second,
	}, nil
}

func (s *synthesisService) Synthesize(ctx context.Context, text string) domain.LearningContent {
	if s.ai == nil {
		s.log.Warn("openai client not configured, serving fallback content")
		return FallbackContent()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user := fmt.Sprintf("Here is the educational content:\n\"\"\"\n%s\n\"\"\"\n", text)
	raw, err := s.ai.GenerateText(ctx, synthesisSystemPrompt, user)
	if err != nil {
		s.log.Warn("content generation failed, serving fallback content", "error", err)
		return FallbackContent()
	}

	content, err := ParseLearningContent(raw)
	if err != nil {
		s.log.Warn("unparseable generation output, serving fallback content", "error", err)
		return FallbackContent()
	}
	return content
}
