package services

import (
	"fmt"
	"math/rand"

	"github.com/yungbote/microlearn-backend/internal/domain"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
)

const (
	maxReshapedQuestions  = 3
	maxReshapedFlashcards = 10
)

// ProcessInputs carries the normalized modality texts echoed back to the
// caller alongside the generated content.
type ProcessInputs struct {
	AudioTranscript string
	Caption         string
	Text            string
	Prompt          string
}

// ReshapeService flattens structured learning content into the numbered-field
// response shape the frontend consumes, and attaches a fresh progress record.
type ReshapeService interface {
	BuildProcessResponse(content domain.LearningContent, in ProcessInputs) map[string]any
}

type reshapeService struct {
	log      *logger.Logger
	progress ProgressService
	shuffle  func(n int, swap func(i, j int))
}

// NewReshapeService falls back to math/rand's global Shuffle when shuffle is
// nil. Tests inject a seeded permutation source.
func NewReshapeService(log *logger.Logger, progress ProgressService, shuffle func(int, func(int, int))) (ReshapeService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if progress == nil {
		return nil, fmt.Errorf("progress service required")
	}
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	return &reshapeService{
		log:      log.With("service", "ReshapeService"),
		progress: progress,
		shuffle:  shuffle,
	}, nil
}

func (r *reshapeService) BuildProcessResponse(content domain.LearningContent, in ProcessInputs) map[string]any {
	out := map[string]any{}
	if in.AudioTranscript != "" {
		out["input_audio"] = in.AudioTranscript
	}
	if in.Caption != "" {
		out["caption"] = in.Caption
	}
	if in.Text != "" {
		out["input_text"] = in.Text
	}
	if in.Prompt != "" {
		out["input_prompt"] = in.Prompt
	}

	for i, q := range content.Questions {
		if i == maxReshapedQuestions {
			break
		}
		n := i + 1
		out[fmt.Sprintf("question%d", n)] = q.Question
		out[fmt.Sprintf("answer%d", n)] = q.Answer
		bloom := q.BloomLevel
		if bloom == "" {
			bloom = domain.BloomRemember
		}
		out[fmt.Sprintf("bloom_level%d", n)] = bloom
		out[fmt.Sprintf("explanation%d", n)] = q.Explanation

		options, correct := r.buildOptions(q, n)
		out[fmt.Sprintf("options%d", n)] = options
		out[fmt.Sprintf("correct_option%d", n)] = correct
	}

	out["summary"] = content.Summary
	out["learning_objectives"] = orEmptySlice(content.LearningObjectives)
	out["key_concepts"] = orEmptySlice(content.KeyConcepts)

	flashcards := content.Flashcards
	if len(flashcards) > maxReshapedFlashcards {
		flashcards = flashcards[:maxReshapedFlashcards]
	}
	if flashcards == nil {
		flashcards = []domain.Flashcard{}
	}
	out["flashcards"] = flashcards

	difficulty := content.DifficultyLevel
	if difficulty == "" {
		difficulty = domain.DifficultyIntermediate
	}
	out["difficulty_level"] = difficulty

	rec := r.progress.CreateSession(1)
	out["progress"] = rec
	r.log.Info("process response built", "session_id", rec.SessionID, "questions", len(content.Questions))

	return out
}

// buildOptions returns the shuffled choice list for one question plus the
// post-shuffle index of the correct answer (first exact match; 0 when the
// answer text is absent from the list).
func (r *reshapeService) buildOptions(q domain.Question, n int) ([]string, int) {
	options := append([]string(nil), q.Options...)
	if len(options) < 2 {
		options = []string{
			q.Answer,
			fmt.Sprintf("Option B for question %d", n),
			fmt.Sprintf("Option C for question %d", n),
			fmt.Sprintf("Option D for question %d", n),
		}
	}

	r.shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	correct := 0
	for idx, opt := range options {
		if opt == q.Answer {
			correct = idx
			break
		}
	}
	return options, correct
}

func orEmptySlice(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
