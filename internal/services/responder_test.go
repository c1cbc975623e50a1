package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newResponder(t *testing.T, pick func(int) int) ResponderService {
	t.Helper()
	svc, err := NewResponderService(testLogger(t), pick)
	if err != nil {
		t.Fatalf("NewResponderService: %v", err)
	}
	return svc
}

func floatPtr(f float64) *float64 { return &f }

func TestRespondContextBranches(t *testing.T) {
	cases := []struct {
		name    string
		message string
		cc      ChatContext
		want    string
	}{
		{
			name:    "quiz with progress",
			message: "How am I doing on the quiz?",
			cc:      ChatContext{HasQuiz: true, CurrentProgress: floatPtr(85)},
			want:    "You've completed 85% of the quiz so far. Keep going, and review the explanation after each answer!",
		},
		{
			name:    "quiz without progress",
			message: "any tips for the quiz?",
			cc:      ChatContext{HasQuiz: true},
			want:    "Quizzes are a great way to reinforce learning. Take your time with each question and read the explanations afterward.",
		},
		{
			name:    "summary",
			message: "can you explain this content?",
			cc:      ChatContext{Summary: "Photosynthesis overview"},
			want:    "Here's what this content covers: Photosynthesis overview",
		},
		{
			name:    "flashcards",
			message: "how should I use the flashcards?",
			cc:      ChatContext{HasFlashcards: true},
			want:    "Flashcards work best with spaced repetition. Review the ones you miss more often, and say the answer out loud before flipping.",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc := newResponder(t, func(int) int { return 0 })
			if got := svc.Respond(tc.message, tc.cc, "s1"); got != tc.want {
				t.Fatalf("reply:\ngot=%q\nwant=%q", got, tc.want)
			}
		})
	}
}

func TestRespondTruncatesLongSummaries(t *testing.T) {
	svc := newResponder(t, func(int) int { return 0 })

	long := strings.Repeat("photosynthesis ", 20) // 300 chars
	got := svc.Respond("give me a summary", ChatContext{Summary: long}, "s1")

	if !strings.HasSuffix(got, "...") {
		t.Fatalf("long summary not truncated: %q", got)
	}
	if len(got) > len("Here's what this content covers: ")+200+3 {
		t.Fatalf("reply too long: %d chars", len(got))
	}
}

func TestRespondKeywordBranches(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "help keywords win over later rules",
			message: "how do I study for this?",
			want:    "I'm here to help you learn! Ask me about the quiz, the summary, or your study plan, and I'll point you in the right direction.",
		},
		{
			name:    "study keywords",
			message: "I want to practice more",
			want:    "Short, focused study sessions beat marathons. Try a 25-30 minute block on this material, then check yourself with the quiz.",
		},
		{
			name:    "struggle keywords",
			message: "this is really difficult for me",
			want:    "It's normal for new material to feel hard at first. Break it into smaller pieces and revisit the flashcards for the parts that aren't sticking.",
		},
		{
			name:    "motivation stem matches variants",
			message: "I need some motivation today",
			want:    "Setting small, concrete goals keeps momentum going. Finish one module or a handful of flashcards today and build your streak.",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc := newResponder(t, func(int) int { return 0 })
			if got := svc.Respond(tc.message, ChatContext{}, "s1"); got != tc.want {
				t.Fatalf("reply:\ngot=%q\nwant=%q", got, tc.want)
			}
		})
	}
}

func TestRespondContextRequiresBothFlagAndKeyword(t *testing.T) {
	svc := newResponder(t, func(int) int { return 0 })

	// Quiz keyword without quiz context falls through to the keyword rules
	// ("question" carries no keyword-rule match, so this lands on a default).
	got := svc.Respond("question one please", ChatContext{}, "s1")
	if strings.Contains(got, "Quizzes are a great way") {
		t.Fatalf("context rule fired without context: %q", got)
	}
}

func TestRespondDefaultSelection(t *testing.T) {
	for idx := 0; idx < 3; idx++ {
		idx := idx
		svc := newResponder(t, func(n int) int { return idx % n })
		got := svc.Respond("zzz qqq", ChatContext{}, "s1")

		svcDefaults := []string{
			"That's an interesting question! Try working through the quiz or flashcards and see what you discover.",
			"Keep up the great work! Regular review is the surest path to mastery.",
			"I'm here whenever you need study guidance, a quiz recap, or a motivation boost.",
		}
		if got != svcDefaults[idx] {
			t.Fatalf("default %d:\ngot=%q\nwant=%q", idx, got, svcDefaults[idx])
		}
	}
}

func TestResponderRulesEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	custom := `
responder: chat_responder
version: 2
keyword_rules:
  - keywords: [ping]
    reply: "pong"
defaults:
  - "custom default"
`
	if err := os.WriteFile(path, []byte(custom), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	t.Setenv("RESPONDER_RULES_YAML", path)

	svc := newResponder(t, func(int) int { return 0 })
	if got := svc.Respond("ping", ChatContext{}, "s1"); got != "pong" {
		t.Fatalf("custom rule reply: got=%q want=%q", got, "pong")
	}
	if got := svc.Respond("unmatched", ChatContext{}, "s1"); got != "custom default" {
		t.Fatalf("custom default: got=%q want=%q", got, "custom default")
	}
}

func TestResponderRulesInvalidFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("responder: wrong_name\n"), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	t.Setenv("RESPONDER_RULES_YAML", path)

	svc := newResponder(t, func(int) int { return 0 })
	got := svc.Respond("any message at all", ChatContext{}, "s1")
	if got != fallbackResponderRules.Defaults[0] {
		t.Fatalf("fallback default: got=%q want=%q", got, fallbackResponderRules.Defaults[0])
	}
}
