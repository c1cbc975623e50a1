package services

import (
	"embed"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/microlearn-backend/internal/platform/logger"
)

const responderRulesEnv = "RESPONDER_RULES_YAML"

//go:embed responder_rules.yaml
var responderRulesFS embed.FS

// fallback rule table used when the YAML is missing or invalid
var fallbackResponderRules = responderRules{
	Responder: "chat_responder",
	Version:   1,
	ContextRules: []contextRule{
		{
			Name:          "quiz",
			Requires:      "hasQuiz",
			Keywords:      []string{"quiz", "question"},
			Reply:         "Quizzes are a great way to reinforce learning. Take your time with each question and read the explanations afterward.",
			ProgressReply: "You've completed %.0f%% of the quiz so far. Keep going, and review the explanation after each answer!",
		},
		{
			Name:     "summary",
			Requires: "summary",
			Keywords: []string{"summary", "explain"},
			Reply:    "Here's what this content covers: %s",
		},
		{
			Name:     "flashcards",
			Requires: "hasFlashcards",
			Keywords: []string{"flashcard"},
			Reply:    "Flashcards work best with spaced repetition. Review the ones you miss more often, and say the answer out loud before flipping.",
		},
	},
	KeywordRules: []keywordRule{
		{
			Keywords: []string{"help", "how", "what", "explain"},
			Reply:    "I'm here to help you learn! Ask me about the quiz, the summary, or your study plan, and I'll point you in the right direction.",
		},
		{
			Keywords: []string{"study", "learn", "practice"},
			Reply:    "Short, focused study sessions beat marathons. Try a 25-30 minute block on this material, then check yourself with the quiz.",
		},
		{
			Keywords: []string{"difficult", "struggle"},
			Reply:    "It's normal for new material to feel hard at first. Break it into smaller pieces and revisit the flashcards for the parts that aren't sticking.",
		},
		{
			Keywords: []string{"motivat", "goal"},
			Reply:    "Setting small, concrete goals keeps momentum going. Finish one module or a handful of flashcards today and build your streak.",
		},
	},
	Defaults: []string{
		"That's an interesting question! Try working through the quiz or flashcards and see what you discover.",
		"Keep up the great work! Regular review is the surest path to mastery.",
		"I'm here whenever you need study guidance, a quiz recap, or a motivation boost.",
	},
}

// summaryExcerptLimit bounds how much of the content summary is quoted back.
const summaryExcerptLimit = 200

type responderRules struct {
	Responder    string        `yaml:"responder"`
	Version      int           `yaml:"version"`
	ContextRules []contextRule `yaml:"context_rules"`
	KeywordRules []keywordRule `yaml:"keyword_rules"`
	Defaults     []string      `yaml:"defaults"`
}

type contextRule struct {
	Name          string   `yaml:"name"`
	Requires      string   `yaml:"requires"`
	Keywords      []string `yaml:"keywords"`
	Reply         string   `yaml:"reply"`
	ProgressReply string   `yaml:"progress_reply"`
}

type keywordRule struct {
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

// ChatContext is the optional learning context a caller attaches to a chat
// message. Field names follow the frontend's camelCase payload.
type ChatContext struct {
	HasQuiz         bool     `json:"hasQuiz"`
	HasFlashcards   bool     `json:"hasFlashcards"`
	CurrentProgress *float64 `json:"currentProgress"`
	Summary         string   `json:"summary"`
}

// ResponderService picks a canned study-coach reply for a chat message.
// Selection is deterministic keyword containment except for the final
// default, which is uniformly random.
type ResponderService interface {
	Respond(message string, cc ChatContext, sessionID string) string
}

type responderService struct {
	log   *logger.Logger
	rules responderRules
	pick  func(n int) int
}

// NewResponderService loads the rule table once at construction:
// RESPONDER_RULES_YAML path when set, embedded YAML otherwise, compiled-in
// defaults when either is invalid. pick defaults to math/rand.
func NewResponderService(log *logger.Logger, pick func(n int) int) (ResponderService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "ResponderService")
	if pick == nil {
		pick = rand.Intn
	}

	rules, err := loadResponderRules()
	if err != nil {
		slog.Warn("responder rules load failed, using compiled-in defaults", "error", err)
		rules = fallbackResponderRules
	}

	return &responderService{
		log:   slog,
		rules: rules,
		pick:  pick,
	}, nil
}

func (r *responderService) Respond(message string, cc ChatContext, sessionID string) string {
	msg := strings.ToLower(message)

	for _, rule := range r.rules.ContextRules {
		if !contextSatisfied(rule.Requires, cc) || !containsAny(msg, rule.Keywords) {
			continue
		}
		reply := renderContextReply(rule, cc)
		r.log.Debug("chat reply", "branch", rule.Name, "session_id", sessionID)
		return reply
	}

	for _, rule := range r.rules.KeywordRules {
		if containsAny(msg, rule.Keywords) {
			r.log.Debug("chat reply", "branch", "keyword", "session_id", sessionID)
			return rule.Reply
		}
	}

	r.log.Debug("chat reply", "branch", "default", "session_id", sessionID)
	return r.rules.Defaults[r.pick(len(r.rules.Defaults))]
}

func contextSatisfied(requires string, cc ChatContext) bool {
	switch requires {
	case "hasQuiz":
		return cc.HasQuiz
	case "hasFlashcards":
		return cc.HasFlashcards
	case "summary":
		return strings.TrimSpace(cc.Summary) != ""
	default:
		return false
	}
}

func renderContextReply(rule contextRule, cc ChatContext) string {
	if rule.ProgressReply != "" && cc.CurrentProgress != nil {
		return fmt.Sprintf(rule.ProgressReply, *cc.CurrentProgress)
	}
	if strings.Contains(rule.Reply, "%s") {
		excerpt := strings.TrimSpace(cc.Summary)
		if len(excerpt) > summaryExcerptLimit {
			excerpt = strings.TrimSpace(excerpt[:summaryExcerptLimit]) + "..."
		}
		return fmt.Sprintf(rule.Reply, excerpt)
	}
	return rule.Reply
}

func containsAny(msg string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(msg, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func loadResponderRules() (responderRules, error) {
	data, err := readResponderRules()
	if err != nil {
		return responderRules{}, err
	}

	var rules responderRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return responderRules{}, err
	}
	if err := validateResponderRules(&rules); err != nil {
		return responderRules{}, err
	}
	return rules, nil
}

func readResponderRules() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(responderRulesEnv)); path != "" {
		return os.ReadFile(path)
	}
	return responderRulesFS.ReadFile("responder_rules.yaml")
}

func validateResponderRules(rules *responderRules) error {
	if rules == nil {
		return errors.New("missing rules")
	}
	if strings.TrimSpace(rules.Responder) != "chat_responder" {
		return fmt.Errorf("unexpected responder: %s", rules.Responder)
	}
	if len(rules.Defaults) == 0 {
		return errors.New("no default replies defined")
	}
	for _, rule := range rules.ContextRules {
		if strings.TrimSpace(rule.Requires) == "" || len(rule.Keywords) == 0 || strings.TrimSpace(rule.Reply) == "" {
			return fmt.Errorf("incomplete context rule: %s", rule.Name)
		}
	}
	for i, rule := range rules.KeywordRules {
		if len(rule.Keywords) == 0 || strings.TrimSpace(rule.Reply) == "" {
			return fmt.Errorf("incomplete keyword rule at index %d", i)
		}
	}
	return nil
}
