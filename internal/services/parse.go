package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/microlearn-backend/internal/domain"
)

var codeFenceRe = regexp.MustCompile("(?i)^```(?:json)?\\s*|\\s*```$")

// ParseLearningContent extracts the first JSON object from a raw model reply
// and unmarshals it. Replies often arrive wrapped in markdown code fences or
// surrounded by prose; both are stripped before decoding.
func ParseLearningContent(raw string) (domain.LearningContent, error) {
	out := strings.TrimSpace(raw)
	if strings.HasPrefix(out, "```") {
		out = strings.TrimSpace(codeFenceRe.ReplaceAllString(out, ""))
	}

	if start := strings.Index(out, "{"); start != -1 {
		if end := strings.LastIndex(out, "}"); end > start {
			out = out[start : end+1]
		}
	}

	var content domain.LearningContent
	if err := json.Unmarshal([]byte(out), &content); err != nil {
		return domain.LearningContent{}, fmt.Errorf("parse learning content: %w", err)
	}
	return content, nil
}
