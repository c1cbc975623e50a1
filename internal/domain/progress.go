package domain

import "time"

// FlashcardStat holds per-card cumulative review counters.
// CorrectCount never exceeds ReviewedCount.
type FlashcardStat struct {
	ReviewedCount int        `json:"reviewed_count"`
	CorrectCount  int        `json:"correct_count"`
	LastReviewed  *time.Time `json:"last_reviewed"`
}

// StudySession is one planned block of study time. At most one session per
// record is active at a time. Durations are minutes.
type StudySession struct {
	StartTime       time.Time  `json:"start_time"`
	PlannedDuration int        `json:"planned_duration"`
	Active          bool       `json:"active"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	ActualDuration  *int       `json:"actual_duration,omitempty"`
}

// ProgressRecord is the per-session learner state. It lives in the session
// store for the lifetime of the process and is only mutated through the
// progress service.
type ProgressRecord struct {
	SessionID                   string                    `json:"session_id"`
	CreatedAt                   time.Time                 `json:"created_at"`
	CompletedModules            int                       `json:"completed_modules"`
	TotalModules                int                       `json:"total_modules"`
	QuizScores                  map[string]float64        `json:"quiz_scores"`
	FlashcardProgress           map[string]*FlashcardStat `json:"flashcard_progress"`
	LearningObjectivesCompleted []string                  `json:"learning_objectives_completed"`
	TimeSpent                   int                       `json:"time_spent"`
	StreakDays                  int                       `json:"streak_days"`
	LastActivity                time.Time                 `json:"last_activity"`
	StudySessions               []*StudySession           `json:"study_sessions,omitempty"`
	Preferences                 map[string]any            `json:"preferences,omitempty"`

	// StreakAnchor is the UTC day of the last streak-advancing activity.
	// Internal bookkeeping, never serialized.
	StreakAnchor *time.Time `json:"-"`
}

func NewProgressRecord(sessionID string) *ProgressRecord {
	now := time.Now().UTC()
	return &ProgressRecord{
		SessionID:                   sessionID,
		CreatedAt:                   now,
		QuizScores:                  map[string]float64{},
		FlashcardProgress:           map[string]*FlashcardStat{},
		LearningObjectivesCompleted: []string{},
		LastActivity:                now,
	}
}

// Clone returns a deep copy. The store hands out clones so callers can read
// and serialize records without holding the per-session lock.
func (r *ProgressRecord) Clone() *ProgressRecord {
	if r == nil {
		return nil
	}
	out := *r

	out.QuizScores = make(map[string]float64, len(r.QuizScores))
	for k, v := range r.QuizScores {
		out.QuizScores[k] = v
	}

	out.FlashcardProgress = make(map[string]*FlashcardStat, len(r.FlashcardProgress))
	for k, v := range r.FlashcardProgress {
		if v == nil {
			continue
		}
		stat := *v
		if v.LastReviewed != nil {
			t := *v.LastReviewed
			stat.LastReviewed = &t
		}
		out.FlashcardProgress[k] = &stat
	}

	out.LearningObjectivesCompleted = append([]string(nil), r.LearningObjectivesCompleted...)

	if r.StudySessions != nil {
		out.StudySessions = make([]*StudySession, 0, len(r.StudySessions))
		for _, s := range r.StudySessions {
			if s == nil {
				continue
			}
			ss := *s
			if s.EndTime != nil {
				t := *s.EndTime
				ss.EndTime = &t
			}
			if s.ActualDuration != nil {
				d := *s.ActualDuration
				ss.ActualDuration = &d
			}
			out.StudySessions = append(out.StudySessions, &ss)
		}
	}

	if r.Preferences != nil {
		out.Preferences = make(map[string]any, len(r.Preferences))
		for k, v := range r.Preferences {
			out.Preferences[k] = v
		}
	}

	if r.StreakAnchor != nil {
		t := *r.StreakAnchor
		out.StreakAnchor = &t
	}
	return &out
}

const (
	MasteryMastered   = "Mastered"
	MasteryDeveloping = "Developing"
	MasteryLearning   = "Learning"
)

const (
	TimelineQuiz      = "quiz"
	TimelineFlashcard = "flashcard"
)

// TimelineEntry is one point on the derived activity timeline.
type TimelineEntry struct {
	Date     time.Time `json:"date"`
	Type     string    `json:"type"`
	Score    *float64  `json:"score,omitempty"`
	Accuracy *float64  `json:"accuracy,omitempty"`
}

type ConceptMastery struct {
	Concept string  `json:"concept"`
	Score   float64 `json:"score"`
	Level   string  `json:"level"`
}

// AnalyticsSummary is derived read-only from a ProgressRecord.
type AnalyticsSummary struct {
	SessionID                   string           `json:"session_id"`
	TotalModules                int              `json:"total_modules"`
	TotalQuizzes                int              `json:"total_quizzes"`
	AverageQuizScore            float64          `json:"average_quiz_score"`
	TotalFlashcards             int              `json:"total_flashcards"`
	FlashcardAccuracy           float64          `json:"flashcard_accuracy"`
	TotalStudyTime              int              `json:"total_study_time"`
	LearningStreak              int              `json:"learning_streak"`
	LearningObjectivesCompleted int              `json:"learning_objectives_completed"`
	ProgressByDay               []TimelineEntry  `json:"progress_by_day"`
	ConceptMastery              []ConceptMastery `json:"concept_mastery"`
}
