package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/yungbote/microlearn-backend/internal/domain"
	pkgerrors "github.com/yungbote/microlearn-backend/internal/pkg/errors"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
	"github.com/yungbote/microlearn-backend/internal/store"
)

// Actions accepted by UpdateProgress. Anything else only refreshes
// last_activity.
const (
	ActionModuleCompleted   = "module_completed"
	ActionQuizCompleted     = "quiz_completed"
	ActionFlashcardReviewed = "flashcard_reviewed"
)

// DefaultStudyDuration is the planned length, in minutes, of a study session
// started without an explicit duration.
const DefaultStudyDuration = 30

// ProgressService owns every mutation of and derivation from progress
// records. All mutations run atomically per session id via the store.
type ProgressService interface {
	CreateSession(totalModules int) *domain.ProgressRecord
	GetProgress(sessionID string) (*domain.ProgressRecord, error)
	UpdateProgress(sessionID string, action string, data map[string]any) (*domain.ProgressRecord, error)
	CompleteQuiz(sessionID string, quizID string, score float64) (*domain.ProgressRecord, error)
	ReviewFlashcard(sessionID string, cardID string, correct bool) (*domain.ProgressRecord, error)
	StartStudySession(sessionID string, duration int) (*domain.StudySession, error)
	CompleteStudySession(sessionID string, actualDuration int) (int, error)
	SavePreferences(sessionID string, prefs map[string]any) error
	GetPreferences(sessionID string) (map[string]any, error)
	Analytics(sessionID string) (*domain.AnalyticsSummary, error)
}

type progressService struct {
	log      *logger.Logger
	sessions *store.SessionStore
}

func NewProgressService(log *logger.Logger, sessions *store.SessionStore) (ProgressService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	return &progressService{
		log:      log.With("service", "ProgressService"),
		sessions: sessions,
	}, nil
}

// CreateSession registers a fresh record under a new id.
func (p *progressService) CreateSession(totalModules int) *domain.ProgressRecord {
	rec := p.sessions.Create()
	if totalModules > 0 {
		updated, err := p.sessions.Update(rec.SessionID, func(r *domain.ProgressRecord) error {
			r.TotalModules = totalModules
			return nil
		})
		if err == nil {
			rec = updated
		}
	}
	return rec
}

func (p *progressService) GetProgress(sessionID string) (*domain.ProgressRecord, error) {
	return p.sessions.Get(sessionID)
}

// UpdateProgress applies a named action to an existing session.
func (p *progressService) UpdateProgress(sessionID string, action string, data map[string]any) (*domain.ProgressRecord, error) {
	rec, err := p.sessions.Update(sessionID, func(r *domain.ProgressRecord) error {
		applyAction(r, action, data, time.Now().UTC())
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.log.Debug("progress updated", "session_id", sessionID, "action", action)
	return rec, nil
}

func (p *progressService) CompleteQuiz(sessionID string, quizID string, score float64) (*domain.ProgressRecord, error) {
	return p.UpdateProgress(sessionID, ActionQuizCompleted, map[string]any{
		"quiz_id": quizID,
		"score":   score,
	})
}

func (p *progressService) ReviewFlashcard(sessionID string, cardID string, correct bool) (*domain.ProgressRecord, error) {
	return p.UpdateProgress(sessionID, ActionFlashcardReviewed, map[string]any{
		"card_id": cardID,
		"correct": correct,
	})
}

// StartStudySession appends a new active session block, creating the record
// when the id is unseen. Non-positive durations fall back to the default.
func (p *progressService) StartStudySession(sessionID string, duration int) (*domain.StudySession, error) {
	if duration <= 0 {
		duration = DefaultStudyDuration
	}
	var started *domain.StudySession
	_, err := p.sessions.Upsert(sessionID, func(rec *domain.ProgressRecord) error {
		now := time.Now().UTC()
		sess := &domain.StudySession{
			StartTime:       now,
			PlannedDuration: duration,
			Active:          true,
		}
		rec.StudySessions = append(rec.StudySessions, sess)
		rec.LastActivity = now
		copied := *sess
		started = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.log.Info("study session started", "session_id", sessionID, "planned_duration", duration)
	return started, nil
}

// CompleteStudySession closes the most recently started active block and
// accumulates the actual duration into time_spent. Returns the new total.
func (p *progressService) CompleteStudySession(sessionID string, actualDuration int) (int, error) {
	if actualDuration < 0 {
		actualDuration = 0
	}
	rec, err := p.sessions.Update(sessionID, func(r *domain.ProgressRecord) error {
		var open *domain.StudySession
		for i := len(r.StudySessions) - 1; i >= 0; i-- {
			if r.StudySessions[i] != nil && r.StudySessions[i].Active {
				open = r.StudySessions[i]
				break
			}
		}
		if open == nil {
			return pkgerrors.ErrNoActiveStudySession
		}

		now := time.Now().UTC()
		end := now
		d := actualDuration
		open.Active = false
		open.EndTime = &end
		open.ActualDuration = &d
		r.TimeSpent += actualDuration
		r.LastActivity = now
		advanceStreak(r, now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	p.log.Info("study session completed", "session_id", sessionID, "actual_duration", actualDuration, "time_spent", rec.TimeSpent)
	return rec.TimeSpent, nil
}

// SavePreferences stores the opaque blob, creating the record when absent.
func (p *progressService) SavePreferences(sessionID string, prefs map[string]any) error {
	_, err := p.sessions.Upsert(sessionID, func(rec *domain.ProgressRecord) error {
		rec.Preferences = prefs
		rec.LastActivity = time.Now().UTC()
		return nil
	})
	return err
}

// GetPreferences never fails: unknown sessions and absent blobs both yield
// nil.
func (p *progressService) GetPreferences(sessionID string) (map[string]any, error) {
	rec, err := p.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec.Preferences, nil
}

// Analytics derives the read-only summary from the current record.
func (p *progressService) Analytics(sessionID string) (*domain.AnalyticsSummary, error) {
	rec, err := p.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return buildAnalytics(rec), nil
}

func applyAction(rec *domain.ProgressRecord, action string, data map[string]any, now time.Time) {
	rec.LastActivity = now

	switch action {
	case ActionModuleCompleted:
		rec.CompletedModules++
		advanceStreak(rec, now)

	case ActionQuizCompleted:
		if rec.QuizScores == nil {
			rec.QuizScores = map[string]float64{}
		}
		rec.QuizScores[stringOr(data, "quiz_id", "default")] = floatOr(data, "score", 0)
		advanceStreak(rec, now)

	case ActionFlashcardReviewed:
		if rec.FlashcardProgress == nil {
			rec.FlashcardProgress = map[string]*domain.FlashcardStat{}
		}
		cardID := stringOr(data, "card_id", "default")
		stat := rec.FlashcardProgress[cardID]
		if stat == nil {
			stat = &domain.FlashcardStat{}
			rec.FlashcardProgress[cardID] = stat
		}
		stat.ReviewedCount++
		reviewedAt := now
		stat.LastReviewed = &reviewedAt
		if boolOr(data, "correct", false) {
			stat.CorrectCount++
		}
		advanceStreak(rec, now)
	}
}

// advanceStreak moves the daily streak on scoring activity: same UTC day
// keeps the value, the next day increments, a longer gap resets to 1.
func advanceStreak(rec *domain.ProgressRecord, now time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	if rec.StreakAnchor == nil || rec.StreakDays == 0 {
		rec.StreakDays = 1
		rec.StreakAnchor = &day
		return
	}

	prev := rec.StreakAnchor.UTC().Truncate(24 * time.Hour)
	switch gap := int(day.Sub(prev).Hours() / 24); {
	case gap <= 0:
		// same day, streak unchanged
	case gap == 1:
		rec.StreakDays++
	default:
		rec.StreakDays = 1
	}
	rec.StreakAnchor = &day
}

func buildAnalytics(rec *domain.ProgressRecord) *domain.AnalyticsSummary {
	sum := &domain.AnalyticsSummary{
		SessionID:                   rec.SessionID,
		TotalModules:                rec.CompletedModules,
		TotalQuizzes:                len(rec.QuizScores),
		TotalFlashcards:             len(rec.FlashcardProgress),
		TotalStudyTime:              rec.TimeSpent,
		LearningStreak:              rec.StreakDays,
		LearningObjectivesCompleted: len(rec.LearningObjectivesCompleted),
		ProgressByDay:               []domain.TimelineEntry{},
		ConceptMastery:              []domain.ConceptMastery{},
	}

	quizIDs := make([]string, 0, len(rec.QuizScores))
	for id := range rec.QuizScores {
		quizIDs = append(quizIDs, id)
	}
	sort.Strings(quizIDs)

	if len(quizIDs) > 0 {
		total := 0.0
		for _, id := range quizIDs {
			total += rec.QuizScores[id]
		}
		sum.AverageQuizScore = round1(total / float64(len(quizIDs)))
	}

	cardIDs := make([]string, 0, len(rec.FlashcardProgress))
	var reviewed, correct int
	for id, stat := range rec.FlashcardProgress {
		cardIDs = append(cardIDs, id)
		if stat == nil {
			continue
		}
		reviewed += stat.ReviewedCount
		correct += stat.CorrectCount
	}
	sort.Strings(cardIDs)
	sum.FlashcardAccuracy = round1(100 * float64(correct) / float64(max1(reviewed)))

	for _, id := range quizIDs {
		score := rec.QuizScores[id]
		sum.ProgressByDay = append(sum.ProgressByDay, domain.TimelineEntry{
			Date:  rec.LastActivity,
			Type:  domain.TimelineQuiz,
			Score: &score,
		})
	}
	for _, id := range cardIDs {
		stat := rec.FlashcardProgress[id]
		if stat == nil || stat.LastReviewed == nil {
			continue
		}
		acc := round1(100 * float64(stat.CorrectCount) / float64(max1(stat.ReviewedCount)))
		sum.ProgressByDay = append(sum.ProgressByDay, domain.TimelineEntry{
			Date:     *stat.LastReviewed,
			Type:     domain.TimelineFlashcard,
			Accuracy: &acc,
		})
	}
	sort.SliceStable(sum.ProgressByDay, func(i, j int) bool {
		return sum.ProgressByDay[i].Date.After(sum.ProgressByDay[j].Date)
	})
	if len(sum.ProgressByDay) > 10 {
		sum.ProgressByDay = sum.ProgressByDay[:10]
	}

	for _, id := range quizIDs {
		score := rec.QuizScores[id]
		sum.ConceptMastery = append(sum.ConceptMastery, domain.ConceptMastery{
			Concept: id,
			Score:   score,
			Level:   masteryLevel(score),
		})
	}

	return sum
}

func masteryLevel(score float64) string {
	switch {
	case score >= 90:
		return domain.MasteryMastered
	case score >= 70:
		return domain.MasteryDeveloping
	default:
		return domain.MasteryLearning
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func stringOr(data map[string]any, key string, def string) string {
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}
	return def
}

func floatOr(data map[string]any, key string, def float64) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolOr(data map[string]any, key string, def bool) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
