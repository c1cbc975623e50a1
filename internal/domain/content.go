package domain

// Bloom's-taxonomy levels assigned to generated quiz questions.
const (
	BloomRemember   = "Remember"
	BloomUnderstand = "Understand"
	BloomApply      = "Apply"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Question is one generated quiz item. Options is optional; when present it
// carries at least two choices with the correct answer among them.
type Question struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	BloomLevel  string   `json:"bloom_level"`
	Explanation string   `json:"explanation"`
	Options     []string `json:"options,omitempty"`
}

type Flashcard struct {
	Front    string `json:"front"`
	Back     string `json:"back"`
	Category string `json:"category"`
}

// LearningContent is the structured object produced by one synthesis call.
// Every field tolerates being absent from a model response; consumers apply
// their own defaults instead of assuming presence.
type LearningContent struct {
	Summary            string      `json:"summary"`
	LearningObjectives []string    `json:"learning_objectives"`
	Questions          []Question  `json:"questions"`
	Flashcards         []Flashcard `json:"flashcards"`
	KeyConcepts        []string    `json:"key_concepts"`
	DifficultyLevel    string      `json:"difficulty_level"`
}
