package models

import (
	"fmt"
	"strings"
)

// Difficulty is the level carried by a single generated question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"

	// DifficultyAny is only valid as a generation parameter; the model picks per question.
	DifficultyAny Difficulty = "Any"
)

// QuestionLevels lists the levels a generated question may carry.
var QuestionLevels = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// IsQuestionLevel reports whether d is one of Easy, Medium or Hard.
func (d Difficulty) IsQuestionLevel() bool {
	for _, level := range QuestionLevels {
		if d == level {
			return true
		}
	}
	return false
}

// ParseDifficulty accepts any casing of Easy, Medium, Hard or Any.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	case "any":
		return DifficultyAny, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

const (
	DefaultQuestionCount = 5
	MaxQuestionCount     = 50
)

// GenerationParams is immutable for the lifetime of one generation request.
type GenerationParams struct {
	Count      int        `json:"num_questions"`
	Difficulty Difficulty `json:"difficulty"`
}

// DefaultGenerationParams mirrors the upload form defaults.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{Count: DefaultQuestionCount, Difficulty: DifficultyEasy}
}

func (p GenerationParams) Validate() error {
	if p.Count <= 0 || p.Count > MaxQuestionCount {
		return fmt.Errorf("num_questions must be between 1 and %d", MaxQuestionCount)
	}
	if p.Difficulty != DifficultyAny && !p.Difficulty.IsQuestionLevel() {
		return fmt.Errorf("difficulty must be one of Easy, Medium, Hard, Any")
	}
	return nil
}

// MCQ is a four-option single-answer question. CorrectAnswer is always one of Options.
type MCQ struct {
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Difficulty    Difficulty `json:"difficulty"`
}

// UserAnswer is a snapshot taken when a question is answered.
type UserAnswer struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	SelectedAnswer string   `json:"selectedAnswer"`
	CorrectAnswer  string   `json:"correctAnswer"`
	IsCorrect      bool     `json:"isCorrect"`
}

// QuizResult is the score triple exposed by a completed session.
type QuizResult struct {
	Score      int `json:"score"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// QuestionView is an MCQ as shown to the quiz taker, without its answer.
type QuestionView struct {
	Number     int        `json:"number"`
	Total      int        `json:"total"`
	Question   string     `json:"question"`
	Options    []string   `json:"options"`
	Difficulty Difficulty `json:"difficulty"`
}

type SubmitAnswerRequest struct {
	SelectedAnswer string `json:"selected_answer"`
}
