package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"precisionquiz-backend/internal/models"
)

// maxSourceChars bounds how much document text goes into one prompt.
const maxSourceChars = 20000

// ContentGenerator is the outbound AI call. One call per Generate, no retries.
type ContentGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

type QuestionGenerator struct {
	ai ContentGenerator
}

func NewQuestionGenerator(ai ContentGenerator) *QuestionGenerator {
	return &QuestionGenerator{ai: ai}
}

// Generate asks the AI service for params.Count questions about text and
// returns only the elements that pass validation. An empty response array is
// not an error here.
func (g *QuestionGenerator) Generate(ctx context.Context, text string, params models.GenerationParams) ([]models.MCQ, error) {
	prompt := buildQuizPrompt(text, params)

	raw, err := g.ai.GenerateJSON(ctx, prompt)
	if err != nil {
		log.Printf("ERROR: question generation call failed: %v", err)
		return nil, newPipelineError(KindServiceUnavailable, "AI service request failed.", err)
	}

	mcqs, err := parseMCQResponse(raw)
	if err != nil {
		log.Printf("WARNING: question generation returned unusable data: %v", err)
		return nil, err
	}

	log.Printf("Generated %d/%d questions (difficulty=%s)", len(mcqs), params.Count, params.Difficulty)
	return mcqs, nil
}

func buildQuizPrompt(text string, params models.GenerationParams) string {
	difficultyConstraint := "4. A difficulty rating of 'Easy', 'Medium', or 'Hard'."
	if params.Difficulty != models.DifficultyAny {
		difficultyConstraint = fmt.Sprintf("4. A difficulty rating of '%s'. All questions must conform to this difficulty.", params.Difficulty)
	}

	return fmt.Sprintf(`Based on the following document text, generate %d high-quality multiple-choice questions (MCQs).
For each MCQ, you must provide:
1. A clear and concise question.
2. Exactly four distinct options.
3. The single correct answer, which must exactly match one of the four options.
%s

Ensure the questions cover a variety of topics from the text and are grammatically correct.
Do not generate questions about the document's metadata (e.g., page numbers, author). Focus solely on the core content.

Document Text:
---
%s
---`, params.Count, difficultyConstraint, truncateRunes(text, maxSourceChars))
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// mcqCandidate is one response element before validation.
type mcqCandidate struct {
	Question      string            `json:"question"`
	Options       []string          `json:"options"`
	CorrectAnswer string            `json:"correctAnswer"`
	Difficulty    models.Difficulty `json:"difficulty"`
}

func parseMCQResponse(raw string) ([]models.MCQ, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &elements); err != nil {
		return nil, newPipelineError(KindMalformedResponse, "AI returned data in an unexpected format.", err)
	}
	// a bare JSON null decodes without error
	if elements == nil {
		return nil, newPipelineError(KindMalformedResponse, "AI returned data in an unexpected format.", errors.New("response is null"))
	}

	mcqs := make([]models.MCQ, 0, len(elements))
	for _, el := range elements {
		var c mcqCandidate
		if err := json.Unmarshal(el, &c); err != nil {
			continue
		}
		if mcq, ok := validateMCQ(c); ok {
			mcqs = append(mcqs, mcq)
		}
	}

	if len(mcqs) == 0 && len(elements) > 0 {
		return nil, newPipelineError(KindMalformedResponse, "AI returned malformed MCQ data. Please try again.",
			fmt.Errorf("0 of %d elements passed validation", len(elements)))
	}
	return mcqs, nil
}

// validateMCQ admits a candidate only if it is structurally and referentially
// sound. Nothing is repaired.
func validateMCQ(c mcqCandidate) (models.MCQ, bool) {
	if strings.TrimSpace(c.Question) == "" {
		return models.MCQ{}, false
	}
	if len(c.Options) != 4 {
		return models.MCQ{}, false
	}
	if c.CorrectAnswer == "" {
		return models.MCQ{}, false
	}
	if !c.Difficulty.IsQuestionLevel() {
		return models.MCQ{}, false
	}

	seen := make(map[string]bool, len(c.Options))
	found := false
	for _, opt := range c.Options {
		if seen[opt] {
			return models.MCQ{}, false
		}
		seen[opt] = true
		if opt == c.CorrectAnswer {
			found = true
		}
	}
	if !found {
		return models.MCQ{}, false
	}

	return models.MCQ{
		Question:      c.Question,
		Options:       append([]string(nil), c.Options...),
		CorrectAnswer: c.CorrectAnswer,
		Difficulty:    c.Difficulty,
	}, true
}
