package services

import (
	"github.com/google/uuid"

	"precisionquiz-backend/internal/models"
)

// QuizSession walks one ordered question list. Answers are appended and
// never rewritten; CurrentIndex only moves forward and equals len(Questions)
// once the session is complete. The struct is stored as JSON between requests.
type QuizSession struct {
	ID           uuid.UUID           `json:"id"`
	State        models.SessionState `json:"state"`
	SourceFile   string              `json:"source_file,omitempty"`
	Questions    []models.MCQ        `json:"questions"`
	CurrentIndex int                 `json:"current_index"`
	Answers      []models.UserAnswer `json:"answers"`
}

func NewQuizSession(id uuid.UUID) *QuizSession {
	return &QuizSession{
		ID:        id,
		State:     models.SessionEmpty,
		Questions: []models.MCQ{},
		Answers:   []models.UserAnswer{},
	}
}

// Start moves an empty session to active on the given questions.
func (s *QuizSession) Start(questions []models.MCQ, sourceFile string) error {
	if s.State != models.SessionEmpty {
		return ErrSessionNotEmpty
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	s.Questions = append([]models.MCQ(nil), questions...)
	s.SourceFile = sourceFile
	s.CurrentIndex = 0
	s.Answers = []models.UserAnswer{}
	s.State = models.SessionActive
	return nil
}

// CurrentAnswered reports whether the question at CurrentIndex has a recorded answer.
func (s *QuizSession) CurrentAnswered() bool {
	return s.State == models.SessionActive && len(s.Answers) > s.CurrentIndex
}

func (s *QuizSession) checkActive() error {
	switch s.State {
	case models.SessionActive:
		return nil
	case models.SessionComplete:
		return ErrSessionComplete
	}
	return ErrSessionNotActive
}

func (s *QuizSession) Current() (models.MCQ, error) {
	if err := s.checkActive(); err != nil {
		return models.MCQ{}, err
	}
	return s.Questions[s.CurrentIndex], nil
}

func (s *QuizSession) CurrentView() (models.QuestionView, error) {
	q, err := s.Current()
	if err != nil {
		return models.QuestionView{}, err
	}
	return models.QuestionView{
		Number:     s.CurrentIndex + 1,
		Total:      len(s.Questions),
		Question:   q.Question,
		Options:    append([]string(nil), q.Options...),
		Difficulty: q.Difficulty,
	}, nil
}

// SubmitAnswer records selected for the current question without advancing.
// A second submission for the same index is rejected.
func (s *QuizSession) SubmitAnswer(selected string) (models.UserAnswer, error) {
	if err := s.checkActive(); err != nil {
		return models.UserAnswer{}, err
	}
	if s.CurrentAnswered() {
		return models.UserAnswer{}, ErrAlreadyAnswered
	}

	q := s.Questions[s.CurrentIndex]
	known := false
	for _, opt := range q.Options {
		if opt == selected {
			known = true
			break
		}
	}
	if !known {
		return models.UserAnswer{}, ErrUnknownOption
	}

	answer := models.UserAnswer{
		Question:       q.Question,
		Options:        append([]string(nil), q.Options...),
		SelectedAnswer: selected,
		CorrectAnswer:  q.CorrectAnswer,
		IsCorrect:      selected == q.CorrectAnswer,
	}
	s.Answers = append(s.Answers, answer)
	return answer, nil
}

// Advance moves past an answered question. After the last one the session
// becomes complete and stays there.
func (s *QuizSession) Advance() error {
	if err := s.checkActive(); err != nil {
		return err
	}
	if !s.CurrentAnswered() {
		return ErrNotAnswered
	}

	s.CurrentIndex++
	if s.CurrentIndex >= len(s.Questions) {
		s.CurrentIndex = len(s.Questions)
		s.State = models.SessionComplete
	}
	return nil
}

func (s *QuizSession) Result() (models.QuizResult, error) {
	if s.State != models.SessionComplete {
		return models.QuizResult{}, ErrSessionNotActive
	}
	return ScoreAnswers(s.Answers), nil
}

func (s *QuizSession) View() models.SessionView {
	v := models.SessionView{
		SessionID:       s.ID,
		State:           s.State,
		SourceFile:      s.SourceFile,
		CurrentIndex:    s.CurrentIndex,
		Total:           len(s.Questions),
		CurrentAnswered: s.CurrentAnswered(),
		Answers:         s.Answers,
	}
	if v.Answers == nil {
		v.Answers = []models.UserAnswer{}
	}
	if q, err := s.CurrentView(); err == nil {
		v.Current = &q
	}
	if r, err := s.Result(); err == nil {
		v.Result = &r
	}
	return v
}

// ScoreAnswers counts correct answers. Percentage is rounded half up and is 0
// for an empty list.
func ScoreAnswers(answers []models.UserAnswer) models.QuizResult {
	score := 0
	for _, a := range answers {
		if a.IsCorrect {
			score++
		}
	}
	total := len(answers)

	percentage := 0
	if total > 0 {
		percentage = (200*score + total) / (2 * total)
	}
	return models.QuizResult{Score: score, Total: total, Percentage: percentage}
}
