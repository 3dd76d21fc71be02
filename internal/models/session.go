package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the quiz session lifecycle: empty -> active -> complete.
type SessionState string

const (
	SessionEmpty    SessionState = "empty"
	SessionActive   SessionState = "active"
	SessionComplete SessionState = "complete"
)

// SessionView is what GET /quiz returns. Current never carries the answer.
type SessionView struct {
	SessionID       uuid.UUID     `json:"session_id"`
	State           SessionState  `json:"state"`
	SourceFile      string        `json:"source_file,omitempty"`
	CurrentIndex    int           `json:"current_index"`
	Total           int           `json:"total"`
	Current         *QuestionView `json:"current,omitempty"`
	CurrentAnswered bool          `json:"current_answered"`
	Answers         []UserAnswer  `json:"answers"`
	Result          *QuizResult   `json:"result,omitempty"`
}

type CreateSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdvanceResponse carries either the next question or, once complete, the result.
type AdvanceResponse struct {
	State    SessionState  `json:"state"`
	Question *QuestionView `json:"question,omitempty"`
	Result   *QuizResult   `json:"result,omitempty"`
}

type UploadResponse struct {
	SessionID uuid.UUID    `json:"session_id"`
	Filename  string       `json:"filename"`
	Total     int          `json:"total"`
	Question  QuestionView `json:"question"`
}
