package models

import "github.com/google/uuid"

// PipelineStatus is the stage a document-to-quiz run is in.
type PipelineStatus string

const (
	PipelineIdle       PipelineStatus = "idle"
	PipelineExtracting PipelineStatus = "extracting"
	PipelineGenerating PipelineStatus = "generating"
	PipelineReady      PipelineStatus = "ready"
	PipelineFailed     PipelineStatus = "failed"
)

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatusUpdate struct {
	SessionID uuid.UUID      `json:"session_id"`
	Status    PipelineStatus `json:"status"`
	Step      int            `json:"step"`
	StepName  string         `json:"step_name"`
	Filename  string         `json:"filename,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
