package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure of the document-to-quiz pipeline.
type ErrorKind string

const (
	KindUnsupportedType    ErrorKind = "UNSUPPORTED_TYPE"
	KindParseFailure       ErrorKind = "PARSE_FAILURE"
	KindInsufficientText   ErrorKind = "INSUFFICIENT_TEXT"
	KindMalformedResponse  ErrorKind = "MALFORMED_RESPONSE"
	KindServiceUnavailable ErrorKind = "SERVICE_UNAVAILABLE"
	KindNoQuestions        ErrorKind = "NO_QUESTIONS"
)

// PipelineError is the typed failure returned by extraction and generation.
// Cause is kept for logs and is never shown to end users.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func newPipelineError(kind ErrorKind, message string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of the first PipelineError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// UserMessage is the single user-facing message for each failure kind.
func UserMessage(kind ErrorKind) string {
	switch kind {
	case KindUnsupportedType:
		return "Unsupported file type. Please upload a PDF, DOCX, or TXT file."
	case KindParseFailure:
		return "Could not read the document. It might be corrupted or encrypted."
	case KindInsufficientText:
		return "Could not extract sufficient text. Please ensure the document is not empty, scanned, or protected."
	case KindMalformedResponse:
		return "AI returned malformed MCQ data. Please try again."
	case KindServiceUnavailable:
		return "Failed to generate MCQs from the AI. The content might be too complex or the service may be temporarily unavailable."
	case KindNoQuestions:
		return "The AI could not generate any questions from this document. Please try a different one."
	}
	return "An unknown error occurred."
}

// HTTPStatus maps a failure kind to a response status.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindUnsupportedType:
		return http.StatusUnsupportedMediaType
	case KindParseFailure, KindInsufficientText, KindNoQuestions:
		return http.StatusUnprocessableEntity
	case KindMalformedResponse:
		return http.StatusBadGateway
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Session legality errors.
var (
	ErrNoQuestions      = errors.New("quiz session needs at least one question")
	ErrSessionNotEmpty  = errors.New("quiz session has already been started")
	ErrSessionNotActive = errors.New("quiz session is not active")
	ErrSessionComplete  = errors.New("quiz session is complete")
	ErrAlreadyAnswered  = errors.New("current question has already been answered")
	ErrNotAnswered      = errors.New("current question has not been answered")
	ErrUnknownOption    = errors.New("selected answer is not one of the options")
)
