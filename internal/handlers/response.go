package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"precisionquiz-backend/internal/middleware"
	"precisionquiz-backend/internal/models"
	"precisionquiz-backend/internal/repository"
	"precisionquiz-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

var sessionConflictCodes = map[error]string{
	services.ErrNoQuestions:      "NO_QUESTIONS",
	services.ErrSessionNotEmpty:  "SESSION_NOT_EMPTY",
	services.ErrSessionNotActive: "SESSION_NOT_ACTIVE",
	services.ErrSessionComplete:  "SESSION_COMPLETE",
	services.ErrAlreadyAnswered:  "ALREADY_ANSWERED",
	services.ErrNotAnswered:      "NOT_ANSWERED",
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *services.PipelineError
	if errors.As(err, &pe) {
		writeJSON(w, services.HTTPStatus(pe.Kind), errorResp(string(pe.Kind), services.UserMessage(pe.Kind), r))
		return
	}

	if errors.Is(err, repository.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp("SESSION_NOT_FOUND", "Quiz session not found or expired", r))
		return
	}
	if errors.Is(err, services.ErrUnknownOption) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}
	for sentinel, code := range sessionConflictCodes {
		if errors.Is(err, sentinel) {
			writeJSON(w, http.StatusConflict, errorResp(code, err.Error(), r))
			return
		}
	}

	log.Printf("ERROR: %s %s: %v", r.Method, r.URL.Path, err)
	writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
}
