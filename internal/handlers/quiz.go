package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"precisionquiz-backend/internal/middleware"
	"precisionquiz-backend/internal/models"
	"precisionquiz-backend/internal/services"
)

// SessionStore is the persistence the quiz endpoints need.
type SessionStore interface {
	Create(ctx context.Context, s *services.QuizSession) error
	Get(ctx context.Context, id uuid.UUID) (*services.QuizSession, error)
	Save(ctx context.Context, s *services.QuizSession) error
	Update(ctx context.Context, id uuid.UUID, fn func(*services.QuizSession) error) (*services.QuizSession, error)
	AcquireUploadLock(ctx context.Context, id uuid.UUID, ttl time.Duration) (string, bool, error)
	ReleaseUploadLock(ctx context.Context, id uuid.UUID, token string) error
}

type QuizPipeline interface {
	Run(ctx context.Context, sessionID uuid.UUID, doc models.Document, params models.GenerationParams) ([]models.MCQ, error)
}

type TokenIssuer interface {
	GenerateSessionToken(sessionID uuid.UUID) (string, time.Time, error)
}

// lockMargin keeps the busy flag alive past the pipeline deadline so the
// final save still happens under the lock.
const lockMargin = 30 * time.Second

type QuizHandler struct {
	store          SessionStore
	pipeline       QuizPipeline
	tokens         TokenIssuer
	maxUploadBytes int64
	uploadTimeout  time.Duration
}

// NewQuizHandler bounds every pipeline run by uploadTimeout. The upload busy
// flag lives for uploadTimeout plus a margin.
func NewQuizHandler(store SessionStore, pipeline QuizPipeline, tokens TokenIssuer, maxUploadBytes int64, uploadTimeout time.Duration) *QuizHandler {
	return &QuizHandler{
		store:          store,
		pipeline:       pipeline,
		tokens:         tokens,
		maxUploadBytes: maxUploadBytes,
		uploadTimeout:  uploadTimeout,
	}
}

// CreateSession stores a new empty session and hands back its bearer token.
func (h *QuizHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session := services.NewQuizSession(uuid.New())
	if err := h.store.Create(r.Context(), session); err != nil {
		handleServiceError(w, r, err)
		return
	}

	token, expiresAt, err := h.tokens.GenerateSessionToken(session.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID: session.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

func parseGenerationParams(r *http.Request) (models.GenerationParams, map[string]string) {
	params := models.DefaultGenerationParams()
	fields := map[string]string{}

	if raw := strings.TrimSpace(r.FormValue("num_questions")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields["num_questions"] = "must be an integer"
		} else {
			params.Count = n
		}
	}
	if raw := r.FormValue("difficulty"); raw != "" {
		d, err := models.ParseDifficulty(raw)
		if err != nil {
			fields["difficulty"] = "must be one of Easy, Medium, Hard, Any"
		} else {
			params.Difficulty = d
		}
	}
	if len(fields) == 0 {
		if err := params.Validate(); err != nil {
			fields["num_questions"] = err.Error()
		}
	}
	return params, fields
}

// Upload runs extraction and generation for one document and, on success,
// replaces the session with a fresh active quiz.
func (h *QuizHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	if r.ContentLength > h.maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds the upload limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds the upload limit", r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	params, fields := parseGenerationParams(r)
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Could not read uploaded file", r))
		return
	}
	doc := models.Document{
		Filename: header.Filename,
		MIMEType: declaredMIMEType(header),
		Data:     data,
	}

	lockToken, locked, err := h.store.AcquireUploadLock(r.Context(), sessionID, h.uploadTimeout+lockMargin)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !locked {
		writeJSON(w, http.StatusConflict, errorResp("UPLOAD_IN_PROGRESS", "A document is already being processed for this session", r))
		return
	}
	defer func() {
		if err := h.store.ReleaseUploadLock(context.Background(), sessionID, lockToken); err != nil {
			log.Printf("WARNING: failed to release upload lock for %s: %v", sessionID, err)
		}
	}()

	if _, err := h.store.Get(r.Context(), sessionID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	// a new document always starts from an empty session, also when it fails
	session := services.NewQuizSession(sessionID)
	if err := h.store.Save(r.Context(), session); err != nil {
		handleServiceError(w, r, err)
		return
	}

	runCtx, cancel := context.WithTimeout(r.Context(), h.uploadTimeout)
	defer cancel()
	mcqs, err := h.pipeline.Run(runCtx, sessionID, doc, params)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := session.Start(mcqs, doc.Filename); err != nil {
		handleServiceError(w, r, err)
		return
	}
	if err := h.store.Save(r.Context(), session); err != nil {
		handleServiceError(w, r, err)
		return
	}

	first, _ := session.CurrentView()
	writeJSON(w, http.StatusOK, models.UploadResponse{
		SessionID: sessionID,
		Filename:  doc.Filename,
		Total:     len(session.Questions),
		Question:  first,
	})
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.SelectedAnswer == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"selected_answer": "is required"}, r))
		return
	}

	var answer models.UserAnswer
	_, err := h.store.Update(r.Context(), middleware.GetSessionID(r.Context()), func(s *services.QuizSession) error {
		var err error
		answer, err = s.SubmitAnswer(req.SelectedAnswer)
		return err
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (h *QuizHandler) Next(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Update(r.Context(), middleware.GetSessionID(r.Context()), func(s *services.QuizSession) error {
		return s.Advance()
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := models.AdvanceResponse{State: session.State}
	if q, err := session.CurrentView(); err == nil {
		resp.Question = &q
	}
	if res, err := session.Result(); err == nil {
		resp.Result = &res
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *QuizHandler) Result(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := session.Result()
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Restart discards the quiz and leaves an empty session under the same token.
func (h *QuizHandler) Restart(w http.ResponseWriter, r *http.Request) {
	session := services.NewQuizSession(middleware.GetSessionID(r.Context()))
	if _, err := h.store.Get(r.Context(), session.ID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	if err := h.store.Save(r.Context(), session); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}
