package handlers

import (
	"net/http"

	"precisionquiz-backend/internal/middleware"
	"precisionquiz-backend/internal/services"
)

func writeDownload(w http.ResponseWriter, contentType, filename string, body []byte) {
	if len(body) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *QuizHandler) loadSession(w http.ResponseWriter, r *http.Request) (*services.QuizSession, bool) {
	session, err := h.store.Get(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return nil, false
	}
	return session, true
}

func (h *QuizHandler) ExportQuestionsCSV(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeDownload(w, "text/csv; charset=utf-8", services.QuestionsCSVFilename, []byte(services.QuestionsCSV(session.Questions)))
}

func (h *QuizHandler) ExportQuestionsPDF(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	body, err := services.QuestionsPDF(session.Questions)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeDownload(w, "application/pdf", services.QuestionsPDFFilename, body)
}

func (h *QuizHandler) ExportResultsCSV(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeDownload(w, "text/csv; charset=utf-8", services.ResultsCSVFilename, []byte(services.ResultsCSV(session.Answers)))
}

func (h *QuizHandler) ExportResultsPDF(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	body, err := services.ResultsPDF(session.Answers)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeDownload(w, "application/pdf", services.ResultsPDFFilename, body)
}
