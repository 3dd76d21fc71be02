package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"precisionquiz-backend/internal/middleware"
	"precisionquiz-backend/internal/models"
	"precisionquiz-backend/internal/repository"
	"precisionquiz-backend/internal/services"
)

// ─── JSON Response Tests ───

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusCreated, map[string]string{"message": "Success"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", rr.Header().Get("Content-Type"))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["message"] != "Success" {
		t.Errorf("Expected message 'Success', got %v", result["message"])
	}
}

func TestErrorRespCarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")

	resp := errorResp("VALIDATION_ERROR", "Invalid input", req)
	if resp.Error.RequestID != "req-42" || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("Unexpected error envelope %+v", resp.Error)
	}
}

// ─── Error Mapping Tests ───

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unsupported type", &services.PipelineError{Kind: services.KindUnsupportedType}, http.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE"},
		{"parse failure", &services.PipelineError{Kind: services.KindParseFailure}, http.StatusUnprocessableEntity, "PARSE_FAILURE"},
		{"no questions", &services.PipelineError{Kind: services.KindNoQuestions}, http.StatusUnprocessableEntity, "NO_QUESTIONS"},
		{"wrapped pipeline error", fmt.Errorf("upload: %w", &services.PipelineError{Kind: services.KindServiceUnavailable}), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"session missing", repository.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
		{"complete", services.ErrSessionComplete, http.StatusConflict, "SESSION_COMPLETE"},
		{"not answered", services.ErrNotAnswered, http.StatusConflict, "NOT_ANSWERED"},
		{"unknown option", services.ErrUnknownOption, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handleServiceError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

			if rr.Code != tc.status {
				t.Fatalf("Expected status %d, got %d", tc.status, rr.Code)
			}
			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Error.Code != tc.code {
				t.Errorf("Expected code %s, got %s", tc.code, resp.Error.Code)
			}
		})
	}
}

func TestHandleServiceError_HidesCause(t *testing.T) {
	err := &services.PipelineError{Kind: services.KindServiceUnavailable, Message: "x", Cause: errors.New("googleapi: Error 500: internal")}

	rr := httptest.NewRecorder()
	handleServiceError(rr, httptest.NewRequest(http.MethodGet, "/", nil), err)

	var resp models.ErrorResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error.Message != services.UserMessage(services.KindServiceUnavailable) {
		t.Errorf("Expected the fixed user message, got %q", resp.Error.Message)
	}
}

// ─── Content Handler Tests ───

func TestSupportedFormats(t *testing.T) {
	rr := httptest.NewRecorder()
	NewContentHandler().SupportedFormats(rr, httptest.NewRequest(http.MethodGet, "/api/v1/formats", nil))

	var resp struct {
		Formats []models.SupportedFormat `json:"formats"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Formats) != 3 {
		t.Fatalf("Expected exactly 3 formats, got %d", len(resp.Formats))
	}
}

func TestDeclaredMIMEType(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		expected    string
	}{
		{"a.pdf", "application/pdf", models.MIMEPDF},
		{"a.txt", "text/plain; charset=utf-8", models.MIMEText},
		{"a.docx", "", models.MIMEDOCX},
		{"a.PDF", "application/octet-stream", models.MIMEPDF},
		{"a.pdf", "image/png", "image/png"},
		{"a.rtf", "", ""},
	}

	for _, tc := range tests {
		h := textproto.MIMEHeader{}
		if tc.contentType != "" {
			h.Set("Content-Type", tc.contentType)
		}
		got := declaredMIMEType(&multipart.FileHeader{Filename: tc.filename, Header: h})
		if got != tc.expected {
			t.Errorf("%s (%q): expected %q, got %q", tc.filename, tc.contentType, tc.expected, got)
		}
	}
}
