package handlers

import (
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"precisionquiz-backend/internal/models"
)

type ContentHandler struct{}

func NewContentHandler() *ContentHandler {
	return &ContentHandler{}
}

func (h *ContentHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ContentHandler) SupportedFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"formats": models.SupportedFormats,
	})
}

// declaredMIMEType takes the type the client declared for the part, without
// parameters. Only when the client declared nothing useful does the file
// extension stand in for it. The bytes are never inspected.
func declaredMIMEType(header *multipart.FileHeader) string {
	declared := header.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
		declared = mediaType
	}
	if declared == "" || declared == "application/octet-stream" {
		return models.MIMETypeForExtension(strings.ToLower(getExtension(header.Filename)))
	}
	return declared
}

func getExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return filename[idx:]
}
