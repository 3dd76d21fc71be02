package services

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"precisionquiz-backend/internal/models"
)

type stubPDF struct {
	pages [][]string
	err   error
}

func (s stubPDF) PageItems([]byte) ([][]string, error) { return s.pages, s.err }

type stubDOCX struct {
	text string
	err  error
}

func (s stubDOCX) RawText([]byte) (string, error) { return s.text, s.err }

func TestExtract_UnsupportedTypes(t *testing.T) {
	svc := NewFileExtractService()
	for _, mime := range []string{"image/png", "application/msword", "text/html", "", "APPLICATION/PDF", "text/plain; charset=utf-8"} {
		_, err := svc.Extract(models.Document{MIMEType: mime, Data: []byte("hello")})
		if KindOf(err) != KindUnsupportedType {
			t.Errorf("type %q: expected UNSUPPORTED_TYPE, got %v", mime, err)
		}
	}
}

func TestExtract_PDFJoinsItemsInPageOrder(t *testing.T) {
	svc := NewFileExtractServiceWith(stubPDF{pages: [][]string{{"Chapter", "one"}, nil, {"page", "three"}}}, stubDOCX{})

	got, err := svc.Extract(models.Document{MIMEType: models.MIMEPDF})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Chapter one page three" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestExtract_PDFFailureIsParseFailure(t *testing.T) {
	svc := NewFileExtractServiceWith(stubPDF{pages: [][]string{{"partial"}}, err: errors.New("encrypted")}, stubDOCX{})
	got, err := svc.Extract(models.Document{MIMEType: models.MIMEPDF})
	if KindOf(err) != KindParseFailure {
		t.Fatalf("expected PARSE_FAILURE, got %v", err)
	}
	if got != "" {
		t.Fatalf("expected no partial text, got %q", got)
	}
}

func TestExtract_CorruptPDFWithRealParser(t *testing.T) {
	_, err := NewFileExtractService().Extract(models.Document{MIMEType: models.MIMEPDF, Data: []byte("%PDF-1.4 this is not really a pdf")})
	if KindOf(err) != KindParseFailure {
		t.Fatalf("expected PARSE_FAILURE, got %v", err)
	}
}

func TestExtract_DOCXVerbatim(t *testing.T) {
	svc := NewFileExtractServiceWith(stubPDF{}, stubDOCX{text: "  Title\n\nBody  "})
	got, err := svc.Extract(models.Document{MIMEType: models.MIMEDOCX})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "  Title\n\nBody  " {
		t.Fatalf("expected parser output unchanged, got %q", got)
	}

	svc = NewFileExtractServiceWith(stubPDF{}, stubDOCX{err: errors.New("zip: not a valid zip file")})
	if _, err := svc.Extract(models.Document{MIMEType: models.MIMEDOCX}); KindOf(err) != KindParseFailure {
		t.Fatalf("expected PARSE_FAILURE, got %v", err)
	}
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestZipDOCX_RawText(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Cell</w:t></w:r><w:r><w:t xml:space="preserve"> biology</w:t></w:r></w:p>
    <w:p><w:r><w:t>Mitosis</w:t><w:tab/><w:t>phases</w:t><w:br/><w:t>next line</w:t></w:r></w:p>
  </w:body>
</w:document>`

	got, err := NewFileExtractService().Extract(models.Document{MIMEType: models.MIMEDOCX, Data: buildDOCX(t, doc)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Cell biology\n\nMitosis\tphases\nnext line\n\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestZipDOCX_Failures(t *testing.T) {
	svc := NewFileExtractService()

	if _, err := svc.Extract(models.Document{MIMEType: models.MIMEDOCX, Data: []byte("not a zip")}); KindOf(err) != KindParseFailure {
		t.Fatalf("expected PARSE_FAILURE for non-zip, got %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, _ = zw.Create("word/styles.xml")
	_ = zw.Close()
	if _, err := svc.Extract(models.Document{MIMEType: models.MIMEDOCX, Data: buf.Bytes()}); KindOf(err) != KindParseFailure {
		t.Fatalf("expected PARSE_FAILURE for missing document.xml, got %v", err)
	}
}

func TestExtract_Text(t *testing.T) {
	svc := NewFileExtractService()

	got, err := svc.Extract(models.Document{MIMEType: models.MIMEText, Data: []byte("\xEF\xBB\xBFhello, wörld")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello, wörld" {
		t.Fatalf("unexpected text %q", got)
	}

	if _, err := svc.Extract(models.Document{MIMEType: models.MIMEText, Data: []byte{0xff, 0xfe, 0x00}}); KindOf(err) != KindParseFailure {
		t.Fatalf("expected PARSE_FAILURE for invalid UTF-8, got %v", err)
	}
}
