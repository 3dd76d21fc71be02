package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"precisionquiz-backend/internal/models"
)

// PDFParser turns a page-based binary document into text items, one slice per page in page order.
type PDFParser interface {
	PageItems(data []byte) ([][]string, error)
}

// DOCXParser turns a compressed-XML word processing document into raw text.
type DOCXParser interface {
	RawText(data []byte) (string, error)
}

type FileExtractService struct {
	pdf  PDFParser
	docx DOCXParser
}

func NewFileExtractService() *FileExtractService {
	return &FileExtractService{pdf: LedongthucPDF{}, docx: ZipDOCX{}}
}

// NewFileExtractServiceWith swaps the format parsers, mostly for tests.
func NewFileExtractServiceWith(pdfParser PDFParser, docxParser DOCXParser) *FileExtractService {
	return &FileExtractService{pdf: pdfParser, docx: docxParser}
}

// Extract routes doc to a parser by its declared MIME type only.
func (s *FileExtractService) Extract(doc models.Document) (string, error) {
	switch doc.MIMEType {
	case models.MIMEPDF:
		return s.extractPDF(doc.Data)
	case models.MIMEDOCX:
		return s.extractDOCX(doc.Data)
	case models.MIMEText:
		return s.extractTXT(doc.Data)
	default:
		return "", newPipelineError(KindUnsupportedType, "Unsupported file type.", fmt.Errorf("declared type %q", doc.MIMEType))
	}
}

func (s *FileExtractService) extractPDF(data []byte) (string, error) {
	pages, err := s.pdf.PageItems(data)
	if err != nil {
		return "", newPipelineError(KindParseFailure, "Could not parse PDF file. It might be corrupted or encrypted.", err)
	}

	var items []string
	for _, page := range pages {
		items = append(items, page...)
	}
	return strings.Join(items, " "), nil
}

func (s *FileExtractService) extractDOCX(data []byte) (string, error) {
	text, err := s.docx.RawText(data)
	if err != nil {
		return "", newPipelineError(KindParseFailure, "Could not parse DOCX file.", err)
	}
	return text, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (s *FileExtractService) extractTXT(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", newPipelineError(KindParseFailure, "Failed to read TXT file.", errors.New("content is not valid UTF-8"))
	}
	return string(data), nil
}

// LedongthucPDF reads PDFs with github.com/ledongthuc/pdf. Each text row of a page is one item.
type LedongthucPDF struct{}

func (LedongthucPDF) PageItems(data []byte) (pages [][]string, err error) {
	// the parser panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf parser: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	totalPage := reader.NumPage()
	pages = make([][]string, 0, totalPage)
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}

		rows, rowErr := page.GetTextByRow()
		if rowErr != nil {
			return nil, fmt.Errorf("page %d: %w", pageIndex, rowErr)
		}

		items := make([]string, 0, len(rows))
		for _, row := range rows {
			var b strings.Builder
			for _, word := range row.Content {
				b.WriteString(word.S)
			}
			if b.Len() > 0 {
				items = append(items, b.String())
			}
		}
		pages = append(pages, items)
	}

	return pages, nil
}

// ZipDOCX reads word/document.xml out of the DOCX archive. Paragraphs are
// followed by a blank line, tabs and breaks are kept.
type ZipDOCX struct{}

func (ZipDOCX) RawText(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return documentXMLText(rc)
	}

	return "", fmt.Errorf("docx document.xml not found")
}

func documentXMLText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br", "cr":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}
