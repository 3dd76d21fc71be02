package services

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"precisionquiz-backend/internal/models"
)

const (
	QuestionsCSVFilename = "precision-quiz-questions.csv"
	QuestionsPDFFilename = "precision-quiz-questions.pdf"
	ResultsCSVFilename   = "precision-quiz-results.csv"
	ResultsPDFFilename   = "precision-quiz-results.pdf"
)

var (
	questionsCSVHeader = []string{"Question", "Option A", "Option B", "Option C", "Option D", "Correct Answer", "Difficulty"}
	resultsCSVHeader   = []string{"Question", "Your Answer", "Correct Answer", "Result"}
)

// EscapeCSV quotes a field only when it holds a double quote, a comma or a
// newline, doubling any embedded quotes.
func EscapeCSV(field string) string {
	if !strings.ContainsAny(field, "\",\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func csvRow(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = EscapeCSV(f)
	}
	return strings.Join(escaped, ",")
}

// optionCells always yields four cells.
func optionCells(options []string) []string {
	cells := make([]string, 4)
	copy(cells, options)
	return cells
}

func resultLabel(correct bool) string {
	if correct {
		return "Correct"
	}
	return "Incorrect"
}

// QuestionsCSV renders the generated questions. Empty input yields "".
func QuestionsCSV(mcqs []models.MCQ) string {
	if len(mcqs) == 0 {
		return ""
	}

	lines := make([]string, 0, len(mcqs)+1)
	lines = append(lines, strings.Join(questionsCSVHeader, ","))
	for _, q := range mcqs {
		fields := append([]string{q.Question}, optionCells(q.Options)...)
		fields = append(fields, q.CorrectAnswer, string(q.Difficulty))
		lines = append(lines, csvRow(fields))
	}
	return strings.Join(lines, "\n")
}

// ResultsCSV renders answered questions. Empty input yields "".
func ResultsCSV(answers []models.UserAnswer) string {
	if len(answers) == 0 {
		return ""
	}

	lines := make([]string, 0, len(answers)+1)
	lines = append(lines, strings.Join(resultsCSVHeader, ","))
	for _, a := range answers {
		lines = append(lines, csvRow([]string{a.Question, a.SelectedAnswer, a.CorrectAnswer, resultLabel(a.IsCorrect)}))
	}
	return strings.Join(lines, "\n")
}

// ResultsSummary is the score line printed above the results table.
func ResultsSummary(r models.QuizResult) string {
	return fmt.Sprintf("Score: %d/%d (%d%%)", r.Score, r.Total, r.Percentage)
}

type rgb struct{ r, g, b int }

var (
	headerFill   = rgb{59, 130, 246}
	correctColor = rgb{0, 128, 0}
	wrongColor   = rgb{255, 0, 0}
)

type pdfTable struct {
	orientation string
	title       string
	summary     string
	headers     []string
	widths      []float64
	rows        [][]string
	// textColor overrides the body text color of a single cell.
	textColor func(row, col int) (rgb, bool)
}

// QuestionsPDF renders the generated questions as a landscape table. Empty input yields nil.
func QuestionsPDF(mcqs []models.MCQ) ([]byte, error) {
	if len(mcqs) == 0 {
		return nil, nil
	}

	rows := make([][]string, len(mcqs))
	for i, q := range mcqs {
		row := append([]string{strconv.Itoa(i + 1), q.Question}, optionCells(q.Options)...)
		rows[i] = append(row, q.CorrectAnswer, string(q.Difficulty))
	}

	return renderPDFTable(pdfTable{
		orientation: "L",
		title:       "Precision Quiz - Generated Questions",
		headers:     append([]string{"#"}, questionsCSVHeader...),
		widths:      []float64{8, 70, 38, 38, 38, 38, 30, 17},
		rows:        rows,
	})
}

// ResultsPDF renders answered questions with a score line. Empty input yields nil.
func ResultsPDF(answers []models.UserAnswer) ([]byte, error) {
	if len(answers) == 0 {
		return nil, nil
	}

	rows := make([][]string, len(answers))
	for i, a := range answers {
		rows[i] = []string{strconv.Itoa(i + 1), a.Question, a.SelectedAnswer, a.CorrectAnswer, resultLabel(a.IsCorrect)}
	}

	return renderPDFTable(pdfTable{
		orientation: "P",
		title:       "Precision Quiz - Results",
		summary:     ResultsSummary(ScoreAnswers(answers)),
		headers:     append([]string{"#"}, resultsCSVHeader...),
		widths:      []float64{8, 80, 40, 40, 22},
		rows:        rows,
		textColor: func(row, col int) (rgb, bool) {
			if col != 4 {
				return rgb{}, false
			}
			if answers[row].IsCorrect {
				return correctColor, true
			}
			return wrongColor, true
		},
	})
}

const (
	pdfMargin  = 10.0
	pdfLineHt  = 4.0
	pdfCellPad = 1.5
	pdfFontSz  = 8.0
)

func renderPDFTable(t pdfTable) ([]byte, error) {
	pdf := fpdf.New(t.orientation, "mm", "A4", "")
	pdf.SetTitle(t.title, true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	_, pageHt := pdf.GetPageSize()
	bottom := pageHt - pdfMargin

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(t.title), "", 1, "L", false, 0, "")
	if t.summary != "" {
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, tr(t.summary), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", pdfFontSz)
		pdf.SetFillColor(headerFill.r, headerFill.g, headerFill.b)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetDrawColor(200, 200, 200)
		for i, h := range t.headers {
			pdf.CellFormat(t.widths[i], pdfLineHt+2*pdfCellPad, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", pdfFontSz)
		pdf.SetTextColor(0, 0, 0)
	}
	drawHeader()

	for r, row := range t.rows {
		cells := make([][][]byte, len(row))
		lines := 1
		for c, text := range row {
			cells[c] = pdf.SplitLines([]byte(tr(text)), t.widths[c]-2*pdfCellPad)
			if len(cells[c]) > lines {
				lines = len(cells[c])
			}
		}
		rowHt := float64(lines)*pdfLineHt + 2*pdfCellPad

		y := pdf.GetY()
		if y+rowHt > bottom {
			pdf.AddPage()
			drawHeader()
			y = pdf.GetY()
		}

		x := pdfMargin
		for c := range row {
			pdf.Rect(x, y, t.widths[c], rowHt, "D")

			if t.textColor != nil {
				if col, ok := t.textColor(r, c); ok {
					pdf.SetTextColor(col.r, col.g, col.b)
				}
			}
			lineY := y + pdfCellPad
			for _, line := range cells[c] {
				pdf.SetXY(x+pdfCellPad, lineY)
				pdf.CellFormat(t.widths[c]-2*pdfCellPad, pdfLineHt, string(line), "", 0, "L", false, 0, "")
				lineY += pdfLineHt
			}
			pdf.SetTextColor(0, 0, 0)

			x += t.widths[c]
		}
		pdf.SetXY(pdfMargin, y+rowHt)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", t.title, err)
	}
	return buf.Bytes(), nil
}
