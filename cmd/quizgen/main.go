package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"precisionquiz-backend/internal/config"
	"precisionquiz-backend/internal/models"
	"precisionquiz-backend/internal/services"
)

func main() {
	var (
		filePath     = flag.String("file", "", "Document to build the quiz from: .pdf, .docx or .txt (required)")
		declaredType = flag.String("type", "", "Declared MIME type (default: derived from the file extension)")
		numQuestions = flag.Int("questions", models.DefaultQuestionCount, "Number of questions to generate")
		difficulty   = flag.String("difficulty", string(models.DifficultyEasy), "Difficulty level (easy, medium, hard, any)")
		playMode     = flag.Bool("play", false, "Take the quiz interactively in the terminal")
		csvOut       = flag.String("csv", "", "Write generated questions as CSV to this path")
		pdfOut       = flag.String("pdf", "", "Write generated questions as PDF to this path")
		resultsCSV   = flag.String("results-csv", "", "Write your answers as CSV to this path (with -play)")
		resultsPDF   = flag.String("results-pdf", "", "Write your answers as PDF to this path (with -play)")
	)

	flag.Parse()

	if *filePath == "" {
		log.Fatal("A document is required. Use -file flag.")
	}

	level, err := models.ParseDifficulty(*difficulty)
	if err != nil {
		log.Fatalf("Invalid -difficulty: %v", err)
	}
	params := models.GenerationParams{Count: *numQuestions, Difficulty: level}
	if err := params.Validate(); err != nil {
		log.Fatalf("Invalid generation parameters: %v", err)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *filePath, err)
	}
	mimeType := *declaredType
	if mimeType == "" {
		mimeType = models.MIMETypeForExtension(strings.ToLower(filepath.Ext(*filePath)))
	}
	doc := models.Document{Filename: filepath.Base(*filePath), MIMEType: mimeType, Data: data}

	cfg := config.LoadGenerator()
	gemini, err := services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, 1, cfg.GeminiTimeout)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer gemini.Close()

	pipeline := services.NewPipeline(
		services.NewFileExtractService(),
		services.NewQuestionGenerator(gemini),
		nil,
		cfg.MinTextLength,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	fmt.Printf("⏳ Generating %d %s questions from %s...\n", params.Count, params.Difficulty, doc.Filename)
	mcqs, err := pipeline.Run(ctx, uuid.New(), doc, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s\n", services.UserMessage(services.KindOf(err)))
		log.Fatalf("Generation failed: %v", err)
	}
	fmt.Printf("✓ %d questions ready\n\n", len(mcqs))

	writeText(*csvOut, services.QuestionsCSV(mcqs))
	writePDF(*pdfOut, func() ([]byte, error) { return services.QuestionsPDF(mcqs) })

	if !*playMode {
		for i, q := range mcqs {
			printQuestion(os.Stdout, i+1, len(mcqs), q.Question, q.Options)
			fmt.Printf("   Answer: %s (%s)\n\n", q.CorrectAnswer, q.Difficulty)
		}
		return
	}

	session := services.NewQuizSession(uuid.New())
	if err := session.Start(mcqs, doc.Filename); err != nil {
		log.Fatalf("Failed to start quiz: %v", err)
	}
	if err := play(session, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Quiz aborted: %v", err)
	}

	writeText(*resultsCSV, services.ResultsCSV(session.Answers))
	writePDF(*resultsPDF, func() ([]byte, error) { return services.ResultsPDF(session.Answers) })
}

// writeText skips empty content, so nothing is created for an empty export.
func writeText(path, content string) {
	if path == "" || content == "" {
		return
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	fmt.Printf("💾 Wrote %s\n", path)
}

func writePDF(path string, render func() ([]byte, error)) {
	if path == "" {
		return
	}
	body, err := render()
	if err != nil {
		log.Fatalf("Failed to render %s: %v", path, err)
	}
	if len(body) == 0 {
		return
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	fmt.Printf("💾 Wrote %s\n", path)
}
