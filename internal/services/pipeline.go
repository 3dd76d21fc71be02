package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"precisionquiz-backend/internal/models"
)

// DefaultMinTextLength is the shortest trimmed text worth sending for generation.
const DefaultMinTextLength = 100

// StatusPublisher receives every pipeline status transition.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, update models.StatusUpdate) error
}

type TextExtractor interface {
	Extract(doc models.Document) (string, error)
}

type MCQGenerator interface {
	Generate(ctx context.Context, text string, params models.GenerationParams) ([]models.MCQ, error)
}

// Pipeline runs document -> text -> questions strictly in sequence.
type Pipeline struct {
	extractor     TextExtractor
	generator     MCQGenerator
	publisher     StatusPublisher
	minTextLength int
}

func NewPipeline(extractor TextExtractor, generator MCQGenerator, publisher StatusPublisher, minTextLength int) *Pipeline {
	if minTextLength <= 0 {
		minTextLength = DefaultMinTextLength
	}
	return &Pipeline{
		extractor:     extractor,
		generator:     generator,
		publisher:     publisher,
		minTextLength: minTextLength,
	}
}

// Run returns a non-empty question list or a *PipelineError. Errors from the
// extractor and generator are passed through unchanged.
func (p *Pipeline) Run(ctx context.Context, sessionID uuid.UUID, doc models.Document, params models.GenerationParams) ([]models.MCQ, error) {
	log.Printf("Pipeline %s: starting (file=%s, type=%s, count=%d, difficulty=%s)",
		sessionID, doc.Filename, doc.MIMEType, params.Count, params.Difficulty)

	p.publish(ctx, sessionID, doc.Filename, models.PipelineExtracting, 1, "Extracting text")
	text, err := p.extractor.Extract(doc)
	if err != nil {
		return nil, p.fail(ctx, sessionID, doc.Filename, err)
	}

	if n := len(strings.TrimSpace(text)); n < p.minTextLength {
		return nil, p.fail(ctx, sessionID, doc.Filename, newPipelineError(KindInsufficientText,
			"Could not extract sufficient text.", fmt.Errorf("%d characters after trimming, need %d", n, p.minTextLength)))
	}

	p.publish(ctx, sessionID, doc.Filename, models.PipelineGenerating, 2, "Generating questions")
	mcqs, err := p.generator.Generate(ctx, text, params)
	if err != nil {
		return nil, p.fail(ctx, sessionID, doc.Filename, err)
	}
	if len(mcqs) == 0 {
		return nil, p.fail(ctx, sessionID, doc.Filename, newPipelineError(KindNoQuestions,
			"The AI could not generate any questions.", nil))
	}

	p.publish(ctx, sessionID, doc.Filename, models.PipelineReady, 3, "Quiz ready")
	log.Printf("Pipeline %s: ready with %d questions", sessionID, len(mcqs))
	return mcqs, nil
}

func (p *Pipeline) fail(ctx context.Context, sessionID uuid.UUID, filename string, err error) error {
	kind := KindOf(err)
	log.Printf("Pipeline %s: failed (%s): %v", sessionID, kind, err)

	if p.publisher != nil {
		update := models.StatusUpdate{
			SessionID: sessionID,
			Status:    models.PipelineFailed,
			StepName:  "Failed",
			Filename:  filename,
			ErrorCode: string(kind),
			Message:   UserMessage(kind),
		}
		if pubErr := p.publisher.PublishStatus(ctx, update); pubErr != nil {
			log.Printf("WARNING: failed to publish pipeline status for %s: %v", sessionID, pubErr)
		}
	}
	return err
}

func (p *Pipeline) publish(ctx context.Context, sessionID uuid.UUID, filename string, status models.PipelineStatus, step int, stepName string) {
	if p.publisher == nil {
		return
	}
	update := models.StatusUpdate{
		SessionID: sessionID,
		Status:    status,
		Step:      step,
		StepName:  stepName,
		Filename:  filename,
	}
	if err := p.publisher.PublishStatus(ctx, update); err != nil {
		log.Printf("WARNING: failed to publish pipeline status for %s: %v", sessionID, err)
	}
}
