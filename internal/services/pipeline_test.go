package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"precisionquiz-backend/internal/models"
)

type stubExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubExtractor) Extract(models.Document) (string, error) {
	s.calls++
	return s.text, s.err
}

type stubGenerator struct {
	mcqs  []models.MCQ
	err   error
	calls int
}

func (s *stubGenerator) Generate(context.Context, string, models.GenerationParams) ([]models.MCQ, error) {
	s.calls++
	return s.mcqs, s.err
}

type recordingPublisher struct {
	updates []models.StatusUpdate
}

func (r *recordingPublisher) PublishStatus(_ context.Context, u models.StatusUpdate) error {
	r.updates = append(r.updates, u)
	return nil
}

func (r *recordingPublisher) statuses() []models.PipelineStatus {
	out := make([]models.PipelineStatus, len(r.updates))
	for i, u := range r.updates {
		out[i] = u.Status
	}
	return out
}

var longText = strings.Repeat("Photosynthesis converts light energy into chemical energy. ", 5)

func TestPipeline_Success(t *testing.T) {
	ext := &stubExtractor{text: longText}
	gen := &stubGenerator{mcqs: sampleMCQs(3, models.DifficultyEasy)}
	pub := &recordingPublisher{}

	p := NewPipeline(ext, gen, pub, 100)
	got, err := p.Run(context.Background(), uuid.New(), models.Document{Filename: "bio.txt", MIMEType: models.MIMEText}, models.DefaultGenerationParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(got))
	}

	want := []models.PipelineStatus{models.PipelineExtracting, models.PipelineGenerating, models.PipelineReady}
	if gotStatuses := pub.statuses(); len(gotStatuses) != len(want) {
		t.Fatalf("expected statuses %v, got %v", want, gotStatuses)
	} else {
		for i := range want {
			if gotStatuses[i] != want[i] {
				t.Fatalf("expected statuses %v, got %v", want, gotStatuses)
			}
		}
	}
}

func TestPipeline_InsufficientTextSkipsGeneration(t *testing.T) {
	ext := &stubExtractor{text: "   short   "}
	gen := &stubGenerator{}
	pub := &recordingPublisher{}

	_, err := NewPipeline(ext, gen, pub, 100).Run(context.Background(), uuid.New(), models.Document{}, models.DefaultGenerationParams())
	if KindOf(err) != KindInsufficientText {
		t.Fatalf("expected INSUFFICIENT_TEXT, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator must not run after insufficient text")
	}
	last := pub.updates[len(pub.updates)-1]
	if last.Status != models.PipelineFailed || last.ErrorCode != string(KindInsufficientText) {
		t.Fatalf("expected failed status with error code, got %+v", last)
	}
}

func TestPipeline_PropagatesExtractorError(t *testing.T) {
	extErr := newPipelineError(KindUnsupportedType, "Unsupported file type.", nil)
	ext := &stubExtractor{err: extErr}
	gen := &stubGenerator{}

	_, err := NewPipeline(ext, gen, nil, 0).Run(context.Background(), uuid.New(), models.Document{MIMEType: "image/png"}, models.DefaultGenerationParams())
	if !errors.Is(err, extErr) {
		t.Fatalf("expected extractor error unchanged, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator must not run after extraction failure")
	}
}

func TestPipeline_ZeroQuestionsIsNoQuestions(t *testing.T) {
	ext := &stubExtractor{text: longText}
	gen := &stubGenerator{mcqs: []models.MCQ{}}

	_, err := NewPipeline(ext, gen, &recordingPublisher{}, 0).Run(context.Background(), uuid.New(), models.Document{}, models.DefaultGenerationParams())
	if KindOf(err) != KindNoQuestions {
		t.Fatalf("expected NO_QUESTIONS, got %v", err)
	}
}

func TestPipeline_PropagatesGeneratorError(t *testing.T) {
	genErr := newPipelineError(KindServiceUnavailable, "AI service request failed.", errors.New("timeout"))
	ext := &stubExtractor{text: longText}
	gen := &stubGenerator{err: genErr}

	_, err := NewPipeline(ext, gen, nil, 0).Run(context.Background(), uuid.New(), models.Document{}, models.DefaultGenerationParams())
	if KindOf(err) != KindServiceUnavailable {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
}
