package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"edu-document-pipeline/internal/domain"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"
)

const (
	assessmentModel        = "gemini-2.0-flash"
	maxAssessmentQuestions = 8
	maxPromptBlocks        = 40
)

// VertexAssessmentGenerator drafts a student-facing activity from approved
// document content using Vertex AI. It is the downstream consumer of the
// pipeline; generation failures are ordinary stage failures, never fatal.
type VertexAssessmentGenerator struct {
	assessments domain.AssessmentRepository
	logger      domain.Logger
	genaiClient *genai.Client
}

// NewAssessmentGenerator creates a Vertex-backed generator.
func NewAssessmentGenerator(assessments domain.AssessmentRepository, logger domain.Logger, projectID, location string) (*VertexAssessmentGenerator, error) {
	client, err := genai.NewClient(context.Background(), projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}
	return &VertexAssessmentGenerator{
		assessments: assessments,
		logger:      logger,
		genaiClient: client,
	}, nil
}

// Generate builds a prompt from the document's blocks and correlated images,
// asks the model for multiple-choice items and stores the result as a draft.
func (g *VertexAssessmentGenerator) Generate(ctx context.Context, doc *domain.Document, blocks []*domain.TextBlock, correlations []*domain.Correlation, token string) error {
	prompt := g.buildPrompt(doc, blocks, correlations)

	model := g.genaiClient.GenerativeModel(assessmentModel)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return fmt.Errorf("assessment generation failed: %w", err)
	}

	questions, err := parseQuestions(resp)
	if err != nil {
		return fmt.Errorf("could not parse generated questions: %w", err)
	}
	if len(questions) == 0 {
		return fmt.Errorf("model returned no usable questions")
	}
	if len(questions) > maxAssessmentQuestions {
		questions = questions[:maxAssessmentQuestions]
	}

	assessment := &domain.Assessment{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Title:      doc.Title,
		Language:   doc.PrimaryLanguage,
		Questions:  questions,
		Status:     "draft",
		CreatedAt:  time.Now().UTC(),
	}
	if err := g.assessments.Insert(assessment, token); err != nil {
		return fmt.Errorf("failed to store draft assessment: %w", err)
	}

	g.logger.Info("Draft assessment generated", "doc_id", doc.ID, "questions", len(questions))
	return nil
}

func (g *VertexAssessmentGenerator) buildPrompt(doc *domain.Document, blocks []*domain.TextBlock, correlations []*domain.Correlation) string {
	correlated := make(map[string]bool)
	for _, c := range correlations {
		correlated[c.TextBlockID] = true
	}

	var sb strings.Builder
	sb.WriteString("You are an educational content author. Using only the material below, ")
	sb.WriteString("write multiple-choice questions as a JSON array of objects with fields ")
	sb.WriteString(`"prompt", "choices" (4 strings) and "correct_index" (0-3). `)
	fmt.Fprintf(&sb, "Write at most %d questions in the document's language (%s), grade level %s, subject %s.\n\n",
		maxAssessmentQuestions, doc.PrimaryLanguage, doc.GradeLevel, doc.Subject)

	count := 0
	for _, b := range blocks {
		if count >= maxPromptBlocks {
			break
		}
		switch b.Category {
		case domain.BlockParagraph, domain.BlockQuestion, domain.BlockHeading, domain.BlockInstruction:
		default:
			continue
		}
		fmt.Fprintf(&sb, "[%s p%d", b.Category, b.PageNumber)
		if correlated[b.ID] {
			sb.WriteString(", has related image")
		}
		sb.WriteString("] ")
		sb.WriteString(b.Content)
		sb.WriteString("\n")
		count++
	}
	return sb.String()
}

func parseQuestions(resp *genai.GenerateContentResponse) ([]domain.AssessmentQuestion, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty model response")
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw.WriteString(string(text))
		}
	}

	payload := strings.TrimSpace(raw.String())
	// Models occasionally wrap JSON in a fenced block even in JSON mode.
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")

	var questions []domain.AssessmentQuestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &questions); err != nil {
		return nil, err
	}

	valid := questions[:0]
	for _, q := range questions {
		if strings.TrimSpace(q.Prompt) == "" || len(q.Choices) < 2 {
			continue
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices) {
			continue
		}
		valid = append(valid, q)
	}
	return valid, nil
}
