package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/examgen/examgen/internal/errs"
	"github.com/examgen/examgen/internal/models"
)

const modelName = "gemini-2.0-flash"

// Client wraps the Gemini SDK for the two generation flows: quiz questions
// as JSON and test papers as LaTeX source.
type Client struct {
	genai  *genai.Client
	logger *zap.Logger
}

func NewClient(ctx context.Context, apiKey string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, &errs.ConfigError{Missing: "GEMINI_API_KEY"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{genai: client, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.genai.Close()
}

// GenerateQuiz asks the model for a quiz as a JSON array and parses it.
func (c *Client) GenerateQuiz(ctx context.Context, form models.FormInput) ([]models.QuizQuestion, error) {
	model := c.genai.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	model.SetMaxOutputTokens(4096)

	resp, err := model.GenerateContent(ctx, genai.Text(quizPrompt(form)))
	if err != nil {
		return nil, classifyError(err)
	}

	text := StripCodeFences(responseText(resp))

	var questions []models.QuizQuestion
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		c.logger.Error("quiz response is not valid JSON",
			zap.Error(err),
			zap.String("raw_response", truncate(text, 2048)))
		return nil, fmt.Errorf("parse quiz questions from model response: %w", err)
	}

	return questions, nil
}

// GenerateTestPaper asks the model for a complete LaTeX test paper.
func (c *Client) GenerateTestPaper(ctx context.Context, form models.FormInput) (string, error) {
	model := c.genai.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	model.SetMaxOutputTokens(2048)

	resp, err := model.GenerateContent(ctx, genai.Text(testPaperPrompt(form)))
	if err != nil {
		return "", classifyError(err)
	}

	latex := strings.TrimSpace(StripCodeFences(responseText(resp)))

	if !ValidateLatexStructure(latex) {
		// Surfaced as a warning only; a broken paper still fails loudly at
		// the conversion step with the compiler's own diagnostics.
		c.logger.Warn("generated LaTeX failed structure validation",
			zap.String("subject", form.Subject),
			zap.String("difficulty", form.Difficulty))
	}

	return latex, nil
}

// Flattens all text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	return sb.String()
}

func classifyError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "temporarily unavailable") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "503") {
		return &errs.ProviderUnavailableError{Provider: "gemini"}
	}
	return fmt.Errorf("gemini request failed: %w", err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
