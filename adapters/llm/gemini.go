package llm

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/aurayouth/server/domain/repositories"
)

const defaultModel = "gemini-2.0-flash"

const systemPrompt = "You are a warm, supportive mental-health companion for young people. " +
	"Listen empathetically, validate feelings, and gently encourage healthy coping. " +
	"Keep replies short and conversational. Never give medical diagnoses. " +
	"If the user seems in danger, encourage them to contact local emergency services."

// GeminiGenerator implements the ReplyGenerator interface using Google's
// Gemini API. Every failure mode is reported as unavailable so the responder
// can fall through to its canned tiers.
type GeminiGenerator struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

// NewGeminiGenerator creates a Gemini-backed reply generator.
func NewGeminiGenerator(logger *zap.Logger) (*GeminiGenerator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		logger: logger,
		model:  defaultModel,
	}, nil
}

// GenerateReply implements repositories.ReplyGenerator.
func (g *GeminiGenerator) GenerateReply(ctx context.Context, req repositories.ReplyRequest) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	for _, msg := range req.Transcript {
		var role genai.Role = genai.RoleUser
		if msg.Role == repositories.AssistantRole {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	prompt := fmt.Sprintf("The user seems %s (confidence %.2f). They wrote: %s",
		req.Emotion, req.Confidence, req.Message)
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.7)),
		MaxOutputTokens: 256,
	})
	if err != nil {
		g.logger.Warn("Gemini generation failed", zap.Error(err))
		return "", repositories.ErrGeneratorUnavailable
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", repositories.ErrGeneratorUnavailable
	}

	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		text += part.Text
	}
	if text == "" {
		return "", repositories.ErrGeneratorUnavailable
	}

	return text, nil
}
