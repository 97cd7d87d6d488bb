package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiVision implements provider.VisionModel on the Gemini API
type GeminiVision struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	logger *zap.Logger
}

// NewGeminiVision creates a client for the given model
func NewGeminiVision(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*GeminiVision, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	return &GeminiVision{
		client: client,
		model:  model,
		name:   "gemini:" + modelName,
		logger: logger,
	}, nil
}

// GenerateContent sends the prompt and image and returns the concatenated text parts
func (g *GeminiVision) GenerateContent(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	resp, err := g.model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: mimeType, Data: image},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		g.logger.Warn("Gemini returned no text", zap.Int("candidates", len(resp.Candidates)))
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

func (g *GeminiVision) Name() string {
	return g.name
}

// Close releases the underlying connection
func (g *GeminiVision) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		// First candidate only
		break
	}
	return sb.String()
}
