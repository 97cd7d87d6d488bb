package openai

import (
	"context"
	"encoding/base64"
	"fmt"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// OpenAIVision implements provider.VisionModel with chat completions
type OpenAIVision struct {
	client *openaisdk.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIVision creates a client. Extra options are appended, e.g. option.WithBaseURL in tests.
func NewOpenAIVision(apiKey, model string, logger *zap.Logger, opts ...option.RequestOption) *OpenAIVision {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIVision{
		client: openaisdk.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

// GenerateContent sends the prompt with the image inlined as a data URL
func (o *OpenAIVision) GenerateContent(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	completion, err := o.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.F(openaisdk.ChatModel(o.model)),
		Messages: openaisdk.F([]openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessageParts(
				openaisdk.TextPart(prompt),
				openaisdk.ImagePart(dataURL(image, mimeType)),
			),
		}),
		Temperature: openaisdk.F(0.0),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		o.logger.Warn("OpenAI returned no choices", zap.String("model", o.model))
		return "", fmt.Errorf("openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func (o *OpenAIVision) Name() string {
	return "openai:" + o.model
}

func dataURL(image []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
}
