package provider

import (
	"context"
	"fmt"

	"github.com/stashway/stashway-backend/internal/config"
	"github.com/stashway/stashway-backend/internal/domain/provider"
	geminiProvider "github.com/stashway/stashway-backend/internal/infrastructure/provider/gemini"
	openaiProvider "github.com/stashway/stashway-backend/internal/infrastructure/provider/openai"
	"go.uber.org/zap"
)

// Factory creates vision model providers based on the configured provider type
type Factory struct {
	config config.AIConfig
	logger *zap.Logger
}

// NewFactory creates a new provider factory
func NewFactory(cfg config.AIConfig, logger *zap.Logger) *Factory {
	return &Factory{
		config: cfg,
		logger: logger,
	}
}

// GetVisionModel returns the provider named by ai.provider
func (f *Factory) GetVisionModel(ctx context.Context) (provider.VisionModel, error) {
	switch f.config.Provider {
	case config.ProviderGemini:
		return f.createGeminiProvider(ctx)
	case config.ProviderOpenAI:
		return f.createOpenAIProvider()
	default:
		return nil, fmt.Errorf("unsupported vision provider: %s", f.config.Provider)
	}
}

func (f *Factory) createGeminiProvider(ctx context.Context) (provider.VisionModel, error) {
	if f.config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("Gemini API key not configured")
	}

	model, err := geminiProvider.NewGeminiVision(ctx, f.config.GeminiAPIKey, f.config.GeminiModel, f.logger)
	if err != nil {
		return nil, err
	}
	f.logger.Info("Vision provider initialized", zap.String("provider", model.Name()))
	return model, nil
}

func (f *Factory) createOpenAIProvider() (provider.VisionModel, error) {
	if f.config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}

	model := openaiProvider.NewOpenAIVision(f.config.OpenAIAPIKey, f.config.OpenAIModel, f.logger)
	f.logger.Info("Vision provider initialized", zap.String("provider", model.Name()))
	return model, nil
}
