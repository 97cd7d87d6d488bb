package config

import "fmt"

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// AIConfig selects and configures the vision model used for screenshots.
type AIConfig struct {
	Provider     string `yaml:"provider"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`
	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model"`
}

func (c AIConfig) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("ai.gemini_api_key is required for provider gemini")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("ai.openai_api_key is required for provider openai")
		}
	default:
		return fmt.Errorf("unsupported ai.provider %q", c.Provider)
	}
	return nil
}
