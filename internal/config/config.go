package config

import (
	"fmt"

	pkgconfig "github.com/stashway/stashway-backend/pkg/config"
)

const serviceName = "payment"

type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	JWT      JWTConfig      `yaml:"jwt"`
	Supabase SupabaseConfig `yaml:"supabase"`
	MMG      MMGConfig      `yaml:"mmg"`
	AI       AIConfig       `yaml:"ai"`
	Storage  StorageConfig  `yaml:"storage"`
	Email    EmailConfig    `yaml:"email"`
	Redis    RedisConfig    `yaml:"redis"`
	Security SecurityConfig `yaml:"security"`
}

// LoadConfig reads configs/{APP_ENV}/payment.yaml (or CONFIG_PATH) and applies
// PAYMENT_* environment overrides.
func LoadConfig() (*Config, error) {
	cfg := Default()
	if err := pkgconfig.Load(serviceName, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{Name: serviceName, Environment: "dev"},
		Server: ServerConfig{
			HTTP: HTTPConfig{Host: "0.0.0.0", Port: 8080},
			GRPC: GRPCConfig{Host: "0.0.0.0", Port: 9090},
		},
		Log:     LogConfig{Level: "info", Format: "json", Output: "stdout"},
		MMG:     DefaultMMGConfig(),
		AI:      AIConfig{Provider: ProviderGemini, GeminiModel: "gemini-2.0-flash", OpenAIModel: "gpt-4o"},
		Storage: StorageConfig{Region: "us-east-1", SignedURLTTL: defaultSignedURLTTL},
		Email:   EmailConfig{SMTPPort: 587},
		Redis:   RedisConfig{NotificationChannel: "notifications"},
	}
}

// Validate checks the keys the service cannot start without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.Security.EncryptionKey == "" {
		return fmt.Errorf("security.encryption_key is required")
	}
	if err := c.MMG.Validate(); err != nil {
		return err
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	return nil
}
