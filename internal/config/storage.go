package config

import "time"

const defaultSignedURLTTL = 15 * time.Minute

// StorageConfig configures the S3-compatible bucket for screenshots.
type StorageConfig struct {
	Region       string        `yaml:"region"`
	Bucket       string        `yaml:"bucket"`
	Endpoint     string        `yaml:"endpoint"`
	AccessKey    string        `yaml:"access_key"`
	SecretKey    string        `yaml:"secret_key"`
	SignedURLTTL time.Duration `yaml:"signed_url_ttl"`
}

type EmailConfig struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Enabled reports whether outgoing mail is configured.
func (c EmailConfig) Enabled() bool {
	return c.SMTPHost != "" && c.From != ""
}

type RedisConfig struct {
	Addr                string `yaml:"addr"`
	Password            string `yaml:"password"`
	DB                  int    `yaml:"db"`
	NotificationChannel string `yaml:"notification_channel"`
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}
