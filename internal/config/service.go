package config

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	ClientURL   string `yaml:"client_url"`
}

// SupabaseConfig is used for admin user lookups.
type SupabaseConfig struct {
	ProjectURL     string `yaml:"project_url"`
	ServiceRoleKey string `yaml:"service_role_key"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Output      string `yaml:"output"`
	FilePath    string `yaml:"file_path"`
	Development bool   `yaml:"development"`
}

type SecurityConfig struct {
	// EncryptionKey is a 64 hex character AES-256 key for secrets at rest
	EncryptionKey string `yaml:"encryption_key"`
}
