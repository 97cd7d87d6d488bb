// Package config loads service configuration files with viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// configDir is the root directory holding per-environment config files.
const configDir = "configs"

// Load reads {serviceName}.yaml and decodes it into out using `yaml` struct tags.
//
// The file is looked up in CONFIG_PATH when set, otherwise in configs/{APP_ENV}
// (default dev), falling back to configs/example. Every key present in the
// file can be overridden by an environment variable named
// {SERVICENAME}_{SECTION}_{KEY}, e.g. PAYMENT_JWT_SECRET.
func Load(serviceName string, out interface{}) error {
	v, err := newViper(serviceName)
	if err != nil {
		return err
	}

	if err := v.Unmarshal(out, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	return nil
}

func newViper(serviceName string) (*viper.Viper, error) {
	v := viper.New()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	v.SetConfigType("yaml")

	v.SetEnvPrefix(strings.ToUpper(serviceName))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		// An explicit file path wins over directory lookup
		if filepath.Ext(configPath) != "" {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
			return v, nil
		}
		v.AddConfigPath(configPath)
	} else {
		v.AddConfigPath(filepath.Join(configDir, env))
	}

	v.SetConfigName(serviceName)
	if err := v.ReadInConfig(); err != nil {
		v.AddConfigPath(filepath.Join(configDir, "example"))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	return v, nil
}
