// Package config loads the settings of the saveable command from an
// optional config file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Prefix of environment variables, SAVEABLE_DATABASE_URL sets database.url.
const Prefix = "SAVEABLE_"

type (
	Config struct {
		Database Database `mapstructure:"database"`
		Log      Log      `mapstructure:"log"`
	}

	Database struct {
		Driver string `mapstructure:"driver"`
		URL    string `mapstructure:"url"`
	}

	Log struct {
		SQL bool `mapstructure:"sql"`
	}
)

var defaults = map[string]interface{}{
	"database.driver": "pq",
	"database.url":    "postgres://localhost:5432/saveable?sslmode=disable",
	"log.sql":         false,
}

// Load reads file (if not empty) and the environment variables starting
// with Prefix into a Config. Environment variables win over the file,
// the file wins over defaults. A missing file is an error only when it
// was named explicitly.
func Load(file string) (*Config, error) {
	var c Config
	if err := LoadInto(Prefix, file, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadInto is like Load but with any prefix and target struct.
func LoadInto(prefix, file string, target interface{}) error {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("saveable")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	// SAVEABLE_DATABASE_URL -> database.url
	prefixUpper := strings.ToUpper(prefix)
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], prefixUpper) {
			continue
		}
		propKey := strings.TrimPrefix(pair[0], prefixUpper)
		propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
		propKey = strings.TrimPrefix(propKey, ".")
		v.Set(propKey, pair[1])
	}

	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}
