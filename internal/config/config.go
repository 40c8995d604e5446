package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ScoreWeightsConfig overrides the scoring policy
type ScoreWeightsConfig struct {
	Attendance float64 `yaml:"attendance" validate:"gte=0"`
	Overlap    float64 `yaml:"overlap" validate:"gte=0"`
}

// Config represents the application configuration. Every field is
// optional; unset fields fall back to the engine defaults.
type Config struct {
	ScoreWeights *ScoreWeightsConfig `yaml:"scoreWeights,omitempty"`
	TopN         int                 `yaml:"topN,omitempty" validate:"omitempty,min=1"`
	MaxMembers   int                 `yaml:"maxMembers,omitempty" validate:"omitempty,min=1"`
	MaxDates     int                 `yaml:"maxDates,omitempty" validate:"omitempty,min=1"`

	// UseDefaultWeightsOnInvalid opts into silently replacing unusable
	// score weights with the defaults instead of failing the call
	UseDefaultWeightsOnInvalid bool `yaml:"useDefaultWeightsOnInvalid,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from quedamos_config.yaml.
// It looks for the config file in the current directory first, then in
// the user's home directory. A missing file is not an error: every
// setting has a default, so the zero config is returned.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.ScoreWeights != nil && cfg.ScoreWeights.Attendance+cfg.ScoreWeights.Overlap <= 0 {
		return fmt.Errorf("config validation failed: scoreWeights must sum to a positive number")
	}

	return nil
}

// findConfigFile searches for quedamos_config.yaml in the current
// directory and the home directory
func findConfigFile() (string, error) {
	configFileName := "quedamos_config.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fs.ErrNotExist
}
