package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/lab-matching/pkg/core/demodata"
	"github.com/jakechorley/lab-matching/pkg/core/matching"
)

// FileName is the config file searched for in the working and home directories
const FileName = "lab_matching_config.yaml"

// Normalization overrides the ranges used to turn ranks into wishes and acceptabilities
type Normalization struct {
	WishRange          []float64 `yaml:"wishRange" validate:"len=2"`
	AcceptabilityRange []float64 `yaml:"acceptabilityRange" validate:"len=2"`
	UnrankedSentinel   int       `yaml:"unrankedSentinel" validate:"min=1"`
}

// Hungarian configures the enumerating solver
type Hungarian struct {
	MaxMatchings   int    `yaml:"maxMatchings" validate:"min=0"`
	RandomTieBreak bool   `yaml:"randomTieBreak"`
	Seed           uint64 `yaml:"seed"`
}

// DemoData holds the defaults for the demodata command
type DemoData struct {
	Students int    `yaml:"students" validate:"min=1"`
	Teachers int    `yaml:"teachers" validate:"min=1"`
	Limit    int    `yaml:"limit" validate:"min=1"`
	Mode     string `yaml:"mode" validate:"oneof=random separate"`
}

// Config represents the application configuration
type Config struct {
	DefaultMethod string        `yaml:"defaultMethod" validate:"oneof=DA MNK HNG"`
	OutputDir     string        `yaml:"outputDir" validate:"required"`
	Normalization Normalization `yaml:"normalization"`
	Hungarian     Hungarian     `yaml:"hungarian"`
	DemoData      DemoData      `yaml:"demoData"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		DefaultMethod: string(matching.MethodDeferredAcceptance),
		OutputDir:     "./",
		Normalization: Normalization{
			WishRange:          append([]float64(nil), matching.DefaultWishRange...),
			AcceptabilityRange: append([]float64(nil), matching.DefaultAcceptabilityRange...),
			UnrankedSentinel:   matching.DefaultUnrankedSentinel,
		},
		Hungarian: Hungarian{Seed: 1},
		DemoData: DemoData{
			Students: 20,
			Teachers: 15,
			Limit:    10,
			Mode:     string(demodata.ModeRandom),
		},
	}
}

// Load returns the configuration at path, or the first lab_matching_config.yaml found
// in the current or home directory when path is empty. Without a file the defaults apply.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromPath(path)
	}

	configPath, err := findConfigFile()
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Fields missing from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration struct and the range ordering
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	wish := cfg.Normalization.WishRange
	if wish[0] >= wish[1] {
		return fmt.Errorf("invalid normalization.wishRange %v: minimum must be below maximum", wish)
	}
	acc := cfg.Normalization.AcceptabilityRange
	if acc[0] >= acc[1] {
		return fmt.Errorf("invalid normalization.acceptabilityRange %v: minimum must be below maximum", acc)
	}

	return nil
}

// MatchingOptions converts the config into solver options
func (c *Config) MatchingOptions() matching.Options {
	opts := matching.Options{
		Normalize: matching.NormalizeOptions{
			WishRange:          c.Normalization.WishRange,
			AcceptabilityRange: c.Normalization.AcceptabilityRange,
			UnrankedSentinel:   c.Normalization.UnrankedSentinel,
		},
		MaxMatchings: c.Hungarian.MaxMatchings,
	}
	if c.Hungarian.RandomTieBreak {
		opts.TieBreaker = matching.NewRandomTieBreaker(c.Hungarian.Seed)
	}
	return opts
}

// findConfigFile searches for lab_matching_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, FileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory: %w", fs.ErrNotExist)
}
