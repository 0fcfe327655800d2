package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for pollinate
type Config struct {
	Count   int          `yaml:"count" jsonschema:"minimum=0,description=Number of documents to generate"`
	Seed    uint64       `yaml:"seed" jsonschema:"description=Random seed; 0 picks a fresh seed per run"`
	Workers int          `yaml:"workers" jsonschema:"minimum=1,description=Goroutines used to sample documents"`
	Schema  SchemaConfig `yaml:"schema"`
	Naming  NamingConfig `yaml:"naming"`
	Output  OutputConfig `yaml:"output"`
	Log     LogConfig    `yaml:"log"`
}

// SchemaConfig controls schema compilation
type SchemaConfig struct {
	Permissive      bool `yaml:"permissive" jsonschema:"description=Skip object fields whose type is unknown instead of failing"`
	ReferenceBounds bool `yaml:"reference_bounds" jsonschema:"description=Exclusive integer maximum and one extra array element"`
	MaxDepth        int  `yaml:"max_depth" jsonschema:"minimum=1,description=Maximum nesting depth of the schema"`
}

// NamingConfig controls the keys of generated documents
type NamingConfig struct {
	FieldCase     string            `yaml:"field_case" jsonschema:"enum=snake,enum=camel,enum=lower_camel,enum=kebab"`
	FieldMappings map[string]string `yaml:"field_mappings" jsonschema:"description=Explicit schema field to document key renames"`
}

// OutputConfig controls document encoding
type OutputConfig struct {
	Format string `yaml:"format" jsonschema:"enum=json,enum=yaml"`
	Indent int    `yaml:"indent" jsonschema:"minimum=0"`
}

// LogConfig controls diagnostic logging
type LogConfig struct {
	Level  string `yaml:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `yaml:"format" jsonschema:"enum=text,enum=json"`
}

// Field case names accepted by NamingConfig.FieldCase
const (
	CasePreserve   = ""
	CaseSnake      = "snake"
	CaseCamel      = "camel"
	CaseLowerCamel = "lower_camel"
	CaseKebab      = "kebab"
)

// DefaultMaxDepth bounds schema nesting when no depth is configured.
const DefaultMaxDepth = 64

var configNames = []string{".pollinate.yml", ".pollinate.yaml", ".pollinate.toml", "pollinate.yml", "pollinate.yaml", "pollinate.toml"}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Count:   1,
		Seed:    0,
		Workers: 1,
		Schema: SchemaConfig{
			Permissive:      false,
			ReferenceBounds: false,
			MaxDepth:        DefaultMaxDepth,
		},
		Naming: NamingConfig{
			FieldCase:     CasePreserve,
			FieldMappings: make(map[string]string),
		},
		Output: OutputConfig{
			Format: "",
			Indent: 2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML or TOML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	raw := map[string]interface{}{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Start with defaults
	cfg := NewConfig()
	if err := decode(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode copies a generic map onto cfg, keeping defaults for absent keys.
func decode(raw map[string]interface{}, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      cfg,
		TagName:     "yaml",
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	return decoder.Decode(raw)
}

// FindConfigFile searches for a config file in the current directory and its parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return FindConfigFileFrom(currentDir)
}

// FindConfigFileFrom searches dir and its parents for a config file
func FindConfigFileFrom(dir string) string {
	currentDir := dir
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("count must not be negative, got %d", c.Count)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Schema.MaxDepth < 1 {
		return fmt.Errorf("schema.max_depth must be at least 1, got %d", c.Schema.MaxDepth)
	}
	switch c.Naming.FieldCase {
	case CasePreserve, CaseSnake, CaseCamel, CaseLowerCamel, CaseKebab:
	default:
		return fmt.Errorf("unknown naming.field_case %q", c.Naming.FieldCase)
	}
	switch c.Output.Format {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("unknown output.format %q", c.Output.Format)
	}
	if c.Output.Indent < 0 {
		return fmt.Errorf("output.indent must not be negative, got %d", c.Output.Indent)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}

// GetFieldName returns the document key for a schema field, applying naming rules
func (c *Config) GetFieldName(schemaKey string) string {
	// Check custom mappings first
	if mapped, exists := c.Naming.FieldMappings[schemaKey]; exists {
		return mapped
	}

	switch c.Naming.FieldCase {
	case CaseSnake:
		return strcase.ToSnake(schemaKey)
	case CaseCamel:
		return strcase.ToCamel(schemaKey)
	case CaseLowerCamel:
		return strcase.ToLowerCamel(schemaKey)
	case CaseKebab:
		return strcase.ToKebab(schemaKey)
	}

	return schemaKey
}

// CLIOverrides carries flag values; nil fields were not set on the command line.
type CLIOverrides struct {
	Count           *int
	Seed            *uint64
	Workers         *int
	Permissive      *bool
	ReferenceBounds *bool
	MaxDepth        *int
	FieldCase       *string
	Format          *string
	Indent          *int
	Debug           bool
}

// LoadConfigWithCLI loads the config file (if any) and applies CLI overrides on top
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.Count != nil {
		cfg.Count = *cli.Count
	}
	if cli.Seed != nil {
		cfg.Seed = *cli.Seed
	}
	if cli.Workers != nil {
		cfg.Workers = *cli.Workers
	}
	if cli.Permissive != nil {
		cfg.Schema.Permissive = *cli.Permissive
	}
	if cli.ReferenceBounds != nil {
		cfg.Schema.ReferenceBounds = *cli.ReferenceBounds
	}
	if cli.MaxDepth != nil {
		cfg.Schema.MaxDepth = *cli.MaxDepth
	}
	if cli.FieldCase != nil {
		cfg.Naming.FieldCase = *cli.FieldCase
	}
	if cli.Format != nil {
		cfg.Output.Format = *cli.Format
	}
	if cli.Indent != nil {
		cfg.Output.Indent = *cli.Indent
	}
	if cli.Debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
