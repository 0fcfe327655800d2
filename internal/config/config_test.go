package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 1, cfg.Count)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.Equal(t, 1, cfg.Workers)
	assert.False(t, cfg.Schema.Permissive)
	assert.False(t, cfg.Schema.ReferenceBounds)
	assert.Equal(t, DefaultMaxDepth, cfg.Schema.MaxDepth)
	assert.Equal(t, CasePreserve, cfg.Naming.FieldCase)
	assert.Equal(t, 2, cfg.Output.Indent)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	yamlContent := `
count: 25
seed: 1234
workers: 4
schema:
  permissive: true
  max_depth: 8
naming:
  field_case: snake
  field_mappings:
    "userId": "user"
output:
  format: yaml
`
	path := writeFile(t, t.TempDir(), ".pollinate.yml", yamlContent)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Count)
	assert.Equal(t, uint64(1234), cfg.Seed)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.Schema.Permissive)
	assert.False(t, cfg.Schema.ReferenceBounds)
	assert.Equal(t, 8, cfg.Schema.MaxDepth)
	assert.Equal(t, CaseSnake, cfg.Naming.FieldCase)
	assert.Equal(t, "user", cfg.Naming.FieldMappings["userId"])
	assert.Equal(t, "yaml", cfg.Output.Format)

	// untouched sections keep their defaults
	assert.Equal(t, 2, cfg.Output.Indent)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestConfig_LoadFromTOML(t *testing.T) {
	tomlContent := `
count = 3
seed = 99

[schema]
reference_bounds = true

[output]
indent = 0
`
	path := writeFile(t, t.TempDir(), ".pollinate.toml", tomlContent)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Count)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.True(t, cfg.Schema.ReferenceBounds)
	assert.Equal(t, 0, cfg.Output.Indent)
	assert.Equal(t, DefaultMaxDepth, cfg.Schema.MaxDepth)
}

func TestConfig_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		errMsg  string
	}{
		{name: "invalid yaml", file: "a.yml", content: "count: [", errMsg: "failed to parse config file"},
		{name: "invalid toml", file: "b.toml", content: "count = ", errMsg: "failed to parse config file"},
		{name: "unknown key", file: "c.yml", content: "colour: red", errMsg: "failed to decode config file"},
		{name: "wrong type", file: "d.yml", content: "count: lots", errMsg: "failed to decode config file"},
		{name: "negative count", file: "e.yml", content: "count: -1", errMsg: "count must not be negative"},
		{name: "bad field case", file: "f.yml", content: "naming:\n  field_case: shouty", errMsg: "unknown naming.field_case"},
		{name: "bad format", file: "g.yml", content: "output:\n  format: xml", errMsg: "unknown output.format"},
		{name: "zero workers", file: "h.yml", content: "workers: 0", errMsg: "workers must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := LoadConfig(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfig_FindConfigFileFrom(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	assert.Equal(t, "", FindConfigFileFrom(nested))

	path := writeFile(t, root, ".pollinate.yml", "count: 2\n")
	assert.Equal(t, path, FindConfigFileFrom(nested))

	closer := writeFile(t, filepath.Join(root, "a"), "pollinate.toml", "count = 3\n")
	assert.Equal(t, closer, FindConfigFileFrom(nested))
}

func TestConfig_GetFieldName(t *testing.T) {
	tests := []struct {
		fieldCase string
		input     string
		expected  string
	}{
		{CasePreserve, "firstName", "firstName"},
		{CaseSnake, "firstName", "first_name"},
		{CaseCamel, "first_name", "FirstName"},
		{CaseLowerCamel, "first_name", "firstName"},
		{CaseKebab, "first_name", "first-name"},
	}

	for _, tt := range tests {
		t.Run(tt.fieldCase+"/"+tt.input, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Naming.FieldCase = tt.fieldCase
			assert.Equal(t, tt.expected, cfg.GetFieldName(tt.input))
		})
	}

	cfg := NewConfig()
	cfg.Naming.FieldCase = CaseSnake
	cfg.Naming.FieldMappings["zipCode"] = "postcode"
	assert.Equal(t, "postcode", cfg.GetFieldName("zipCode"))
}

func TestLoadConfigWithCLI(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pollinate.yml", "count: 10\nworkers: 2\n")

	count := 5
	seed := uint64(7)
	format := "yaml"
	cfg, err := LoadConfigWithCLI(path, CLIOverrides{Count: &count, Seed: &seed, Format: &format, Debug: true})
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Count, "CLI flag wins over config file")
	assert.Equal(t, 2, cfg.Workers, "config file wins over defaults")
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Log.Level)

	bad := -3
	_, err = LoadConfigWithCLI("", CLIOverrides{Count: &bad})
	assert.Error(t, err)
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "pollinate configuration", doc["title"])

	props, ok := doc["properties"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"count", "seed", "workers", "schema", "naming", "output", "log"} {
		assert.Contains(t, props, key)
	}
}
