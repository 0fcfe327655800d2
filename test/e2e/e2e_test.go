package e2e_test

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaDir = "../../testdata/schemas"

type address struct {
	City string `json:"city"`
	Zip  int64  `json:"zip"`
}

type user struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Status   string   `json:"status"`
	Age      int64    `json:"age"`
	Roles    []string `json:"roles"`
	Address  address  `json:"address"`
	Scores   []int64  `json:"scores"`
}

func runCLI(t testing.TB, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../../main.go"}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestEndToEnd_UserSchema generates many documents and checks every constraint
func TestEndToEnd_UserSchema(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "users.json")

	_, stderr, err := runCLI(t, "-i", filepath.Join(schemaDir, "user.json"), "-o", outputFile, "-c", "500", "--workers", "4")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.DisallowUnknownFields()
	var users []user
	require.NoError(t, decoder.Decode(&users))
	require.Len(t, users, 500)

	for _, u := range users {
		assert.GreaterOrEqual(t, u.ID, int64(1))
		assert.LessOrEqual(t, u.ID, int64(100000))
		assert.Contains(t, []string{"ada", "grace", "linus", "ken"}, u.Username)
		assert.Contains(t, []string{"active", "suspended"}, u.Status)
		assert.GreaterOrEqual(t, u.Age, int64(18))
		assert.LessOrEqual(t, u.Age, int64(99))

		assert.GreaterOrEqual(t, len(u.Roles), 1)
		assert.LessOrEqual(t, len(u.Roles), 3)
		for _, role := range u.Roles {
			assert.Contains(t, []string{"admin", "dev", "ops"}, role)
		}

		assert.Contains(t, []string{"Oslo", "Lima", "Pune"}, u.Address.City)
		assert.Contains(t, []int64{1000, 2000, 3000}, u.Address.Zip)

		assert.LessOrEqual(t, len(u.Scores), 5)
		for _, score := range u.Scores {
			assert.GreaterOrEqual(t, score, int64(0))
			assert.LessOrEqual(t, score, int64(100))
		}
	}
}

// TestEndToEnd_SchemaFormatsAgree checks that one schema written as JSON,
// YAML and TOML yields identical documents for the same seed
func TestEndToEnd_SchemaFormatsAgree(t *testing.T) {
	outputs := make(map[string]string)
	for _, name := range []string{"user.json", "user.yaml", "user.toml"} {
		stdout, stderr, err := runCLI(t, "-i", filepath.Join(schemaDir, name), "-c", "25", "--seed", "2024")
		require.NoError(t, err, "CLI command failed for %s: %s", name, stderr)
		outputs[name] = stdout
	}

	assert.Equal(t, outputs["user.json"], outputs["user.yaml"])
	assert.Equal(t, outputs["user.json"], outputs["user.toml"])
}

// TestEndToEnd_ReferenceBounds checks the exclusive integer maximum and the
// extra array element
func TestEndToEnd_ReferenceBounds(t *testing.T) {
	schemaFile := filepath.Join(t.TempDir(), "schema.json")
	schema := `{
		"properties": {
			"id": {"type": "integer", "minimum": 1, "maximum": 3},
			"tags": {"type": "array", "minimum": 2, "maximum": 2, "items": {"type": "string", "enum": ["a"]}}
		}
	}`
	require.NoError(t, os.WriteFile(schemaFile, []byte(schema), 0644))

	stdout, stderr, err := runCLI(t, "-i", schemaFile, "-c", "200", "--reference-bounds")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	var docs []struct {
		ID   int64    `json:"id"`
		Tags []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &docs))

	seen := map[int64]bool{}
	for _, doc := range docs {
		seen[doc.ID] = true
		assert.Len(t, doc.Tags, 3)
	}
	assert.Equal(t, map[int64]bool{1: true, 2: true}, seen)
}

// TestEndToEnd_EdgeCases tests various edge cases
func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		schema   string
		args     []string
		expected string
		isError  bool
	}{
		{
			name:     "EmptyProperties",
			schema:   `{"properties": {}}`,
			expected: "{}\n",
		},
		{
			name:     "EmptyArrayField",
			schema:   `{"properties": {"none": {"type": "array", "maximum": 0, "items": {"type": "integer"}}}}`,
			expected: `{"none":[]}` + "\n",
		},
		{
			name:     "SingleValueRange",
			schema:   `{"properties": {"n": {"type": "integer", "minimum": 7, "maximum": 7}}}`,
			expected: `{"n":7}` + "\n",
		},
		{
			name:     "NegativeRange",
			schema:   `{"properties": {"n": {"type": "integer", "minimum": -3, "maximum": -3}}}`,
			expected: `{"n":-3}` + "\n",
		},
		{
			name:     "ArrayOfObjects",
			schema:   `{"properties": {"items": {"type": "array", "minimum": 1, "maximum": 1, "items": {"type": "object", "properties": {"k": {"type": "string", "enum": ["v"]}}}}}}`,
			expected: `{"items":[{"k":"v"}]}` + "\n",
		},
		{
			name:     "PermissiveSkipsUnknown",
			schema:   `{"properties": {"flag": {"type": "boolean"}, "k": {"type": "string", "enum": ["v"]}}}`,
			args:     []string{"--permissive"},
			expected: `{"k":"v"}` + "\n",
		},
		{
			name:    "StrictRejectsUnknown",
			schema:  `{"properties": {"flag": {"type": "boolean"}}}`,
			isError: true,
		},
		{
			name:    "MissingProperties",
			schema:  `{"type": "object"}`,
			isError: true,
		},
		{
			name:    "RootArray",
			schema:  `[]`,
			isError: true,
		},
		{
			name:    "ArrayWithoutMaximum",
			schema:  `{"properties": {"a": {"type": "array", "items": {"type": "integer"}}}}`,
			isError: true,
		},
		{
			name:    "InvertedRange",
			schema:  `{"properties": {"n": {"type": "integer", "minimum": 5, "maximum": 1}}}`,
			isError: true,
		},
		{
			name:    "MaxDepthExceeded",
			schema:  `{"properties": {"a": {"type": "object", "properties": {"b": {"type": "object", "properties": {"c": {"type": "integer"}}}}}}}`,
			args:    []string{"--max-depth", "2"},
			isError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			schemaFile := filepath.Join(t.TempDir(), "schema.json")
			require.NoError(t, os.WriteFile(schemaFile, []byte(tc.schema), 0644))

			args := append([]string{"-i", schemaFile, "--indent", "0"}, tc.args...)
			stdout, stderr, err := runCLI(t, args...)

			if tc.isError {
				assert.Error(t, err, "expected an error for %s", tc.name)
				assert.Empty(t, stdout)
				assert.NotEmpty(t, stderr)
				return
			}
			require.NoError(t, err, "CLI command failed: %s", stderr)
			assert.Equal(t, tc.expected, stdout)
		})
	}
}

// TestEndToEnd_FailureLeavesNoOutput checks the failure scenario against an
// existing output path
func TestEndToEnd_FailureLeavesNoOutput(t *testing.T) {
	tempDir := t.TempDir()
	outputFile := filepath.Join(tempDir, "out.json")

	_, stderr, err := runCLI(t, "-i", filepath.Join(schemaDir, "invalid_string.json"), "-o", outputFile)
	require.Error(t, err)
	assert.Contains(t, stderr, "properties.profile.properties.nickname")
	assert.True(t, strings.Contains(stderr, "enum"), "error should name the missing field: %s", stderr)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, fmt.Sprintf("unexpected files: %v", entries))
}
