package formatter

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mcncl/pollinate/internal/config"
	"github.com/mcncl/pollinate/internal/errors"
	"github.com/mcncl/pollinate/internal/models"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formatter encodes generated documents as text
type Formatter struct {
	Format string
	Indent int
}

// NewFormatter creates a Formatter writing two-space indented JSON
func NewFormatter() *Formatter {
	return &Formatter{Format: FormatJSON, Indent: 2}
}

// NewFormatterWithConfig creates a Formatter from output settings. An empty
// format is taken from the output path, falling back to JSON.
func NewFormatterWithConfig(cfg config.OutputConfig, outputPath string) *Formatter {
	format := cfg.Format
	if format == "" {
		format = FormatFromPath(outputPath)
	}
	return &Formatter{Format: format, Indent: cfg.Indent}
}

// FormatFromPath maps an output file extension to a format
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode renders v in the configured format, always ending with a newline
func (f *Formatter) Encode(v models.JSONValue) ([]byte, error) {
	switch f.Format {
	case FormatJSON, "":
		return f.encodeJSON(v)
	case FormatYAML:
		return f.encodeYAML(v)
	}
	return nil, errors.NewOutputError(fmt.Sprintf("output format %q", f.Format), errors.ErrUnsupportedFormat)
}

func (f *Formatter) encodeJSON(v models.JSONValue) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if f.Indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", f.Indent))
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, errors.NewOutputError("failed to encode JSON", err)
	}
	return append(data, '\n'), nil
}

func (f *Formatter) encodeYAML(v models.JSONValue) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	indent := f.Indent
	if indent < 2 {
		indent = 2
	}
	encoder.SetIndent(indent)

	if err := encoder.Encode(v); err != nil {
		return nil, errors.NewOutputError("failed to encode YAML", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.NewOutputError("failed to encode YAML", err)
	}
	return buf.Bytes(), nil
}
