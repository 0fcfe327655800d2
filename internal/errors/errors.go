package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput        = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON       = errors.New("invalid JSON format")
	ErrMultipleJSON      = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound      = errors.New("file not found")
	ErrFileEmpty         = errors.New("file is empty")
	ErrNoInput           = errors.New("no input provided: please specify a schema file with -i")
	ErrInvalidFilePath   = errors.New("invalid file path")
	ErrUnsupportedFormat = errors.New("unsupported format")

	ErrMissingProperties = errors.New("schema must declare a properties mapping")
	ErrMissingField      = errors.New("required field is missing")
	ErrInvalidField      = errors.New("field has the wrong shape")
	ErrUnknownType       = errors.New("schema node has unknown or missing type")
	ErrDuplicateField    = errors.New("duplicate field name")
	ErrMaxDepth          = errors.New("schema nesting exceeds the maximum depth")

	ErrEmptyEnum     = errors.New("enumeration must not be empty")
	ErrInvertedRange = errors.New("minimum must not be greater than maximum")
	ErrNilProducer   = errors.New("producer must not be nil")
	ErrInvalidCount  = errors.New("document count must not be negative")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput    ErrorType = "input"
	ErrorTypeParsing  ErrorType = "parsing"
	ErrorTypeSchema   ErrorType = "schema"
	ErrorTypeProducer ErrorType = "producer"
	ErrorTypeGenerate ErrorType = "generate"
	ErrorTypeOutput   ErrorType = "output"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to schema text parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewSchemaError creates a new error for a schema that cannot be compiled
func NewSchemaError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeSchema,
		Message: message,
		Err:     err,
	}
}

// NewProducerError creates a new error for an invalid producer configuration
func NewProducerError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeProducer,
		Message: message,
		Err:     err,
	}
}

// NewGenerateError creates a new error related to document generation
func NewGenerateError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeGenerate,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// SchemaError locates a compilation failure inside the schema.
// Path is the dotted location of the node, Field the offending key.
type SchemaError struct {
	Path  string
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<root>"
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field %q: %v", loc, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// NewFieldError creates a SchemaError for field at path.
func NewFieldError(path, field string, err error) *SchemaError {
	return &SchemaError{Path: path, Field: field, Err: err}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		var schemaErr *SchemaError
		if errors.As(appErr.Err, &schemaErr) {
			return fmt.Sprintf("Schema error: %s", schemaErr.Error())
		}
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("Schema parsing error: %s", appErr.Message)
		case ErrorTypeSchema:
			return fmt.Sprintf("Schema error: %s", appErr.Message)
		case ErrorTypeProducer:
			return fmt.Sprintf("Invalid generator configuration: %s", appErr.Message)
		case ErrorTypeGenerate:
			return fmt.Sprintf("Generation error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return fmt.Sprintf("Schema error: %s", schemaErr.Error())
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide a schema."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The schema contains invalid JSON. Please check its syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single schema object."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with a schema."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a schema file with -i."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		return "Error: Unsupported format. Use json, yaml or toml."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
